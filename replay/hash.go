package replay

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// largeBodyThreshold is the body size above which HashBody hashes a
// head/tail/length digest instead of the whole body.
const largeBodyThreshold = 1 << 20 // 1 MiB

const sampleWindow = 64 << 10 // 64 KiB

// HashBody returns the SHA-256 hex digest used as a request's
// RequestBodyHash. Bodies at or under largeBodyThreshold are hashed
// whole; larger bodies are hashed as first_64KiB ∥ last_64KiB ∥
// total_length, so large bodies of different lengths are distinguished
// without hashing them in full, while two bodies of equal length that
// differ only in their unsampled middle get the same digest.
func HashBody(body []byte) string {
	h := sha256.New()
	if len(body) <= largeBodyThreshold {
		h.Write(body)
	} else {
		h.Write(body[:sampleWindow])
		h.Write(body[len(body)-sampleWindow:])
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(body)))
		h.Write(lenBuf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
