// Package replay is a testing transport extension: a Recorder that
// captures live traffic into a versioned on-disk document, and a Player
// that serves subsequent runs from that document instead of a live
// network connection. Grounded on this module's own htreq.Request/
// Response shapes; the document format is YAML, following the
// `gopkg.in/yaml.v3` convention nabbar-golib/duration and nabbar-golib's
// config layer already use for on-disk structured data.
package replay

import (
	"time"
)

// DocumentVersion is the current on-disk format version. Player rejects
// any document whose Version it does not recognize.
const DocumentVersion = 1

// Document is the root of the on-disk recording: a version tag plus every
// recorded request/response pair, in recording order.
type Document struct {
	Version int     `yaml:"version"`
	Entries []Entry `yaml:"entries"`
}

// Entry is one recorded request/response pair.
type Entry struct {
	Method          string              `yaml:"method"`
	NormalizedURL   string              `yaml:"normalized_url"`
	RequestHeaders  map[string][]string `yaml:"request_headers"`
	RequestBodyHash string              `yaml:"request_body_hash"`
	Status          int                 `yaml:"status"`
	ResponseHeaders map[string][]string `yaml:"response_headers"`
	ResponseBody    []byte              `yaml:"response_body"`
	Timestamp       time.Time           `yaml:"timestamp"`
}
