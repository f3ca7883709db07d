// Package htmonitor captures a bounded history of completed requests for
// diagnostics: a fixed-capacity ring buffer of immutable Event snapshots,
// with large or binary bodies reduced to a preview rather than stored in
// full. Grounded on nabbar-golib/monitor's status-snapshot shape,
// generalized from a health-check Info to a request/response Event.
package htmonitor

import (
	"time"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// DefaultBodyPreviewBytes bounds a text body snapshot; anything longer is
// truncated and flagged.
const DefaultBodyPreviewBytes = 5 << 20

// bodySniffBytes is how much of a body is scanned for a null byte when
// deciding whether it is binary.
const bodySniffBytes = 512

// BodySnapshot is a captured request or response body, reduced to a
// preview when the original was large or looked binary.
type BodySnapshot struct {
	Preview      []byte
	OriginalSize int
	Truncated    bool
	Binary       bool
}

func snapshotBody(body []byte, contentType string, limit int) BodySnapshot {
	bin := looksBinary(body, contentType)
	snap := BodySnapshot{OriginalSize: len(body), Binary: bin}

	max := limit
	if bin && max > bodySniffBytes {
		max = bodySniffBytes
	}
	if len(body) > max {
		snap.Preview = append([]byte(nil), body[:max]...)
		snap.Truncated = true
	} else {
		snap.Preview = append([]byte(nil), body...)
	}
	return snap
}

func looksBinary(body []byte, contentType string) bool {
	if contentType != "" && !isTextualContentType(contentType) {
		return true
	}
	n := len(body)
	if n > bodySniffBytes {
		n = bodySniffBytes
	}
	for i := 0; i < n; i++ {
		if body[i] == 0 {
			return true
		}
	}
	return false
}

func isTextualContentType(ct string) bool {
	for _, p := range []string{"text/", "application/json", "application/xml", "application/x-www-form-urlencoded"} {
		if len(ct) >= len(p) && ct[:len(p)] == p {
			return true
		}
	}
	return false
}

// Event is an immutable snapshot of one completed request/response pair.
type Event struct {
	CapturedAt   time.Time
	Request      htreq.Request
	RequestBody  BodySnapshot
	Response     htreq.Response
	ResponseBody BodySnapshot
	Timeline     []htctx.Event
}

func newEvent(sig *htctx.Context, req htreq.Request, resp htreq.Response, limit int) Event {
	reqCT, _ := req.Header().First("Content-Type")
	respCT, _ := resp.Header.First("Content-Type")
	return Event{
		CapturedAt:   time.Now(),
		Request:      req,
		RequestBody:  snapshotBody(req.Body(), reqCT, limit),
		Response:     resp,
		ResponseBody: snapshotBody(resp.Body, respCT, limit),
		Timeline:     sig.Timeline(),
	}
}
