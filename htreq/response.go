package htreq

import (
	"time"

	"github.com/nabbar/htcore/herrs"
)

// Response is the result of sending a Request. Transport-level failures
// populate Err rather than being returned as a Go error from the
// transport — callers that want exceptions use the
// EnsureSuccessStatus helper below or an explicit middleware.
type Response struct {
	Status   int
	Header   Header
	Body     []byte
	Elapsed  time.Duration
	Request  Request
	Err      herrs.Error
}

// Success reports whether 200 <= Status < 300.
func (r Response) Success() bool {
	return r.Status >= 200 && r.Status < 300
}

// EnsureSuccessStatus returns herrs.KindHTTPStatus if the response is not
// a 2xx, or the transport-populated Err if one is set. This is the
// opt-in path for callers who want an exception instead of inspecting
// Status themselves.
func EnsureSuccessStatus(r Response) error {
	if r.Err != nil {
		return r.Err
	}
	if !r.Success() {
		return herrs.Newf(herrs.KindHTTPStatus, "unexpected status %d for %s %s", r.Status, r.Request.Method(), r.Request.URL())
	}
	return nil
}

// NewErrorResponse builds a synthetic Response carrying a transport error,
// with the given synthetic status (0, 408, or a 502-class code).
func NewErrorResponse(req Request, status int, err herrs.Error, elapsed time.Duration) Response {
	return Response{
		Status:  status,
		Header:  NewHeader(),
		Request: req,
		Err:     err,
		Elapsed: elapsed,
	}
}
