package replay

import (
	"context"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
	"github.com/nabbar/htcore/pipeline"
)

// Recorder wraps a live Handler, appending one Entry per completed
// request to an in-memory Document that Save persists to disk.
type Recorder struct {
	next pipeline.Handler
	include []string

	mu  sync.Mutex
	doc Document
}

// NewRecorder wraps next, recording every request/response it handles.
// include names additional headers to keep in the match key despite
// being in the default volatile set.
func NewRecorder(next pipeline.Handler, include ...string) *Recorder {
	return &Recorder{next: next, include: include, doc: Document{Version: DocumentVersion}}
}

// Handle satisfies pipeline.Handler: send through next, then append the
// recorded Entry.
func (r *Recorder) Handle(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
	resp := r.next(ctx, sig, req)

	entry := Entry{
		Method:          string(req.Method()),
		NormalizedURL:   NormalizeURL(req),
		RequestHeaders:  MatchHeaders(req, r.include),
		RequestBodyHash: HashBody(req.Body()),
		Status:          resp.Status,
		ResponseHeaders: headerToMap(resp.Header),
		ResponseBody:    append([]byte(nil), resp.Body...),
		Timestamp:       time.Now().UTC(),
	}

	r.mu.Lock()
	r.doc.Entries = append(r.doc.Entries, entry)
	r.mu.Unlock()

	return resp
}

// Save writes the recorded Document to path as YAML.
func (r *Recorder) Save(path string) error {
	r.mu.Lock()
	doc := r.doc
	r.mu.Unlock()

	b, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func headerToMap(h htreq.Header) map[string][]string {
	out := make(map[string][]string)
	h.Range(func(name, value string) {
		out[name] = append(out[name], value)
	})
	return out
}
