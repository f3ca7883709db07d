package replay

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// MismatchPolicy governs what Player does when an incoming request's
// method+NormalizedURL is found in the document but its full match key
// (headers + body hash) does not match any recorded entry for that
// method/URL.
type MismatchPolicy int

const (
	// Strict (the default) fails the request with herrs.KindProtocol.
	Strict MismatchPolicy = iota
	// Warn serves the closest same-method-and-URL entry anyway, reporting
	// the mismatch via the Player's configured sink.
	Warn
	// Relaxed serves the closest same-method-and-URL entry silently.
	Relaxed
)

// MismatchSink receives a description of a Warn-policy mismatch.
type MismatchSink func(method, url string)

// LoadDocument reads and validates a Document previously written by
// Recorder.Save.
func LoadDocument(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Document{}, err
	}
	if doc.Version != DocumentVersion {
		return Document{}, herrs.Newf(herrs.KindProtocol, "replay: unsupported document version %d", doc.Version)
	}
	return doc, nil
}

// Player serves requests from a Document instead of a live connection.
type Player struct {
	policy  MismatchPolicy
	include []string
	onWarn  MismatchSink

	byKey map[string]Entry
	byURL map[string][]Entry
}

// NewPlayer builds a Player over doc. include names additional headers to
// keep in the match key despite being in the default volatile set; it
// must match whatever was passed to the Recorder that produced doc.
func NewPlayer(doc Document, policy MismatchPolicy, onWarn MismatchSink, include ...string) *Player {
	p := &Player{
		policy:  policy,
		include: include,
		onWarn:  onWarn,
		byKey:   make(map[string]Entry, len(doc.Entries)),
		byURL:   make(map[string][]Entry, len(doc.Entries)),
	}
	for _, e := range doc.Entries {
		p.byKey[e.matchKey()] = e
		urlKey := e.Method + " " + e.NormalizedURL
		p.byURL[urlKey] = append(p.byURL[urlKey], e)
	}
	return p
}

// matchKey rebuilds the same key MatchKey derives from a live request, so
// a recorded Entry can be looked up by the key of an incoming Request.
func (e Entry) matchKey() string {
	return matchKeyFromParts(e.Method, e.NormalizedURL, e.RequestHeaders, e.RequestBodyHash)
}

// Handle satisfies pipeline.Handler, serving req from the loaded Document
// per the configured MismatchPolicy.
func (p *Player) Handle(_ context.Context, _ *htctx.Context, req htreq.Request) htreq.Response {
	key := MatchKey(req, p.include)
	if e, ok := p.byKey[key]; ok {
		return entryToResponse(req, e)
	}

	urlKey := string(req.Method()) + " " + NormalizeURL(req)
	candidates := p.byURL[urlKey]
	if len(candidates) == 0 {
		return htreq.NewErrorResponse(req, 0, herrs.Newf(herrs.KindProtocol, "replay: no recorded entry for %s", urlKey), 0)
	}

	switch p.policy {
	case Relaxed:
		return entryToResponse(req, candidates[0])
	case Warn:
		if p.onWarn != nil {
			p.onWarn(string(req.Method()), NormalizeURL(req))
		}
		return entryToResponse(req, candidates[0])
	default:
		return htreq.NewErrorResponse(req, 0, herrs.Newf(herrs.KindProtocol, "replay: match-key mismatch for %s", urlKey), 0)
	}
}

func entryToResponse(req htreq.Request, e Entry) htreq.Response {
	h := htreq.NewHeader()
	for name, values := range e.ResponseHeaders {
		for _, v := range values {
			_ = h.Add(name, v)
		}
	}
	return htreq.Response{
		Status:  e.Status,
		Header:  h,
		Body:    append([]byte(nil), e.ResponseBody...),
		Request: req,
	}
}
