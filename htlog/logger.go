// Package htlog is a thin logrus façade: a *logrus.Logger plus the
// request/response field conventions the pipeline's Logging middleware
// uses, in the style of
// nabbar-golib/logger's Fields/entry split.
package htlog

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/htcore/htreq"
)

// Logger wraps a *logrus.Logger. The zero value is not usable; use New.
type Logger struct {
	log *logrus.Logger
}

// New builds a Logger writing JSON-formatted entries to w at the given
// level. A nil w defaults to os.Stderr via logrus' own default.
func New(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(level)
	if w != nil {
		l.SetOutput(w)
	}
	return &Logger{log: l}
}

// Raw returns the underlying *logrus.Logger for callers that need
// logrus-specific features (hooks, text formatting, and so on).
func (l *Logger) Raw() *logrus.Logger {
	return l.log
}

// WithFields starts an entry carrying f.
func (l *Logger) WithFields(f Fields) *logrus.Entry {
	return l.log.WithFields(f.Logrus())
}

// RequestFields builds the Fields describing an outgoing request, with
// every header value passed through Redact.
func RequestFields(req htreq.Request) Fields {
	f := NewFields().
		Add("http.method", string(req.Method())).
		Add("http.url", req.URL().String()).
		Add("http.request_id", req.ID().String())
	req.Header().Range(func(name, value string) {
		f = f.Add("http.header."+name, Redact(name, value))
	})
	return f
}

// ResponseFields builds the Fields describing a completed response.
func ResponseFields(resp htreq.Response) Fields {
	f := NewFields().
		Add("http.status", resp.Status).
		Add("http.elapsed_ms", resp.Elapsed.Milliseconds())
	if resp.Err != nil {
		f = f.Add("http.error", resp.Err.Error()).Add("http.error_kind", resp.Err.Kind().String())
	}
	return f
}
