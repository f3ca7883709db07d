package h1

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/nabbar/htcore/htreq"
)

// writeRequest serializes req onto w as a well-formed HTTP/1.1 request:
// request-line, Host, any caller headers, a Content-Length for non-empty
// bodies, and the body itself. Connection: keep-alive is implicit (the
// default for HTTP/1.1) and never written; this engine never emits
// "Connection: close" itself.
func writeRequest(w *bufio.Writer, req htreq.Request) error {
	path := req.URL().RequestURI()
	if path == "" {
		path = "/"
	}
	if _, err := fmt.Fprintf(w, "%s %s HTTP/1.1\r\n", req.Method(), path); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Host: %s\r\n", req.URL().Host); err != nil {
		return err
	}

	h := req.Header()
	wroteHost := false
	h.Range(func(name, value string) {
		if name == "host" {
			wroteHost = true
		}
	})
	_ = wroteHost // Host is always written above from the URL; a caller-set
	// Host header is forwarded too, producing a duplicate line the server
	// must tolerate — rewriting it would mean mutating the caller's intent.

	body := req.Body()
	if len(body) > 0 && !h.Has("content-length") {
		if _, err := fmt.Fprintf(w, "Content-Length: %s\r\n", strconv.Itoa(len(body))); err != nil {
			return err
		}
	}

	var werr error
	h.Range(func(name, value string) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(w, "%s: %s\r\n", canonicalWireName(name), value)
	})
	if werr != nil {
		return werr
	}

	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return err
		}
	}
	return w.Flush()
}

// canonicalWireName renders a lower-cased header name (htreq.Header's
// internal form) in the conventional Title-Case wire form. Servers MUST
// treat header names case-insensitively, but some badly-behaved
// intermediaries don't, so the engine emits the conventional casing.
func canonicalWireName(name string) string {
	out := make([]byte, len(name))
	upperNext := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if upperNext && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = c == '-'
		out[i] = c
	}
	return string(out)
}
