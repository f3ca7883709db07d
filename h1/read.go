package h1

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/nabbar/htcore/htreq"
)

var errMalformedStatusLine = errors.New("h1: malformed status line")

// readResponse parses a status line, a header block, and the framed body
// (chunked or Content-Length; absence of both means "read until EOF or
// connection close", per RFC 7230 §3.3.3 rule 7 — only meaningful for a
// connection this engine is about to discard).
func readResponse(r *bufio.Reader, maxHeaderBytes int64) (int, htreq.Header, []byte, bool, error) {
	status, err := readStatusLine(r)
	if err != nil {
		return 0, htreq.Header{}, nil, false, err
	}

	header, err := readHeaderBlock(r, maxHeaderBytes)
	if err != nil {
		return 0, htreq.Header{}, nil, false, err
	}
	if status == 100 {
		// 100 Continue is interim: discard it and read the final response.
		return readResponse(r, maxHeaderBytes)
	}

	body, closeConn, err := readBody(r, status, header)
	if err != nil {
		return 0, htreq.Header{}, nil, false, err
	}
	return status, header, body, closeConn, nil
}

func readStatusLine(r *bufio.Reader) (int, error) {
	line, err := r.ReadSlice('\n')
	if err != nil {
		return 0, err
	}
	line = trimTrailingWhitespace(line)
	// "HTTP/1.1 200 OK"
	parts := strings.SplitN(string(line), " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/1.") {
		return 0, errMalformedStatusLine
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 100 || code > 599 {
		return 0, errMalformedStatusLine
	}
	return code, nil
}

func readHeaderBlock(r *bufio.Reader, maxBytes int64) (htreq.Header, error) {
	h := htreq.NewHeader()
	var consumed int64
	for {
		line, err := r.ReadSlice('\n')
		if err != nil {
			return htreq.Header{}, err
		}
		consumed += int64(len(line))
		if maxBytes > 0 && consumed > maxBytes {
			return htreq.Header{}, errors.New("h1: response header block exceeds limit")
		}
		line = trimTrailingWhitespace(line)
		if len(line) == 0 {
			return h, nil
		}
		idx := indexByte(line, ':')
		if idx < 0 {
			return htreq.Header{}, errors.New("h1: malformed header line")
		}
		name := string(trimTrailingWhitespace(line[:idx]))
		value := strings.TrimSpace(string(line[idx+1:]))
		_ = h.Add(name, value)
	}
}

// readBody reads a response body according to the framing the status and
// headers dictate, returning whether the connection must be closed
// afterward (no reliable end-of-body framing, or an explicit
// "Connection: close").
func readBody(r *bufio.Reader, status int, h htreq.Header) ([]byte, bool, error) {
	if status == 204 || status == 304 || status/100 == 1 {
		return nil, false, nil
	}

	closeConn := false
	if v, ok := h.First("connection"); ok && strings.EqualFold(v, "close") {
		closeConn = true
	}

	if te, ok := h.First("transfer-encoding"); ok && strings.Contains(strings.ToLower(te), "chunked") {
		cr := newChunkedReader(r)
		body, err := io.ReadAll(cr)
		if err != nil {
			return nil, true, err
		}
		return body, closeConn, nil
	}

	if cl, ok := h.First("content-length"); ok {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return nil, true, errors.New("h1: malformed content-length")
		}
		if n == 0 {
			return nil, closeConn, nil
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, true, err
		}
		return buf, closeConn, nil
	}

	// No Content-Length, no chunked encoding: body runs to EOF. The
	// connection cannot be reused after this (RFC 7230 §3.3.3 rule 7).
	body, err := io.ReadAll(r)
	if err != nil && err != io.EOF {
		return nil, true, err
	}
	return body, true, nil
}
