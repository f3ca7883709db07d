package h1

import (
	"bufio"
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/htcore/htreq"
)

var _ = Describe("writeRequest", func() {
	It("serializes method, path, Host, and a Content-Length body", func() {
		h := htreq.NewHeader()
		_ = h.Set("X-Custom", "value")
		req, err := htreq.New(htreq.MethodPOST, "http://example.com/a/b?q=1", h, []byte("hello"), 0)
		Expect(err).ToNot(HaveOccurred())

		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		Expect(writeRequest(w, req)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("POST /a/b?q=1 HTTP/1.1\r\n"))
		Expect(out).To(ContainSubstring("Host: example.com\r\n"))
		Expect(out).To(ContainSubstring("Content-Length: 5\r\n"))
		Expect(out).To(ContainSubstring("X-Custom: value\r\n"))
		Expect(out).To(HaveSuffix("\r\n\r\nhello"))
	})

	It("omits Content-Length for an empty body", func() {
		req, err := htreq.New(htreq.MethodGET, "http://example.com/", htreq.NewHeader(), nil, 0)
		Expect(err).ToNot(HaveOccurred())

		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		Expect(writeRequest(w, req)).To(Succeed())
		Expect(buf.String()).ToNot(ContainSubstring("Content-Length"))
	})
})

var _ = Describe("readResponse", func() {
	It("parses a Content-Length response", func() {
		raw := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello"
		br := bufio.NewReader(bytes.NewReader([]byte(raw)))
		status, header, body, closeConn, err := readResponse(br, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(200))
		Expect(closeConn).To(BeFalse())
		v, _ := header.First("content-type")
		Expect(v).To(Equal("text/plain"))
		Expect(string(body)).To(Equal("hello"))
	})

	It("parses a chunked response", func() {
		raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n0\r\n\r\n"
		br := bufio.NewReader(bytes.NewReader([]byte(raw)))
		status, _, body, _, err := readResponse(br, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(200))
		Expect(string(body)).To(Equal("Wiki"))
	})

	It("signals connection close when Connection: close is present", func() {
		raw := "HTTP/1.1 200 OK\r\nConnection: close\r\nContent-Length: 0\r\n\r\n"
		br := bufio.NewReader(bytes.NewReader([]byte(raw)))
		_, _, _, closeConn, err := readResponse(br, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(closeConn).To(BeTrue())
	})

	It("treats a 204 as bodyless regardless of framing headers", func() {
		raw := "HTTP/1.1 204 No Content\r\nContent-Length: 5\r\n\r\n"
		br := bufio.NewReader(bytes.NewReader([]byte(raw)))
		status, _, body, _, err := readResponse(br, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(204))
		Expect(body).To(BeEmpty())
	})

	It("rejects a malformed status line", func() {
		raw := "NOT HTTP\r\n\r\n"
		br := bufio.NewReader(bytes.NewReader([]byte(raw)))
		_, _, _, _, err := readResponse(br, 0)
		Expect(err).To(HaveOccurred())
	})
})
