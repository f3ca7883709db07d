package h1

import (
	"bufio"
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/htcore/htreq"
	"github.com/nabbar/htcore/pool"
)

// pipeDialer returns a Dialer whose DialFunc hands back one half of an
// in-memory net.Pipe per call, recording every server-side half created so
// the test can drive a fake server loop over each in turn.
func pipeDialer() (*pool.Dialer, <-chan net.Conn) {
	servers := make(chan net.Conn, 8)
	d := pool.NewDialer()
	d.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		client, server := net.Pipe()
		servers <- server
		return client, nil
	}
	return d, servers
}

// serveOnce writes a canned HTTP/1.1 response after reading (and
// discarding) one request off server, closing it only if keepAlive is
// false.
func serveOnce(server net.Conn, response string, keepAlive bool) {
	br := bufio.NewReader(server)
	for {
		line, err := br.ReadString('\n')
		if err != nil || line == "\r\n" {
			break
		}
	}
	_, _ = server.Write([]byte(response))
	if !keepAlive {
		_ = server.Close()
	}
}

var _ = Describe("Engine.RoundTrip", func() {
	It("sends a request and decodes a Content-Length response", func() {
		dialer, servers := pipeDialer()
		p := pool.New(dialer)
		eng := New(p)

		done := make(chan struct{})
		go func() {
			defer close(done)
			server := <-servers
			serveOnce(server, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok", true)
		}()

		req, err := htreq.New(htreq.MethodGET, "http://127.0.0.1:8080/", htreq.NewHeader(), nil, 2*time.Second)
		Expect(err).ToNot(HaveOccurred())

		resp := eng.RoundTrip(context.Background(), req)
		Eventually(done, time.Second).Should(BeClosed())

		Expect(resp.Err).To(BeNil())
		Expect(resp.Status).To(Equal(200))
		Expect(string(resp.Body)).To(Equal("ok"))
	})

	It("dials a fresh connection when the pooled one was closed while idle", func() {
		dialer, servers := pipeDialer()
		p := pool.New(dialer)
		eng := New(p)

		id := pool.Identity{Host: "127.0.0.1", Port: "8080", Secure: false}

		// First exchange: succeeds and returns the connection to the pool.
		firstDone := make(chan struct{})
		go func() {
			defer close(firstDone)
			server := <-servers
			serveOnce(server, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok", true)
		}()
		req, err := htreq.New(htreq.MethodGET, "http://127.0.0.1:8080/", htreq.NewHeader(), nil, 2*time.Second)
		Expect(err).ToNot(HaveOccurred())
		resp := eng.RoundTrip(context.Background(), req)
		Eventually(firstDone, time.Second).Should(BeClosed())
		Expect(resp.Status).To(Equal(200))

		// Simulate the server closing the idle connection before the next
		// request is sent.
		lease, err := p.Acquire(context.Background(), id)
		Expect(err).ToNot(HaveOccurred())
		Expect(lease.Conn().Reused()).To(BeTrue())
		_ = lease.Conn().Stream.Close()
		lease.ReturnToPool()

		secondDone := make(chan struct{})
		go func() {
			defer close(secondDone)
			server := <-servers
			serveOnce(server, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nretry", true)
		}()
		resp2 := eng.RoundTrip(context.Background(), req)
		Eventually(secondDone, time.Second).Should(BeClosed())
		Expect(resp2.Err).To(BeNil())
		Expect(string(resp2.Body)).To(Equal("retry"))
	})
})
