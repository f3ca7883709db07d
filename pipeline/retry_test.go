/*
 * MIT License
 *
 * Copyright (c) 2026 htcore contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package pipeline

import (
	"context"
	"time"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Retry", func() {
	var req htreq.Request

	BeforeEach(func() {
		req = mustRequest(htreq.MethodGET, "http://example.test/")
	})

	fastPolicy := func() RetryPolicy {
		p := DefaultRetryPolicy()
		p.BaseDelay = time.Millisecond
		p.MaxDelay = 2 * time.Millisecond
		return p
	}

	It("retries a retryable failure up to MaxAttempts and then gives up", func() {
		calls := 0
		h := Retry(fastPolicy())(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			calls++
			return htreq.Response{Request: r, Err: herrs.New(herrs.KindNetwork, "boom")}
		})
		sig := htctx.New(req)
		resp := h(context.Background(), sig, req)
		Expect(calls).To(Equal(fastPolicy().MaxAttempts))
		Expect(resp.Err).NotTo(BeNil())
	})

	It("stops at the first success", func() {
		calls := 0
		h := Retry(fastPolicy())(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			calls++
			if calls == 1 {
				return htreq.Response{Request: r, Err: herrs.New(herrs.KindNetwork, "boom")}
			}
			return htreq.Response{Status: 200, Request: r}
		})
		sig := htctx.New(req)
		resp := h(context.Background(), sig, req)
		Expect(calls).To(Equal(2))
		Expect(resp.Status).To(Equal(200))
	})

	It("never retries a non-idempotent method under IdempotentOnly", func() {
		calls := 0
		req2 := mustRequest(htreq.MethodPOST, "http://example.test/")
		h := Retry(fastPolicy())(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			calls++
			return htreq.Response{Request: r, Err: herrs.New(herrs.KindNetwork, "boom")}
		})
		sig := htctx.New(req2)
		h(context.Background(), sig, req2)
		Expect(calls).To(Equal(1))
	})

	It("never retries a Cancelled failure", func() {
		calls := 0
		h := Retry(fastPolicy())(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			calls++
			return htreq.Response{Request: r, Err: herrs.New(herrs.KindCancelled, "cancelled")}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)
		Expect(calls).To(Equal(1))
	})

	It("does not retry a non-retryable failure kind", func() {
		calls := 0
		h := Retry(fastPolicy())(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			calls++
			return htreq.Response{Request: r, Err: herrs.New(herrs.KindHTTPStatus, "404")}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)
		Expect(calls).To(Equal(1))
	})
})
