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

	"github.com/nabbar/htcore/htcache"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache middleware", func() {
	It("stores a fresh successful response and serves the next identical request from cache", func() {
		req := mustRequest(htreq.MethodGET, "http://example.test/widgets")
		store := htcache.NewStore()
		calls := 0
		h := Cache(store, time.Minute)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			calls++
			return htreq.Response{Status: 200, Header: htreq.NewHeader(), Body: []byte("payload"), Request: r}
		})

		sig := htctx.New(req)
		first := h(context.Background(), sig, req)
		Expect(string(first.Body)).To(Equal("payload"))
		Expect(calls).To(Equal(1))

		second := h(context.Background(), htctx.New(req), req)
		Expect(string(second.Body)).To(Equal("payload"))
		Expect(calls).To(Equal(1))
	})

	It("revalidates a stale ETag-bearing entry and serves the cached body on a 304", func() {
		req := mustRequest(htreq.MethodGET, "http://example.test/widgets")
		store := htcache.NewStore()

		h1 := htreq.NewHeader()
		_ = h1.Set("ETag", `"v1"`)
		store.Put(htcache.NewEntry(htcache.CacheKey(req), "", htreq.Response{
			Status: 200, Header: h1, Body: []byte("cached"), Request: req,
		}, time.Now().Add(-time.Minute)))

		var seenIfNoneMatch string
		h := Cache(store, time.Minute)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			seenIfNoneMatch, _ = r.Header().First("If-None-Match")
			return htreq.Response{Status: 304, Header: htreq.NewHeader(), Request: r}
		})

		sig := htctx.New(req)
		resp := h(context.Background(), sig, req)
		Expect(seenIfNoneMatch).To(Equal(`"v1"`))
		Expect(string(resp.Body)).To(Equal("cached"))
	})

	It("passes non-cacheable methods straight through without storing", func() {
		req := mustRequest(htreq.MethodPOST, "http://example.test/widgets")
		store := htcache.NewStore()
		h := Cache(store, time.Minute)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			return htreq.Response{Status: 200, Header: htreq.NewHeader(), Body: []byte("x"), Request: r}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)
		Expect(store.Len()).To(Equal(0))
	})
})
