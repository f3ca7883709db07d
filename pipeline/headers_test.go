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

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DefaultHeaders", func() {
	It("adds the header when absent", func() {
		req := mustRequest(htreq.MethodGET, "http://example.test/")
		var seen htreq.Request
		h := DefaultHeaders("User-Agent", "htcore/1.0", SkipIfPresent)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			seen = r
			return htreq.Response{Status: 200, Request: r}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)
		v, ok := seen.Header().First("User-Agent")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("htcore/1.0"))
	})

	It("leaves a caller-set header alone under SkipIfPresent", func() {
		req := mustRequest(htreq.MethodGET, "http://example.test/").WithHeader("User-Agent", "custom/2.0")
		var seen htreq.Request
		h := DefaultHeaders("User-Agent", "htcore/1.0", SkipIfPresent)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			seen = r
			return htreq.Response{Status: 200, Request: r}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)
		v, _ := seen.Header().First("User-Agent")
		Expect(v).To(Equal("custom/2.0"))
	})

	It("overrides a caller-set header under Override", func() {
		req := mustRequest(htreq.MethodGET, "http://example.test/").WithHeader("User-Agent", "custom/2.0")
		var seen htreq.Request
		h := DefaultHeaders("User-Agent", "htcore/1.0", Override)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			seen = r
			return htreq.Response{Status: 200, Request: r}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)
		v, _ := seen.Header().First("User-Agent")
		Expect(v).To(Equal("htcore/1.0"))
	})

	It("does not mutate the original Request passed in", func() {
		req := mustRequest(htreq.MethodGET, "http://example.test/")
		h := DefaultHeaders("User-Agent", "htcore/1.0", SkipIfPresent)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			return htreq.Response{Status: 200, Request: r}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)
		Expect(req.Header().Has("User-Agent")).To(BeFalse())
	})
})
