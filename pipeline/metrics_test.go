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
	"github.com/nabbar/htcore/htmetrics"
	"github.com/nabbar/htcore/htreq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Metrics middleware", func() {
	It("records exactly one completed request per call", func() {
		req := mustRequest(htreq.MethodGET, "http://example.test/")
		c := htmetrics.New()
		h := Metrics(c)(func(ctx context.Context, sig *htctx.Context, r htreq.Request) htreq.Response {
			return htreq.Response{Status: 200, Request: r}
		})
		sig := htctx.New(req)
		h(context.Background(), sig, req)

		families, err := c.Registry().Gather()
		Expect(err).NotTo(HaveOccurred())
		found := false
		for _, mf := range families {
			if mf.GetName() == "htclient_requests_total" {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})
})
