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

package htmetrics_test

import (
	"time"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htmetrics"
	"github.com/nabbar/htcore/htreq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func metricFamily(c *htmetrics.Collector, name string) float64 {
	families, err := c.Registry().Gather()
	Expect(err).NotTo(HaveOccurred())
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

var _ = Describe("Collector", func() {
	var req htreq.Request

	BeforeEach(func() {
		var err error
		req, err = htreq.New(htreq.MethodGET, "http://example.test/widgets", htreq.NewHeader(), nil, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("counts a successful response under its 2xx status class", func() {
		c := htmetrics.New()
		done := c.Begin(req)
		done(htreq.Response{Status: 200, Request: req, Elapsed: 5 * time.Millisecond})

		Expect(metricFamily(c, "htclient_requests_total")).To(Equal(1.0))
		Expect(metricFamily(c, "htclient_requests_in_flight")).To(Equal(0.0))
	})

	It("brings in-flight back to zero once the completion func runs", func() {
		c := htmetrics.New()
		done := c.Begin(req)
		Expect(metricFamily(c, "htclient_requests_in_flight")).To(Equal(1.0))
		done(htreq.Response{Status: 500, Request: req, Elapsed: time.Millisecond})
		Expect(metricFamily(c, "htclient_requests_in_flight")).To(Equal(0.0))
	})

	It("classifies a transport error as the error status class", func() {
		c := htmetrics.New()
		done := c.Begin(req)
		done(htreq.Response{Request: req, Err: herrs.New(herrs.KindNetwork, "boom"), Elapsed: time.Millisecond})
		Expect(metricFamily(c, "htclient_requests_total")).To(Equal(1.0))
	})
})
