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

package htmonitor

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ring", func() {
	It("stores up to its capacity", func() {
		r := NewRing(3)
		r.Push(Event{CapturedAt: time.Now()})
		r.Push(Event{CapturedAt: time.Now()})
		Expect(r.Len()).To(Equal(2))
	})

	It("evicts the oldest entry once full, keeping insertion order", func() {
		r := NewRing(2)
		first := time.Now()
		second := first.Add(time.Second)
		third := first.Add(2 * time.Second)

		r.Push(Event{CapturedAt: first})
		r.Push(Event{CapturedAt: second})
		r.Push(Event{CapturedAt: third})

		snap := r.Snapshot()
		Expect(snap).To(HaveLen(2))
		Expect(snap[0].CapturedAt).To(Equal(second))
		Expect(snap[1].CapturedAt).To(Equal(third))
	})

	It("treats a non-positive capacity as 1", func() {
		r := NewRing(0)
		r.Push(Event{})
		r.Push(Event{})
		Expect(r.Len()).To(Equal(1))
	})
})
