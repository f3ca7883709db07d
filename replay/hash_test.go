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

package replay

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HashBody", func() {
	It("is deterministic for identical small bodies", func() {
		a := HashBody([]byte("hello world"))
		b := HashBody([]byte("hello world"))
		Expect(a).To(Equal(b))
	})

	It("differs for different small bodies", func() {
		a := HashBody([]byte("hello"))
		b := HashBody([]byte("world"))
		Expect(a).NotTo(Equal(b))
	})

	It("treats bodies at the threshold as whole-hashed", func() {
		body := make([]byte, largeBodyThreshold)
		for i := range body {
			body[i] = byte(i)
		}
		whole := HashBody(body)

		// Mutating a byte in the middle, outside where the head/tail
		// windows would sample, must still change the digest when the
		// body is whole-hashed.
		mutated := append([]byte(nil), body...)
		mutated[largeBodyThreshold/2] ^= 0xFF
		Expect(HashBody(mutated)).NotTo(Equal(whole))
	})

	It("falls back to head/tail/length sampling above the threshold", func() {
		body := make([]byte, largeBodyThreshold+1)
		original := HashBody(body)

		// A change strictly in the untouched middle (outside both sampled
		// windows) must not change the digest, since only the head, tail,
		// and total length are hashed for oversized bodies.
		mutated := append([]byte(nil), body...)
		mid := len(mutated) / 2
		mutated[mid] ^= 0xFF
		Expect(HashBody(mutated)).To(Equal(original))
	})

	It("distinguishes oversized bodies of different lengths with identical head and tail", func() {
		short := make([]byte, largeBodyThreshold+1)
		long := make([]byte, largeBodyThreshold+2)
		Expect(HashBody(short)).NotTo(Equal(HashBody(long)))
	})
})
