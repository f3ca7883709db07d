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

package cookiejar

import (
	"net/url"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Jar", func() {
	var u *url.URL

	BeforeEach(func() {
		u, _ = url.Parse("https://api.example.com/widgets/123")
	})

	It("stores and returns a cookie matching domain and path", func() {
		j := New()
		j.SetCookies(u, []Cookie{{Name: "session", Value: "abc"}})

		cs := j.Cookies(u)
		Expect(cs).To(HaveLen(1))
		Expect(cs[0].Name).To(Equal("session"))
	})

	It("omits a Secure cookie for a plain-http request", func() {
		j := New()
		j.SetCookies(u, []Cookie{{Name: "s", Value: "v", Secure: true}})

		plain, _ := url.Parse("http://api.example.com/widgets/123")
		Expect(j.Cookies(plain)).To(BeEmpty())
		Expect(j.Cookies(u)).To(HaveLen(1))
	})

	It("matches a cookie set on a parent domain with a leading dot", func() {
		j := New()
		j.SetCookies(u, []Cookie{{Name: "s", Value: "v", Domain: ".example.com", Path: "/"}})

		sub, _ := url.Parse("https://api.example.com/anything")
		Expect(j.Cookies(sub)).To(HaveLen(1))

		unrelated, _ := url.Parse("https://other.com/")
		Expect(j.Cookies(unrelated)).To(BeEmpty())
	})

	It("purges an expired cookie lazily on read", func() {
		j := New()
		j.SetCookies(u, []Cookie{{Name: "s", Value: "v", Expires: time.Now().UTC().Add(time.Hour)}})
		Expect(j.Len()).To(Equal(1))

		j.byKey[cookieKey{name: "s", domain: u.Hostname(), path: "/widgets"}] = Cookie{
			Name: "s", Value: "v", Domain: u.Hostname(), Path: "/widgets",
			Expires: time.Now().UTC().Add(-time.Hour),
		}
		Expect(j.Cookies(u)).To(BeEmpty())
		Expect(j.Len()).To(Equal(0))
	})

	It("deletes a stored cookie when SetCookies receives an empty value", func() {
		j := New()
		j.SetCookies(u, []Cookie{{Name: "s", Value: "v"}})
		Expect(j.Len()).To(Equal(1))

		j.SetCookies(u, []Cookie{{Name: "s", Value: ""}})
		Expect(j.Len()).To(Equal(0))
	})

	It("enforces the per-domain bound by evicting the soonest-to-expire entries", func() {
		j := New()
		now := time.Now().UTC()
		cs := make([]Cookie, 0, MaxPerDomain+5)
		for i := 0; i < MaxPerDomain+5; i++ {
			cs = append(cs, Cookie{
				Name:    "c" + strconv.Itoa(i),
				Value:   "v",
				Expires: now.Add(time.Duration(i+1) * time.Minute),
			})
		}
		j.SetCookies(u, cs)
		Expect(j.Len()).To(BeNumerically("<=", MaxPerDomain))
	})
})
