// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cik_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgarpit/edgarpit/cik"
	"github.com/edgarpit/edgarpit/httpclient"
	"github.com/edgarpit/edgarpit/ratelimit"
)

const registryFixture = `{
	"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
	"1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"}
}`

func newTestResolver(url string) *cik.Resolver {
	limiter, err := ratelimit.New(ratelimit.HardCeilingRPS)
	Expect(err).NotTo(HaveOccurred())

	cache, err := httpclient.NewCache(filepath.Join(GinkgoT().TempDir(), "cache"), 0)
	Expect(err).NotTo(HaveOccurred())

	client, err := httpclient.New("edgarpit/1.0 ops@example.com", limiter, cache)
	Expect(err).NotTo(HaveOccurred())

	return cik.NewResolverWithRegistryURL(client, url)
}

var _ = Describe("Resolver", func() {
	var srv *httptest.Server
	var hits int32

	BeforeEach(func() {
		hits = 0
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(registryFixture))
		}))
	})

	AfterEach(func() {
		srv.Close()
	})

	It("resolves a known ticker case-insensitively", func() {
		r := newTestResolver(srv.URL)

		entry, err := r.Resolve(context.Background(), "aapl")
		Expect(err).NotTo(HaveOccurred())
		Expect(entry.CIK).To(Equal("0000320193"))
		Expect(entry.Name).To(Equal("Apple Inc."))
	})

	It("fetches the registry only once across many lookups", func() {
		r := newTestResolver(srv.URL)

		_, err := r.Resolve(context.Background(), "AAPL")
		Expect(err).NotTo(HaveOccurred())
		_, err = r.Resolve(context.Background(), "MSFT")
		Expect(err).NotTo(HaveOccurred())

		Expect(atomic.LoadInt32(&hits)).To(Equal(int32(1)))
	})

	It("returns ErrCIKLookup for an unknown ticker", func() {
		r := newTestResolver(srv.URL)

		_, err := r.Resolve(context.Background(), "NOTREAL")
		Expect(err).To(MatchError(cik.ErrCIKLookup))
	})

	It("skips unresolved tickers in ResolveMany without failing the batch", func() {
		r := newTestResolver(srv.URL)

		entries, err := r.ResolveMany(context.Background(), []string{"AAPL", "NOPE", "MSFT"})
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Ticker).To(Equal("AAPL"))
		Expect(entries[1].Ticker).To(Equal("MSFT"))
	})
})
