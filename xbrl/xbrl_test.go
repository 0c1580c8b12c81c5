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
package xbrl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgarpit/edgarpit/httpclient"
	"github.com/edgarpit/edgarpit/ratelimit"
	"github.com/edgarpit/edgarpit/xbrl"
)

// redirectTransport sends every request to server instead of its original
// host, so code hardcoding the real data.sec.gov URLs can still be
// exercised against an httptest.Server.
type redirectTransport struct {
	server *httptest.Server
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	redirected := req.Clone(req.Context())
	redirected.URL.Scheme = "http"
	redirected.URL.Host = strings.TrimPrefix(t.server.URL, "http://")
	return http.DefaultTransport.RoundTrip(redirected)
}

const companyFactsFixture = `{
	"cik": 320193,
	"entityName": "Apple Inc.",
	"facts": {
		"us-gaap": {
			"Revenues": {
				"units": {
					"USD": [
						{"end": "2016-09-24", "start": "2015-09-27", "val": 215639000000, "accn": "0000320193-16-000001", "form": "10-K", "filed": "2016-10-26", "frame": "CY2016"},
						{"end": "2016-09-24", "val": "not-a-number"}
					]
				}
			},
			"Assets": {
				"units": {
					"USD": [
						{"end": "2016-09-24", "val": 321686000000, "accn": "0000320193-16-000001", "form": "10-K", "filed": "2016-10-26"}
					]
				}
			}
		},
		"custom-extension": {
			"SomeCompanySpecificTag": {
				"units": {
					"USD": [
						{"end": "2016-09-24", "val": 1, "accn": "x", "form": "10-K", "filed": "2016-10-26"}
					]
				}
			}
		}
	}
}`

func newTestFetcher(srv *httptest.Server) *xbrl.Fetcher {
	limiter, err := ratelimit.New(ratelimit.HardCeilingRPS)
	Expect(err).NotTo(HaveOccurred())

	cache, err := httpclient.NewCache(filepath.Join(GinkgoT().TempDir(), "cache"), 0)
	Expect(err).NotTo(HaveOccurred())

	client, err := httpclient.New("edgarpit/1.0 ops@example.com", limiter, cache)
	Expect(err).NotTo(HaveOccurred())

	client.SetTransport(&redirectTransport{server: srv})

	return xbrl.NewFetcher(client)
}

var _ = Describe("Fetcher", func() {
	var srv *httptest.Server

	BeforeEach(func() {
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(companyFactsFixture))
		}))
	})

	AfterEach(func() {
		srv.Close()
	})

	It("flattens allowlisted namespace tags into normalized facts", func() {
		f := newTestFetcher(srv)
		facts, err := f.FetchFacts(context.Background(), "0000320193")
		Expect(err).NotTo(HaveOccurred())

		Expect(facts).To(HaveKey("us-gaap:Revenues"))
		Expect(facts).To(HaveKey("us-gaap:Assets"))
	})

	It("skips a malformed entry (non-numeric val) without failing the whole tag", func() {
		f := newTestFetcher(srv)
		facts, err := f.FetchFacts(context.Background(), "0000320193")
		Expect(err).NotTo(HaveOccurred())

		Expect(facts["us-gaap:Revenues"]).To(HaveLen(1))
	})

	It("ignores namespaces outside the allowlist", func() {
		f := newTestFetcher(srv)
		facts, err := f.FetchFacts(context.Background(), "0000320193")
		Expect(err).NotTo(HaveOccurred())

		Expect(facts).NotTo(HaveKey("custom-extension:SomeCompanySpecificTag"))
	})

	It("sets Start to nil for an instant fact with no start date", func() {
		f := newTestFetcher(srv)
		facts, err := f.FetchFacts(context.Background(), "0000320193")
		Expect(err).NotTo(HaveOccurred())

		assetsFacts := facts["us-gaap:Assets"]
		Expect(assetsFacts).To(HaveLen(1))
		Expect(assetsFacts[0].Start).To(BeNil())
	})

	It("carries a non-empty frame when reported", func() {
		f := newTestFetcher(srv)
		facts, err := f.FetchFacts(context.Background(), "0000320193")
		Expect(err).NotTo(HaveOccurred())

		revFacts := facts["us-gaap:Revenues"]
		Expect(revFacts).To(HaveLen(1))
		Expect(revFacts[0].Frame).To(Equal("CY2016"))
	})
})
