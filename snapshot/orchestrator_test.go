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
package snapshot_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgarpit/edgarpit/filings"
	"github.com/edgarpit/edgarpit/httpclient"
	"github.com/edgarpit/edgarpit/ratelimit"
	"github.com/edgarpit/edgarpit/snapshot"
)

// redirectTransport rewrites every outbound request's scheme/host to point
// at a local httptest.Server, leaving the path untouched -- the orchestrator
// composes packages that hardcode real SEC URL formats, so interception has
// to happen at the transport layer rather than via an injected base URL.
type redirectTransport struct {
	server *httptest.Server
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	target, err := url.Parse(t.server.URL)
	if err != nil {
		return nil, err
	}
	clone.URL.Scheme = target.Scheme
	clone.URL.Host = target.Host
	clone.Host = target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

const tickerRegistryFixture = `{
  "0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}
}`

const submissionsFixture = `{
  "cik": "320193",
  "name": "Apple Inc.",
  "sic": "3571",
  "sicDescription": "Electronic Computers",
  "fiscalYearEnd": "0930",
  "filings": {
    "recent": {
      "accessionNumber": ["0000320193-16-000001"],
      "filingDate": ["2016-10-26"],
      "reportDate": ["2016-09-24"],
      "acceptanceDateTime": ["2016-10-26T08:00:00.000Z"],
      "form": ["10-K"]
    },
    "files": []
  }
}`

const companyFactsFixture = `{
  "facts": {
    "us-gaap": {
      "Revenues": {
        "units": {
          "USD": [
            {"end": "2016-09-24", "start": "2015-09-27", "val": 215639000000, "accn": "0000320193-16-000001", "form": "10-K", "filed": "2016-10-26"}
          ]
        }
      },
      "NetIncomeLoss": {
        "units": {
          "USD": [
            {"end": "2016-09-24", "start": "2015-09-27", "val": 45687000000, "accn": "0000320193-16-000001", "form": "10-K", "filed": "2016-10-26"}
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
    }
  }
}`

func newTestClient(mux *http.ServeMux) *httpclient.Client {
	srv := httptest.NewServer(mux)
	limiter, err := ratelimit.New(10)
	Expect(err).NotTo(HaveOccurred())
	client, err := httpclient.New(fmt.Sprintf("edgarpit/1.0 ops-%p@example.com", srv), limiter, newTestCache())
	Expect(err).NotTo(HaveOccurred())
	client.SetTransport(&redirectTransport{server: srv})
	DeferCleanup(srv.Close)
	return client
}

func newTestCache() *httpclient.Cache {
	cache, err := httpclient.NewCache(GinkgoT().TempDir(), 0)
	Expect(err).NotTo(HaveOccurred())
	return cache
}

var _ = Describe("Orchestrator.Run", func() {
	It("rejects a request with allow_estimates set", func() {
		mux := http.NewServeMux()
		client := newTestClient(mux)
		o := snapshot.New(client, nil)

		_, err := o.Run(context.Background(), snapshot.Request{
			Tickers: []string{"AAPL"}, AllowEstimates: true,
		})
		Expect(err).To(MatchError(snapshot.ErrEstimatesNotAllowed))
	})

	It("builds an AAPL annual snapshot with no row dated after the cutoff", func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/files/company_tickers.json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tickerRegistryFixture))
		})
		mux.HandleFunc("/submissions/CIK0000320193.json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(submissionsFixture))
		})
		mux.HandleFunc("/api/xbrl/companyfacts/CIK0000320193.json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(companyFactsFixture))
		})

		client := newTestClient(mux)
		o := snapshot.New(client, nil)

		cutoff, err := time.Parse("2006-01-02", "2016-12-31")
		Expect(err).NotTo(HaveOccurred())

		result, err := o.Run(context.Background(), snapshot.Request{
			Tickers:    []string{"AAPL"},
			CutoffDate: cutoff,
			PeriodType: filings.Annual,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Coverage.Found).To(ContainElement("AAPL"))
		Expect(result.Tables.StatementsIncome.Rows).NotTo(BeEmpty())

		for _, row := range result.Tables.StatementsIncome.Rows {
			asof, _ := row["asof_date"].(time.Time)
			Expect(asof.After(cutoff)).To(BeFalse())
		}

		Expect(result.Tables.CompanyMaster.Rows).To(HaveLen(1))
		Expect(result.Tables.CompanyMaster.Rows[0]["name"]).To(Equal("Apple Inc."))
	})

	It("isolates an unresolved ticker without failing the whole run", func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/files/company_tickers.json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tickerRegistryFixture))
		})

		client := newTestClient(mux)
		o := snapshot.New(client, nil)

		result, err := o.Run(context.Background(), snapshot.Request{
			Tickers:    []string{"AAPL", "ZZZZ"},
			CutoffDate: time.Now(),
			PeriodType: filings.Annual,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Coverage.Missing).To(ContainElement("ZZZZ"))
	})
})
