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
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edgarpit/edgarpit/assemble"
	"github.com/edgarpit/edgarpit/cik"
	"github.com/edgarpit/edgarpit/figi"
	"github.com/edgarpit/edgarpit/filings"
	"github.com/edgarpit/edgarpit/httpclient"
	"github.com/edgarpit/edgarpit/schema"
	"github.com/edgarpit/edgarpit/statement"
	"github.com/edgarpit/edgarpit/xbrl"
)

const defaultWorkers = 4

// ErrEstimatesNotAllowed is returned when a Request sets AllowEstimates,
// which would violate point-in-time semantics -- estimate columns are
// forward-looking by construction.
var ErrEstimatesNotAllowed = errors.New("snapshot: allow_estimates is incompatible with point-in-time semantics")

// Orchestrator is the top-level pipeline: CIK resolution, per-ticker worker
// pool, assembly, and validation. Parallelism is across tickers only; each
// ticker's filings -> selection -> facts -> rows chain runs sequentially
// inside one worker.
type Orchestrator struct {
	cikResolver  *cik.Resolver
	filingsIndex *filings.Index
	xbrlFetcher  *xbrl.Fetcher
	figiResolver *figi.Resolver
}

// New constructs an Orchestrator from a shared HTTP client. figiResolver may
// be nil to skip FIGI enrichment entirely.
func New(client *httpclient.Client, figiResolver *figi.Resolver) *Orchestrator {
	return &Orchestrator{
		cikResolver:  cik.NewResolver(client),
		filingsIndex: filings.NewIndex(client),
		xbrlFetcher:  xbrl.NewFetcher(client),
		figiResolver: figiResolver,
	}
}

type tickerBatch struct {
	companyMaster assemble.CompanyMasterRow
	filingRows    []schema.Row
	income        []statement.Row
	balance       []statement.Row
	cashflow      []statement.Row
}

// Run executes the pipeline for req and returns the assembled tables and
// coverage report. It never returns a partial-failure as an error: a single
// ticker's failure is recorded in the coverage report and does not poison
// the rest. Cancelling ctx stops workers from starting new tickers; ctx is
// also passed to every HTTP call, so requests already in flight are aborted
// rather than allowed to finish.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if req.AllowEstimates {
		return Result{}, ErrEstimatesNotAllowed
	}

	workers := req.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	runID := uuid.NewString()
	runLogger := log.With().Str("run_id", runID).Logger()
	ctx = runLogger.WithContext(ctx)

	entries, err := o.cikResolver.ResolveMany(ctx, req.Tickers)
	if err != nil {
		return Result{}, fmt.Errorf("snapshot: resolve tickers: %w", err)
	}

	resolvedTickers := make(map[string]bool, len(entries))
	for _, e := range entries {
		resolvedTickers[e.Ticker] = true
	}

	outcomes := make(map[string]TickerOutcome, len(req.Tickers))
	var outcomesMu sync.Mutex
	for _, t := range req.Tickers {
		if !resolvedTickers[t] {
			outcomesMu.Lock()
			outcomes[t] = TickerOutcome{Ticker: t, Found: false, Err: cik.ErrCIKLookup}
			outcomesMu.Unlock()
		}
	}

	jobs := make(chan cik.Entry, len(entries))
	for _, e := range entries {
		jobs <- e
	}
	close(jobs)

	batches := make(chan tickerBatch, workers)

	var workersWG sync.WaitGroup
	for i := 0; i < workers; i++ {
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			for entry := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				outcome, batch := o.runTicker(ctx, entry, req)

				outcomesMu.Lock()
				outcomes[entry.Ticker] = outcome
				outcomesMu.Unlock()

				if batch != nil {
					batches <- *batch
				}
			}
		}()
	}

	builder := assemble.NewBuilder()
	var consumerWG sync.WaitGroup
	consumerWG.Add(1)
	go func() {
		defer consumerWG.Done()
		for batch := range batches {
			builder.AddCompanyMaster(batch.companyMaster)
			for _, r := range batch.filingRows {
				builder.AddFiling(r)
			}
			for _, r := range batch.income {
				builder.AddIncome(r)
			}
			for _, r := range batch.balance {
				builder.AddBalance(r)
			}
			for _, r := range batch.cashflow {
				builder.AddCashflow(r)
			}
		}
	}()

	workersWG.Wait()
	close(batches)
	consumerWG.Wait()

	tables := builder.Build(ctx, o.figiResolver)

	for _, t := range []schema.Table{schema.StatementsIncome, schema.StatementsBalance, schema.StatementsCashflow} {
		rows := tableRows(tables, t.Name)
		if err := schema.Validate(t, rows, req.Validate); err != nil {
			return Result{}, err
		}
	}

	coverage := buildCoverageReport(req.Tickers, outcomes)
	coverage.FillRatios, coverage.MissingFields = summarizeFillRatios(tables)

	return Result{
		RunID:      runID,
		CutoffDate: req.CutoffDate,
		Tables:     tables,
		Coverage:   coverage,
	}, nil
}

func tableRows(tables assemble.Result, name string) []schema.Row {
	switch name {
	case schema.StatementsIncome.Name:
		return tables.StatementsIncome.Rows
	case schema.StatementsBalance.Name:
		return tables.StatementsBalance.Rows
	case schema.StatementsCashflow.Name:
		return tables.StatementsCashflow.Rows
	default:
		return nil
	}
}

// runTicker executes the filings -> selection -> xbrl -> statement chain for
// one ticker. Any failure is logged and reflected in the returned outcome;
// it never panics or propagates past this function.
func (o *Orchestrator) runTicker(ctx context.Context, entry cik.Entry, req Request) (TickerOutcome, *tickerBatch) {
	start := time.Now()
	outcome := TickerOutcome{Ticker: entry.Ticker, StartTime: start}

	records, err := o.filingsIndex.Fetch(ctx, entry.CIK, entry.Ticker, req.CutoffDate, req.PeriodType, req.IncludeAmendments)
	if err != nil {
		outcome.Err = err
		outcome.EndTime = time.Now()
		log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("snapshot: no filings survived the PIT gate")
		return outcome, nil
	}

	selected, err := filings.Select(records, req.CutoffDate)
	if err != nil {
		outcome.Err = err
		outcome.EndTime = time.Now()
		log.Error().Err(err).Str("ticker", entry.Ticker).Msg("snapshot: cutoff violation in filing selection")
		return outcome, nil
	}

	facts, err := o.xbrlFetcher.FetchFacts(ctx, entry.CIK)
	if err != nil {
		outcome.Err = err
		outcome.EndTime = time.Now()
		log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("snapshot: could not fetch or parse companyfacts")
		return outcome, nil
	}

	profile, err := o.filingsIndex.FetchProfile(ctx, entry.CIK)
	if err != nil {
		log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("snapshot: could not fetch company profile, company_master fields will be sparse")
	}

	batch := &tickerBatch{
		companyMaster: assemble.CompanyMasterRow{
			Ticker:         entry.Ticker,
			CIK:            entry.CIK,
			Name:           firstNonEmpty(profile.Name, entry.Name),
			SIC:            profile.SIC,
			SICDescription: profile.SICDescription,
			FiscalYearEnd:  profile.FiscalYearEnd,
		},
	}

	rowCount := 0
	for _, filing := range selected {
		batch.filingRows = append(batch.filingRows, schema.Row{
			"ticker":              filing.Ticker,
			"cik":                 filing.CIK,
			"accession":           filing.Accession,
			"form_type":           filing.FormType,
			"filing_date":         filing.FilingDate,
			"acceptance_datetime": filing.AcceptanceDatetime,
			"period_of_report":    filing.PeriodOfReport,
		})

		meta := statement.Meta{
			Ticker:    filing.Ticker,
			CIK:       filing.CIK,
			Accession: filing.Accession,
			AsofDate:  filing.AcceptanceDatetime,
			PeriodEnd: filing.PeriodOfReport,
			Source:    "edgar",
		}

		if row, ok := statement.BuildIncomeRow(meta, facts, req.CutoffDate); ok {
			batch.income = append(batch.income, row)
			rowCount++
		}
		if row, ok := statement.BuildBalanceRow(meta, facts, req.CutoffDate); ok {
			batch.balance = append(batch.balance, row)
			rowCount++
		}
		if row, ok := statement.BuildCashflowRow(meta, facts, req.CutoffDate); ok {
			batch.cashflow = append(batch.cashflow, row)
			rowCount++
		}
	}

	outcome.Found = rowCount > 0
	outcome.RowCount = rowCount
	outcome.EndTime = time.Now()

	return outcome, batch
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
