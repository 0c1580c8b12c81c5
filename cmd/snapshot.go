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
package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgarpit/edgarpit/figi"
	"github.com/edgarpit/edgarpit/filings"
	"github.com/edgarpit/edgarpit/healthping"
	"github.com/edgarpit/edgarpit/snapshot"
)

var (
	snapshotTickers           string
	snapshotCutoff            string
	snapshotPeriod            string
	snapshotIncludeAmendments bool
	snapshotAllowLTM          bool
	snapshotValidate          bool
	snapshotWorkers           int
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Build a point-in-time fundamental snapshot for a set of tickers",
	Long: `snapshot builds a standardized point-in-time fundamental data snapshot:
given a set of tickers and a cutoff date, it returns only the filings and
XBRL facts that were actually knowable on that date, reconciled into
company_master, filings, statements_income, statements_balance,
statements_cashflow, and derived_metrics tables, and writes the result
as JSON to stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cutoff, err := time.Parse("2006-01-02", snapshotCutoff)
		if err != nil {
			log.Fatal().Err(err).Str("cutoff", snapshotCutoff).Msg("could not parse --cutoff, expected YYYY-MM-DD")
		}

		periodType := filings.PeriodType(snapshotPeriod)
		switch periodType {
		case filings.Annual, filings.Quarterly, filings.AllPeriods:
		default:
			log.Fatal().Str("period", snapshotPeriod).Msg("--period must be one of annual, quarterly, all")
		}

		var tickers []string
		for _, t := range strings.Split(snapshotTickers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		if len(tickers) == 0 {
			log.Fatal().Msg("--tickers must list at least one ticker")
		}

		client, err := newClient()
		if err != nil {
			log.Fatal().Err(err).Msg("could not construct http client")
		}

		var figiResolver *figi.Resolver
		if apiKey := viper.GetString("openfigi.api_key"); apiKey != "" {
			cache, err := newCache()
			if err != nil {
				log.Fatal().Err(err).Msg("could not construct figi cache")
			}
			figiResolver = figi.NewResolver(apiKey, cache)
		}

		orchestrator := snapshot.New(client, figiResolver)

		result, err := orchestrator.Run(ctx, snapshot.Request{
			Tickers:           tickers,
			CutoffDate:        cutoff,
			PeriodType:        periodType,
			IncludeAmendments: snapshotIncludeAmendments,
			AllowLTM:          snapshotAllowLTM,
			Validate:          snapshotValidate,
			Workers:           snapshotWorkers,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("snapshot run failed")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatal().Err(err).Msg("could not encode result")
		}

		if err := healthping.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("healthcheck ping failed")
			healthping.PingFailure(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotTickers, "tickers", "", "comma-separated list of tickers (required)")
	snapshotCmd.Flags().StringVar(&snapshotCutoff, "cutoff", "", "cutoff date, YYYY-MM-DD (required)")
	snapshotCmd.Flags().StringVar(&snapshotPeriod, "period", string(filings.Annual), "annual, quarterly, or all")
	snapshotCmd.Flags().BoolVar(&snapshotIncludeAmendments, "include-amendments", false, "consider 10-K/A and 10-Q/A filings")
	snapshotCmd.Flags().BoolVar(&snapshotAllowLTM, "allow-ltm", false, "set AllowLTM on the request; the pipeline does not derive last-twelve-month periods")
	snapshotCmd.Flags().BoolVar(&snapshotValidate, "validate", false, "fail the run on schema violations instead of only logging them")
	snapshotCmd.Flags().IntVar(&snapshotWorkers, "workers", 0, "ticker worker pool size (0 selects the default)")

	cobra.CheckErr(snapshotCmd.MarkFlagRequired("tickers"))
	cobra.CheckErr(snapshotCmd.MarkFlagRequired("cutoff"))
}
