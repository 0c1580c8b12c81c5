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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edgarpit",
	Short: "edgarpit builds point-in-time fundamental snapshots from SEC EDGAR",
	Long: `edgarpit is a command line utility for building point-in-time (PIT)
fundamental-data snapshots of publicly traded companies for backtesting
equity research. Given a set of tickers and a cutoff date, it returns
standardized financial statements containing only data that was actually
knowable to an investor on that date.

edgarpit pulls filing metadata and XBRL facts directly from:

	* SEC EDGAR submissions (https://data.sec.gov/submissions)
	* SEC EDGAR company facts (https://data.sec.gov/api/xbrl/companyfacts)
	* SEC EDGAR ticker registry (https://www.sec.gov/files/company_tickers.json)

and reconciles them through a PIT cutoff gate, a fiscal-period filing
selector, and an accounting-identity validator before handing back
standardized income, balance, and cashflow tables.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edgarpit.toml)")

	viper.SetDefault("http.user_agent", "edgarpit/0.1 contact@example.com")
	viper.SetDefault("http.rate_limit_rps", 8.0)
	viper.SetDefault("cache.root", "")
	viper.SetDefault("cache.max_bytes", int64(512*1024*1024))
	viper.SetDefault("openfigi.api_key", "")
	viper.SetDefault("healthcheck.ping_url", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".edgarpit" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".edgarpit")
	}

	viper.SetEnvPrefix("EDGARPIT")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
