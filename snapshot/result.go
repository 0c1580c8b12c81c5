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
	"time"

	"github.com/edgarpit/edgarpit/assemble"
)

// Result is the bundle returned to a caller of Orchestrator.Run: the
// assembled tables, the cutoff they were built against, and the coverage
// report describing which tickers produced data.
type Result struct {
	RunID      string
	CutoffDate time.Time
	Tables     assemble.Result
	Coverage   CoverageReport
}
