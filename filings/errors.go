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
package filings

import "errors"

var (
	// ErrFilingNotFound is raised when no filing survives the PIT gate for a
	// ticker's requested period type.
	ErrFilingNotFound = errors.New("filings: no filing found within cutoff")

	// ErrCutoffViolation is raised by the filing selector's defense-in-depth
	// re-check: no record reaching the selector should ever be beyond cutoff.
	ErrCutoffViolation = errors.New("filings: cutoff violation")
)
