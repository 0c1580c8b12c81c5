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
package httpclient

import "errors"

var (
	// ErrRateLimit is returned once retries are exhausted on a 429 response.
	ErrRateLimit = errors.New("httpclient: rate limited and retries exhausted")

	// ErrHTTP is returned for a non-retryable (non-429) 4xx response.
	ErrHTTP = errors.New("httpclient: non-retryable HTTP error")

	// ErrInvalidUserAgent is returned when the configured User-Agent does not
	// meet the "Name/Version email" shape SEC EDGAR requires.
	ErrInvalidUserAgent = errors.New("httpclient: invalid user agent")
)
