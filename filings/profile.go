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

import (
	"context"
	"fmt"
)

// CompanyProfile carries the company-identity fields the submissions blob
// reports alongside a filer's history.
type CompanyProfile struct {
	Name           string
	SIC            string
	SICDescription string
	FiscalYearEnd  string
}

type profileResponse struct {
	Name           string `json:"name"`
	SIC            string `json:"sic"`
	SICDescription string `json:"sicDescription"`
	FiscalYearEnd  string `json:"fiscalYearEnd"`
}

// FetchProfile fetches the submissions blob's company-identity fields. It
// shares the cache entry Fetch would populate for the same CIK, so calling
// both costs at most one network round trip.
func (idx *Index) FetchProfile(ctx context.Context, cik string) (CompanyProfile, error) {
	var resp profileResponse
	url := fmt.Sprintf(submissionsURLFmt, cik)
	if err := idx.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return CompanyProfile{}, fmt.Errorf("filings: fetch company profile for CIK %s: %w", cik, err)
	}

	return CompanyProfile{
		Name:           resp.Name,
		SIC:            resp.SIC,
		SICDescription: resp.SICDescription,
		FiscalYearEnd:  resp.FiscalYearEnd,
	}, nil
}
