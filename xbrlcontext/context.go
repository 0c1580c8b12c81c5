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

// Package xbrlcontext narrows a tag's candidate fact list down to the one
// fact that best represents a given fiscal period: it applies the
// period-type window (instant vs. duration), then an exact-then-fuzzy
// match against the requested period end, treating the XBRL "frame" label
// as a tie-breaker only, never a hard filter.
package xbrlcontext

import (
	"time"

	"github.com/edgarpit/edgarpit/xbrl"
)

// ContextType selects which period-window rule applies to a tag.
type ContextType string

const (
	Instant  ContextType = "instant"
	Duration ContextType = "duration"
)

const (
	annualMinDays      = 330
	annualMaxDays      = 400
	quarterlyMinDays   = 75
	quarterlyMaxDays   = 100
	fuzzyToleranceDays = 7
)

// FilterByPeriodType keeps only facts whose context shape matches
// contextType: instant facts must have no start date; duration facts must
// span an annual (330-400 day) or quarterly (75-100 day) window. The
// window tolerates 52/53-week fiscal years and non-calendar period ends.
func FilterByPeriodType(facts []xbrl.Fact, contextType ContextType) []xbrl.Fact {
	kept := make([]xbrl.Fact, 0, len(facts))

	for _, f := range facts {
		switch contextType {
		case Instant:
			if f.Start == nil {
				kept = append(kept, f)
			}
		case Duration:
			if f.Start == nil {
				continue
			}
			days := int(f.End.Sub(*f.Start).Hours() / 24)
			if inRange(days, annualMinDays, annualMaxDays) || inRange(days, quarterlyMinDays, quarterlyMaxDays) {
				kept = append(kept, f)
			}
		}
	}

	return kept
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

// BestFact selects the single best fact for periodEnd from a period-type-
// filtered candidate list, given cutoff. Facts filed after cutoff are
// never eligible. Returns ok=false if nothing qualifies.
func BestFact(facts []xbrl.Fact, periodEnd time.Time, cutoff time.Time) (xbrl.Fact, bool) {
	eligible := make([]xbrl.Fact, 0, len(facts))
	for _, f := range facts {
		if f.Filed.After(cutoff) {
			continue
		}
		eligible = append(eligible, f)
	}

	if exact, ok := bestExact(eligible, periodEnd); ok {
		return exact, true
	}

	return bestFuzzy(eligible, periodEnd)
}

func bestExact(facts []xbrl.Fact, periodEnd time.Time) (xbrl.Fact, bool) {
	candidates := make([]xbrl.Fact, 0, len(facts))
	for _, f := range facts {
		if f.End.Equal(periodEnd) {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return xbrl.Fact{}, false
	}

	candidates = preferFramed(candidates)

	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.Filed.After(best.Filed) {
			best = f
		}
	}

	return best, true
}

func bestFuzzy(facts []xbrl.Fact, periodEnd time.Time) (xbrl.Fact, bool) {
	type scored struct {
		fact     xbrl.Fact
		distance int
	}

	candidates := make([]scored, 0, len(facts))
	for _, f := range facts {
		distance := dayDistance(f.End, periodEnd)
		if distance <= fuzzyToleranceDays {
			candidates = append(candidates, scored{fact: f, distance: distance})
		}
	}

	if len(candidates) == 0 {
		return xbrl.Fact{}, false
	}

	minDistance := candidates[0].distance
	for _, c := range candidates[1:] {
		if c.distance < minDistance {
			minDistance = c.distance
		}
	}

	closest := make([]xbrl.Fact, 0, len(candidates))
	for _, c := range candidates {
		if c.distance == minDistance {
			closest = append(closest, c.fact)
		}
	}

	closest = preferFramed(closest)

	best := closest[0]
	for _, f := range closest[1:] {
		if f.Filed.After(best.Filed) {
			best = f
		}
	}

	return best, true
}

// preferFramed restricts to framed facts if any candidate has a frame
// label; frame is a tie-breaker, never a hard filter, so an all-unframed
// set (non-calendar fiscal years) passes through unchanged.
func preferFramed(facts []xbrl.Fact) []xbrl.Fact {
	framed := make([]xbrl.Fact, 0, len(facts))
	for _, f := range facts {
		if f.Frame != "" {
			framed = append(framed, f)
		}
	}
	if len(framed) > 0 {
		return framed
	}
	return facts
}

func dayDistance(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
