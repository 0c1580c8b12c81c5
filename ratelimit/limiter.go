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

// Package ratelimit provides the single global throttle shared by every
// outbound EDGAR request: a token-bucket limiter with a hard requests-per-
// second ceiling that cannot be configured away.
package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// HardCeilingRPS is the upstream policy constraint no configuration may
// exceed: SEC EDGAR asks fair-access clients to stay at or below this rate.
const HardCeilingRPS = 10.0

// ErrCeilingExceeded is returned by New when the requested RPS is above
// HardCeilingRPS.
var ErrCeilingExceeded = errors.New("ratelimit: requested rate exceeds hard ceiling")

// Limiter is a thread-safe token bucket. Capacity and burst both equal the
// configured RPS; refill runs at RPS tokens/sec.
type Limiter struct {
	rps     float64
	limiter *rate.Limiter
}

// New constructs a Limiter. It rejects any rps above HardCeilingRPS at
// construction time rather than silently clamping it.
func New(rps float64) (*Limiter, error) {
	if rps <= 0 {
		return nil, fmt.Errorf("ratelimit: rps must be positive, got %v", rps)
	}
	if rps > HardCeilingRPS {
		return nil, fmt.Errorf("%w: %v > %v", ErrCeilingExceeded, rps, HardCeilingRPS)
	}

	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		rps:     rps,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// Wait blocks until a single token is available, or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// WaitN blocks until n tokens are available, or ctx is cancelled.
func (l *Limiter) WaitN(ctx context.Context, n int) error {
	return l.limiter.WaitN(ctx, n)
}

// RPS returns the configured requests-per-second rate.
func (l *Limiter) RPS() float64 {
	return l.rps
}
