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

// Package httpclient is the rate-limited, retrying, on-disk-cached GET
// client every EDGAR collaborator (cik, filings, xbrl, figi) funnels its
// requests through. It owns exactly one cache; the rate limiter it is
// constructed with is expected to be shared across every Client in a
// process, since the limiter -- not the client -- is the thing enforcing
// the global RPS budget.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edgarpit/edgarpit/ratelimit"
)

const (
	maxRetries   = 5
	minBackoff   = 1 * time.Second
	maxBackoff   = 60 * time.Second
	retryStatus4 = http.StatusTooManyRequests
)

var retryableStatusCodes = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// sessions holds one resty.Client per distinct user-agent string, shared
// across every httpclient.Client constructed with that user agent -- the
// underlying connection pool and cookie jar are worth reusing, the cache is
// not (each Client owns its own).
var (
	sessionsMu sync.Mutex
	sessions   = map[string]*resty.Client{}
)

func sessionFor(userAgent string) *resty.Client {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()

	if s, ok := sessions[userAgent]; ok {
		return s
	}

	s := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Encoding", "gzip").
		SetTimeout(30 * time.Second)

	sessions[userAgent] = s
	return s
}

// Client is a rate-limited, retrying, cached HTTP GET client.
type Client struct {
	userAgent string
	limiter   *ratelimit.Limiter
	cache     *Cache
	session   *resty.Client
}

// validateUserAgent enforces the "Name/Version email" shape: non-empty and
// containing a space so SEC EDGAR can tie a request back to a contact.
func validateUserAgent(userAgent string) error {
	trimmed := strings.TrimSpace(userAgent)
	if trimmed == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUserAgent)
	}
	if !strings.Contains(trimmed, " ") {
		return fmt.Errorf("%w: %q must contain a space (e.g. \"Name/Version email\")", ErrInvalidUserAgent, userAgent)
	}
	return nil
}

// SetTransport overrides the underlying resty session's transport, letting
// callers (principally tests) redirect requests without changing the URLs
// the rest of the code constructs.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.session.SetTransport(rt)
}

// New constructs a Client. limiter is a shared collaborator, used by every
// Client in the process; cache is the one cache this Client reads from and
// writes to.
func New(userAgent string, limiter *ratelimit.Limiter, cache *Cache) (*Client, error) {
	if err := validateUserAgent(userAgent); err != nil {
		return nil, err
	}

	return &Client{
		userAgent: userAgent,
		limiter:   limiter,
		cache:     cache,
		session:   sessionFor(userAgent),
	}, nil
}

// GetJSON fetches url (with the given query params), returning the decoded
// JSON response in target. On a cache hit, no network call is made.
func (c *Client) GetJSON(ctx context.Context, url string, params map[string]string, target interface{}) error {
	body, _, _, err := c.get(ctx, url, params, "application/json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("httpclient: decode JSON from %s: %w", url, err)
	}

	return nil
}

// GetRaw fetches url (with the given query params), returning the raw
// response body. On a cache hit, no network call is made.
func (c *Client) GetRaw(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	body, _, _, err := c.get(ctx, url, params, "")
	return body, err
}

func (c *Client) get(ctx context.Context, url string, params map[string]string, accept string) (body []byte, status int, contentType string, err error) {
	key := Key(http.MethodGet, url, params)

	if c.cache != nil {
		if cached, cachedStatus, cachedCT, ok := c.cache.Get(key); ok {
			return cached, cachedStatus, cachedCT, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, "", fmt.Errorf("httpclient: rate limit wait: %w", err)
	}

	logger := zerolog.Ctx(ctx)

	req := c.session.R().SetContext(ctx).SetQueryParams(params)
	if accept != "" {
		req.SetHeader("Accept", accept)
	}

	var resp *resty.Response
	var lastErr error
	wait := minBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Every retried GET takes its own token, like the first attempt.
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, 0, "", fmt.Errorf("httpclient: rate limit wait: %w", err)
			}
		}

		resp, lastErr = req.Get(url)

		if lastErr == nil && resp.StatusCode() < 400 {
			break
		}

		if lastErr == nil && resp.StatusCode() >= 400 && !retryableStatusCodes[resp.StatusCode()] {
			// Fatal, non-retryable 4xx.
			return nil, resp.StatusCode(), "", fmt.Errorf("%w: %s returned %d", ErrHTTP, url, resp.StatusCode())
		}

		if attempt == maxRetries-1 {
			break
		}

		logger.Warn().Err(lastErr).Str("url", url).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying EDGAR request")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, 0, "", ctx.Err()
		}

		wait *= 2
		if wait > maxBackoff {
			wait = maxBackoff
		}
	}

	if lastErr != nil {
		return nil, 0, "", fmt.Errorf("httpclient: request to %s failed: %w", url, lastErr)
	}

	if resp.StatusCode() == retryStatus4 {
		return nil, resp.StatusCode(), "", fmt.Errorf("%w: %s", ErrRateLimit, url)
	}

	if resp.StatusCode() >= 400 {
		return nil, resp.StatusCode(), "", fmt.Errorf("%w: %s returned %d after retries", ErrHTTP, url, resp.StatusCode())
	}

	respBody := resp.Body()
	respCT := resp.Header().Get("Content-Type")

	if c.cache != nil {
		if putErr := c.cache.Put(key, respBody, resp.StatusCode(), respCT); putErr != nil {
			log.Warn().Err(putErr).Str("url", url).Msg("could not write response to cache")
		}
	}

	return respBody, resp.StatusCode(), respCT, nil
}
