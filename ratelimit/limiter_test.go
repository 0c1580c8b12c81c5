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
package ratelimit_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgarpit/edgarpit/ratelimit"
)

var _ = Describe("Limiter", func() {
	Context("construction", func() {
		It("accepts a rate at the hard ceiling", func() {
			l, err := ratelimit.New(ratelimit.HardCeilingRPS)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.RPS()).To(Equal(ratelimit.HardCeilingRPS))
		})

		It("rejects a rate above the hard ceiling", func() {
			_, err := ratelimit.New(ratelimit.HardCeilingRPS + 0.01)
			Expect(err).To(MatchError(ratelimit.ErrCeilingExceeded))
		})

		It("rejects a non-positive rate", func() {
			_, err := ratelimit.New(0)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("concurrent acquisition", func() {
		It("is safe under concurrent callers and never exceeds the bucket", func() {
			l, err := ratelimit.New(5)
			Expect(err).NotTo(HaveOccurred())

			start := time.Now()
			var wg sync.WaitGroup
			errs := make(chan error, 20)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					errs <- l.Wait(ctx)
				}()
			}
			wg.Wait()
			close(errs)

			// 5 tokens are available at once; the other 15 refill at 5/s,
			// so the last waiter cannot be released before ~3s.
			Expect(time.Since(start)).To(BeNumerically(">=", 2900*time.Millisecond))

			for err := range errs {
				Expect(err).NotTo(HaveOccurred())
			}
		})
	})
})
