/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"math"
)

const (
	backoffNone        = ""
	backoffFixed       = "fixed"
	backoffLinear      = "linear"
	backoffExponential = "exponential"
)

// backoff is a multiplier of the retry interval which grows with every failure in a row
type backoff struct {
	cfg BackoffConfig
	// state
	failures int
	value    int
}

func (b *backoff) active() bool {
	return b.value != 0
}

func (b *backoff) reset() {
	b.value = 0
	b.failures = 0
}

func (b *backoff) bump() int {
	if b.capped() {
		return b.value
	}
	b.failures++
	var next float64
	switch b.cfg.Mode {
	case backoffFixed:
		next = float64(b.cfg.Step)
	case backoffLinear:
		next = float64(b.cfg.Step) * float64(b.failures)
	case backoffExponential:
		next = math.Pow(float64(b.cfg.Step), float64(b.failures))
	default:
		// never active
		b.failures = 0
		b.value = 0
		return 0
	}
	// computed in float64 so large failure counts saturate instead of overflowing int
	limit := float64(math.MaxInt32)
	if b.cfg.MaxValue > 0 && float64(b.cfg.MaxValue) < limit {
		limit = float64(b.cfg.MaxValue)
	}
	if next > limit {
		next = limit
	}
	b.value = int(next)
	return b.value
}

// capped reports whether further failures can no longer grow the value
func (b *backoff) capped() bool {
	if b.cfg.Mode != backoffLinear && b.cfg.Mode != backoffExponential {
		return false
	}
	return b.cfg.MaxValue > 0 && b.value >= b.cfg.MaxValue
}

// multiplier returns how many retry intervals to wait after another failure
func (b *backoff) multiplier() int {
	if v := b.bump(); v > 1 {
		return v
	}
	return 1
}

func newBackoff(cfg BackoffConfig) *backoff {
	return &backoff{cfg: cfg}
}
