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

/*
Package uptime provides the monotonic millisecond counter the clock extrapolates from.

The counter is 64 bits wide, so a platform counter never wraps in practice.
Differences still go through Elapsed, which is modular.
*/
package uptime

import (
	"sync/atomic"
	"time"
)

// Counter is a monotonic milliseconds-since-boot counter
type Counter interface {
	// Millis returns current counter value
	Millis() uint64
	// Delay blocks the caller for d of counter time
	Delay(d time.Duration)
}

// Elapsed returns milliseconds between from and to, correct across one wraparound
func Elapsed(from, to uint64) uint64 {
	return to - from
}

// Since returns milliseconds elapsed on c since from
func Since(c Counter, from uint64) uint64 {
	return Elapsed(from, c.Millis())
}

// Manual is a counter which only moves when told to.
// Delay advances it instead of sleeping.
type Manual struct {
	ms atomic.Uint64
}

// NewManual returns Manual counter starting at start
func NewManual(start uint64) *Manual {
	m := &Manual{}
	m.ms.Store(start)
	return m
}

// Millis returns current counter value
func (m *Manual) Millis() uint64 {
	return m.ms.Load()
}

// Delay advances the counter by d
func (m *Manual) Delay(d time.Duration) {
	m.Advance(d)
}

// Advance moves the counter forward by d, wrapping like the real one
func (m *Manual) Advance(d time.Duration) {
	m.ms.Add(uint64(d.Milliseconds()))
}
