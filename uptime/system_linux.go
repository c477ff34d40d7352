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

package uptime

import (
	"time"

	"golang.org/x/sys/unix"
)

// System is the platform uptime counter.
// On Linux it reads CLOCK_BOOTTIME, which keeps counting during suspend.
type System struct{}

// NewSystem returns the platform counter
func NewSystem() (*System, error) {
	ts := &unix.Timespec{}
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, ts); err != nil {
		return nil, err
	}
	return &System{}, nil
}

// Millis returns milliseconds since boot
func (s *System) Millis() uint64 {
	ts := &unix.Timespec{}
	// availability is checked in NewSystem
	_ = unix.ClockGettime(unix.CLOCK_BOOTTIME, ts)
	return uint64(ts.Sec)*1000 + uint64(ts.Nsec)/uint64(time.Millisecond)
}

// Delay sleeps for d
func (s *System) Delay(d time.Duration) {
	time.Sleep(d)
}
