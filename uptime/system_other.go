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

//go:build !linux

package uptime

import (
	"time"

	"github.com/shirou/gopsutil/host"
)

// System is the platform uptime counter.
// Boot time is read once, after that the counter follows the
// process monotonic clock so wall clock steps do not affect it.
type System struct {
	start     time.Time
	bootToRun uint64
}

// NewSystem returns the platform counter
func NewSystem() (*System, error) {
	boot, err := host.BootTime()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var sinceBoot uint64
	if now := uint64(start.Unix()); now > boot {
		sinceBoot = (now - boot) * 1000
	}
	return &System{start: start, bootToRun: sinceBoot}, nil
}

// Millis returns milliseconds since boot
func (s *System) Millis() uint64 {
	return s.bootToRun + uint64(time.Since(s.start).Milliseconds())
}

// Delay sleeps for d
func (s *System) Delay(d time.Duration) {
	time.Sleep(d)
}
