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

// Package tz maps a UTC epoch to a display local epoch using a fixed offset and a DST rule
package tz

import (
	"fmt"
	"math"
	"time"
)

// Rule names a daylight saving time rule
type Rule string

// Supported DST rules
const (
	// RuleEU is last Sunday of March 01:00 UTC to last Sunday of October 01:00 UTC
	RuleEU Rule = "eu"
	// RuleUS is second Sunday of March 02:00 to first Sunday of November 02:00 local time
	RuleUS Rule = "us"
)

const (
	minOffsetMinutes = -12 * 60
	maxOffsetMinutes = 14 * 60
	dstShiftSeconds  = 3600
	// 9999-12-31T23:59:59Z, DST is not evaluated past it
	maxDSTEpoch = uint64(253402300799)
)

// Config is a time zone configuration
type Config struct {
	UTCOffsetMinutes int  `yaml:"utc_offset_minutes" env:"NTPCLOCK_UTC_OFFSET_MINUTES"`
	UseDST           bool `yaml:"use_dst" env:"NTPCLOCK_USE_DST"`
	DSTRule          Rule `yaml:"dst_rule" env:"NTPCLOCK_DST_RULE"`
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if c.UTCOffsetMinutes < minOffsetMinutes || c.UTCOffsetMinutes > maxOffsetMinutes {
		return fmt.Errorf("utc offset %d minutes is out of range [%d, %d]", c.UTCOffsetMinutes, minOffsetMinutes, maxOffsetMinutes)
	}
	switch c.DSTRule {
	case "", RuleEU, RuleUS:
	default:
		return fmt.Errorf("dst rule must be either %q or %q", RuleEU, RuleUS)
	}
	return nil
}

// lastSunday returns day of month of the last Sunday
func lastSunday(year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return last.Day() - int(last.Weekday())
}

// nthSunday returns day of month of the n-th Sunday
func nthSunday(year int, month time.Month, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return 1 + (7-int(first.Weekday()))%7 + 7*(n-1)
}

// window returns UTC bounds of the DST period of the year, start inclusive
func (r Rule) window(year int, offsetMinutes int) (start, end int64) {
	offset := int64(offsetMinutes) * 60
	switch r {
	case RuleUS:
		// 02:00 local standard time in, 02:00 local daylight time out
		start = time.Date(year, time.March, nthSunday(year, time.March, 2), 2, 0, 0, 0, time.UTC).Unix() - offset
		end = time.Date(year, time.November, nthSunday(year, time.November, 1), 2, 0, 0, 0, time.UTC).Unix() - offset - dstShiftSeconds
	default:
		start = time.Date(year, time.March, lastSunday(year, time.March), 1, 0, 0, 0, time.UTC).Unix()
		end = time.Date(year, time.October, lastSunday(year, time.October), 1, 0, 0, 0, time.UTC).Unix()
	}
	return start, end
}

// InDST reports whether daylight saving time applies at utc
func InDST(utc uint64, cfg Config) bool {
	if !cfg.UseDST || utc > maxDSTEpoch {
		return false
	}
	year := time.Unix(int64(utc), 0).UTC().Year()
	start, end := cfg.DSTRule.window(year, cfg.UTCOffsetMinutes)
	return int64(utc) >= start && int64(utc) < end
}

// Offset returns total offset from UTC at utc, DST included
func Offset(utc uint64, cfg Config) time.Duration {
	offset := time.Duration(cfg.UTCOffsetMinutes) * time.Minute
	if InDST(utc, cfg) {
		offset += dstShiftSeconds * time.Second
	}
	return offset
}

// LocalTime converts UTC epoch seconds into local epoch seconds.
// It is defined for every input: results past the int64 range saturate.
func LocalTime(utc uint64, cfg Config) int64 {
	offset := int64(Offset(utc, cfg) / time.Second)
	if utc > uint64(math.MaxInt64-dstShiftSeconds-maxOffsetMinutes*60) {
		return math.MaxInt64
	}
	return int64(utc) + offset
}
