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

package tz

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func epoch(year int, month time.Month, day, hour, min, sec int) uint64 {
	return uint64(time.Date(year, month, day, hour, min, sec, 0, time.UTC).Unix())
}

func TestValidate(t *testing.T) {
	for _, c := range []Config{
		{},
		{UTCOffsetMinutes: 60, UseDST: true},
		{UTCOffsetMinutes: -300, UseDST: true, DSTRule: RuleUS},
		{UTCOffsetMinutes: 840},
		{UTCOffsetMinutes: -720, DSTRule: RuleEU},
	} {
		require.NoError(t, c.Validate(), "%+v", c)
	}
	for _, c := range []Config{
		{UTCOffsetMinutes: 841},
		{UTCOffsetMinutes: -721},
		{DSTRule: "mars"},
	} {
		require.Error(t, c.Validate(), "%+v", c)
	}
}

func TestSundays(t *testing.T) {
	require.Equal(t, 31, lastSunday(2024, time.March))
	require.Equal(t, 27, lastSunday(2024, time.October))
	require.Equal(t, 26, lastSunday(2023, time.March))
	require.Equal(t, 10, nthSunday(2024, time.March, 2))
	require.Equal(t, 3, nthSunday(2024, time.November, 1))
	// March 2026 starts on a Sunday
	require.Equal(t, 1, nthSunday(2026, time.March, 1))
	require.Equal(t, 8, nthSunday(2026, time.March, 2))
}

func TestLocalTimeNoDST(t *testing.T) {
	cfg := Config{UTCOffsetMinutes: 60}
	summer := epoch(2024, time.July, 1, 12, 0, 0)
	require.Equal(t, int64(summer)+3600, LocalTime(summer, cfg))
	require.False(t, InDST(summer, cfg))

	require.Equal(t, int64(3600), LocalTime(0, cfg))
	require.Equal(t, int64(-5*3600), LocalTime(0, Config{UTCOffsetMinutes: -300}))
	require.Equal(t, int64(5*3600+1800), LocalTime(0, Config{UTCOffsetMinutes: 330}))
}

func TestLocalTimeEU(t *testing.T) {
	cfg := Config{UTCOffsetMinutes: 60, UseDST: true}

	winter := epoch(2024, time.January, 15, 12, 0, 0)
	require.Equal(t, int64(winter)+3600, LocalTime(winter, cfg))

	summer := epoch(2024, time.July, 1, 12, 0, 0)
	require.Equal(t, int64(summer)+7200, LocalTime(summer, cfg))

	// 2024-03-31 01:00 UTC clocks go forward
	start := epoch(2024, time.March, 31, 1, 0, 0)
	require.False(t, InDST(start-1, cfg))
	require.True(t, InDST(start, cfg))
	require.Equal(t, int64(start-1)+3600, LocalTime(start-1, cfg))
	require.Equal(t, int64(start)+7200, LocalTime(start, cfg))

	// 2024-10-27 01:00 UTC clocks go back
	end := epoch(2024, time.October, 27, 1, 0, 0)
	require.True(t, InDST(end-1, cfg))
	require.False(t, InDST(end, cfg))
}

func TestLocalTimeEUOtherOffset(t *testing.T) {
	// transition instant is the same in every EU zone
	cfg := Config{UTCOffsetMinutes: 0, UseDST: true, DSTRule: RuleEU}
	start := epoch(2025, time.March, 30, 1, 0, 0)
	require.False(t, InDST(start-1, cfg))
	require.True(t, InDST(start, cfg))
	require.Equal(t, int64(start)+3600, LocalTime(start, cfg))
}

func TestLocalTimeUS(t *testing.T) {
	cfg := Config{UTCOffsetMinutes: -300, UseDST: true, DSTRule: RuleUS}

	// 2024-03-10 02:00 EST is 07:00 UTC
	start := epoch(2024, time.March, 10, 7, 0, 0)
	require.False(t, InDST(start-1, cfg))
	require.True(t, InDST(start, cfg))
	require.Equal(t, int64(start)-4*3600, LocalTime(start, cfg))

	// 2024-11-03 02:00 EDT is 06:00 UTC
	end := epoch(2024, time.November, 3, 6, 0, 0)
	require.True(t, InDST(end-1, cfg))
	require.False(t, InDST(end, cfg))
	require.Equal(t, int64(end)-5*3600, LocalTime(end, cfg))
}

func TestLocalTimeDSTDisabled(t *testing.T) {
	cfg := Config{UTCOffsetMinutes: 60, UseDST: false, DSTRule: RuleEU}
	summer := epoch(2024, time.July, 1, 12, 0, 0)
	require.False(t, InDST(summer, cfg))
	require.Equal(t, time.Hour, Offset(summer, cfg))
}

func TestLocalTimeIsTotal(t *testing.T) {
	cfg := Config{UTCOffsetMinutes: 60, UseDST: true}
	for _, utc := range []uint64{0, 1, maxDSTEpoch, maxDSTEpoch + 1, math.MaxInt64, math.MaxUint64} {
		require.NotPanics(t, func() { LocalTime(utc, cfg) })
	}
	require.Equal(t, int64(math.MaxInt64), LocalTime(math.MaxUint64, cfg))
	require.Equal(t, int64(maxDSTEpoch+1)+3600, LocalTime(maxDSTEpoch+1, cfg))
}

func TestLocalTimeIsPure(t *testing.T) {
	cfg := Config{UTCOffsetMinutes: 60, UseDST: true}
	utc := epoch(2024, time.July, 1, 12, 0, 0)
	first := LocalTime(utc, cfg)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, LocalTime(utc, cfg))
	}
}
