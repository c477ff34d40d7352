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
Package ntp implements the NTP packet and the few conversions an SNTP client needs.
It builds the 48 byte client request and extracts the transmit timestamp
seconds from a server reply.
*/
package ntp

import (
	"time"
)

// NTPEpochNanosecond is the difference between NTP and Unix epoch in NS
const NTPEpochNanosecond = int64(2208988800000000000)

// EpochOffsetSeconds is the difference between NTP (1900) and Unix (1970) epoch in seconds
const EpochOffsetSeconds = uint64(2208988800)

// eraSeconds is the length of one NTP era, the range of the 32-bit seconds field
const eraSeconds = uint64(1) << 32

// Time is converting Unix time to sec and frac NTP format
func Time(t time.Time) (seconds uint32, fracions uint32) {
	nsec := t.UnixNano() + NTPEpochNanosecond
	sec := nsec / time.Second.Nanoseconds()
	return uint32(sec), uint32((nsec - sec*time.Second.Nanoseconds()) << 32 / time.Second.Nanoseconds())
}

// Unix is converting NTP seconds and fractions into Unix time
func Unix(seconds, fractions uint32) time.Time {
	secs := int64(UnixSeconds(seconds))
	nanos := (int64(fractions) * time.Second.Nanoseconds()) >> 32 // convert fractional to nanos
	return time.Unix(secs, nanos)
}

// UnixSeconds converts NTP seconds since 1900 into Unix seconds since 1970.
// Values that would fall before 1970 are taken from the next NTP era
// (2036-02-07 onwards), so the result is never negative.
func UnixSeconds(seconds uint32) uint64 {
	s := uint64(seconds)
	if s < EpochOffsetSeconds {
		s += eraSeconds
	}
	return s - EpochOffsetSeconds
}
