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
Package client implements a wall clock for hosts without a battery backed RTC.

The clock keeps an anchor, a pair of Unix seconds and an uptime counter reading
taken at the same moment, and extrapolates it with elapsed uptime. Every
successful Sync replaces the anchor. A failed Sync leaves it untouched, so the
clock keeps running from the last good anchor.
*/
package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wordclock/ntpclock/channel"
	"github.com/wordclock/ntpclock/protocol/ntp"
	"github.com/wordclock/ntpclock/tz"
	"github.com/wordclock/ntpclock/uptime"
)

// ErrSyncFailed is returned by Sync when the anchor was not updated
var ErrSyncFailed = errors.New("ntp sync failed")

// Anchor ties Unix seconds to an uptime counter reading
type Anchor struct {
	EpochSeconds uint64
	UptimeMs     uint64
}

// At extrapolates the anchor to the uptime reading nowMs.
// Correct across a single counter wrap.
func (a Anchor) At(nowMs uint64) uint64 {
	return a.EpochSeconds + uptime.Elapsed(a.UptimeMs, nowMs)/1000
}

// Clock is an extrapolated wall clock re-anchored by NTP replies
type Clock struct {
	ch        channel.Channel
	transport *Transport
	counter   uptime.Counter
	cfg       *Config
	stats     Stats

	mu       sync.RWMutex
	anchor   Anchor
	synced   bool
	lastSync uint64
}

// NewClock returns an unsynchronized Clock. It owns ch exclusively
func NewClock(ch channel.Channel, cfg *Config, counter uptime.Counter, stats Stats) *Clock {
	if stats == nil {
		stats = noopStats{}
	}
	return &Clock{
		ch:        ch,
		transport: NewTransport(ch, counter, cfg, stats),
		counter:   counter,
		cfg:       cfg,
		stats:     stats,
	}
}

// Setup starts the channel on the configured local port
func (c *Clock) Setup() error {
	return c.ch.Begin(c.cfg.LocalPort)
}

// Close stops the channel
func (c *Clock) Close() error {
	return c.ch.Close()
}

// Sync does one exchange with the server and re-anchors on success.
// It blocks for at most timeout plus one poll interval.
// Concurrent Sync calls are not supported.
func (c *Clock) Sync() error {
	seconds, err := c.transport.Attempt(c.cfg.Timeout)
	if err != nil {
		log.Warningf("sync with %s failed: %v", c.cfg.Server, err)
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}
	nowMs := c.counter.Millis()
	next := Anchor{EpochSeconds: ntp.UnixSeconds(seconds), UptimeMs: nowMs}

	c.mu.Lock()
	prev := c.anchor.At(nowMs)
	wasSynced := c.synced
	c.anchor = next
	c.synced = true
	c.lastSync = nowMs
	c.mu.Unlock()

	c.stats.SetAnchor(next.EpochSeconds)
	if !wasSynced {
		log.Infof("clock synchronized to %s", time.Unix(int64(next.EpochSeconds), 0).UTC())
		return nil
	}
	step := time.Duration(int64(next.EpochSeconds)-int64(prev)) * time.Second
	c.stats.ObserveStep(step)
	if step != 0 {
		log.Infof("clock re-anchored, stepped by %v", step)
	} else {
		log.Debugf("clock re-anchored, no step")
	}
	return nil
}

// Now returns Unix seconds. It never blocks on the network and never fails.
// Before the first successful Sync it counts from the Unix epoch.
func (c *Clock) Now() uint64 {
	nowMs := c.counter.Millis()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.anchor.At(nowMs)
}

// NowTime returns Now with millisecond resolution
func (c *Clock) NowTime() time.Time {
	nowMs := c.counter.Millis()
	c.mu.RLock()
	a := c.anchor
	c.mu.RUnlock()
	elapsed := time.Duration(uptime.Elapsed(a.UptimeMs, nowMs)) * time.Millisecond
	return time.Unix(int64(a.EpochSeconds), 0).Add(elapsed).UTC()
}

// LocalNow returns Now shifted into the configured time zone
func (c *Clock) LocalNow() int64 {
	return tz.LocalTime(c.Now(), c.cfg.TZ)
}

// Anchor returns the current anchor
func (c *Clock) Anchor() Anchor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.anchor
}

// Synchronized reports whether any Sync succeeded so far
func (c *Clock) Synchronized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// LastSync returns the uptime reading of the last successful Sync
func (c *Clock) LastSync() (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync, c.synced
}
