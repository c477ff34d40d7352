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
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Syncer is anything that can be synced
type Syncer interface {
	Sync() error
}

// Scheduler calls Sync periodically
type Scheduler struct {
	// OnResult is called after every Sync when set
	OnResult func(err error)

	syncer  Syncer
	cfg     *Config
	backoff *backoff
	after   func(d time.Duration) <-chan time.Time
}

// NewScheduler returns a Scheduler syncing s
func NewScheduler(s Syncer, cfg *Config) *Scheduler {
	return &Scheduler{
		syncer:  s,
		cfg:     cfg,
		backoff: newBackoff(cfg.Backoff),
		after:   time.After,
	}
}

// Run syncs right away, then every Interval after a success and every
// RetryInterval times backoff after a failure. It returns when ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		err := s.syncer.Sync()
		wait := s.next(err)
		if s.OnResult != nil {
			s.OnResult(err)
		}
		log.Debugf("next sync in %v", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(wait):
		}
	}
}

// next returns how long to wait before the following Sync
func (s *Scheduler) next(err error) time.Duration {
	if err == nil {
		if s.backoff.active() {
			log.Infof("sync recovered, resetting backoff")
		}
		s.backoff.reset()
		return s.cfg.Interval
	}
	m := s.backoff.multiplier()
	if s.backoff.active() {
		log.Warningf("backing off, retrying in %d retry intervals", m)
	}
	return s.cfg.RetryInterval * time.Duration(m)
}
