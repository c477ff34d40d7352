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

package responder

import (
	"errors"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

var (
	errWrongAmountListeners = errors.New("wrong amount of listeners is up")
	errWrongAmountWorkers   = errors.New("wrong amount of workers is up")
)

// Checker tracks listeners and workers of the responder
type Checker struct {
	// ExpectedListeners is number of listeners we expect to run
	ExpectedListeners int64
	realListeners     int64

	// ExpectedWorkers is number of workers we expect to run
	ExpectedWorkers int64
	realWorkers     int64
}

// IncListeners thread-safely increases number of listeners to monitor
func (c *Checker) IncListeners() {
	atomic.AddInt64(&c.realListeners, 1)
}

// DecListeners thread-safely decreases number of listeners to monitor
func (c *Checker) DecListeners() {
	atomic.AddInt64(&c.realListeners, -1)
}

// IncWorkers thread-safely increases number of workers to monitor
func (c *Checker) IncWorkers() {
	atomic.AddInt64(&c.realWorkers, 1)
}

// DecWorkers thread-safely decreases number of workers to monitor
func (c *Checker) DecWorkers() {
	atomic.AddInt64(&c.realWorkers, -1)
}

// Check verifies all expected listeners and workers are alive
func (c *Checker) Check() error {
	log.Debug("[Checker] checking listeners")
	if atomic.LoadInt64(&c.realListeners) != c.ExpectedListeners {
		return errWrongAmountListeners
	}
	log.Debug("[Checker] checking workers")
	if atomic.LoadInt64(&c.realWorkers) != c.ExpectedWorkers {
		return errWrongAmountWorkers
	}
	return nil
}
