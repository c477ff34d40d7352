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
Package stats implements statistics collection and reporting.
It is used by the clock daemon to report sync attempts and anchor steps,
and by the responder to report requests and responses.
*/
package stats

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eclesh/welford"
	log "github.com/sirupsen/logrus"
)

// JSONStats implements client.Stats and responder.Stats.
// This implementation reports JSON metrics via http interface
type JSONStats struct {
	// keep these aligned to 64-bit for sync/atomic
	requests      int64
	responses     int64
	timeouts      int64
	malformed     int64
	sendErrors    int64
	invalidFormat int64
	readError     int64
	anchor        int64
	lastStepMs    int64
	stepCount     int64

	mu      sync.Mutex
	steps   *welford.Stats
	sysStat map[string]int64
}

// NewJSONStats returns a new JSONStats
func NewJSONStats() *JSONStats {
	return &JSONStats{
		steps:   welford.New(),
		sysStat: map[string]int64{},
	}
}

// Snapshot converts stats to a map
func (j *JSONStats) Snapshot() map[string]int64 {
	export := make(map[string]int64)

	export["requests"] = atomic.LoadInt64(&j.requests)
	export["responses"] = atomic.LoadInt64(&j.responses)
	export["timeouts"] = atomic.LoadInt64(&j.timeouts)
	export["malformed"] = atomic.LoadInt64(&j.malformed)
	export["senderrors"] = atomic.LoadInt64(&j.sendErrors)
	export["invalidformat"] = atomic.LoadInt64(&j.invalidFormat)
	export["readerror"] = atomic.LoadInt64(&j.readError)
	export["anchor"] = atomic.LoadInt64(&j.anchor)
	export["step.last_ms"] = atomic.LoadInt64(&j.lastStepMs)

	steps := atomic.LoadInt64(&j.stepCount)
	export["step.count"] = steps

	j.mu.Lock()
	defer j.mu.Unlock()
	if steps > 0 {
		export["step.mean_ms"] = int64(j.steps.Mean())
	}
	if steps > 1 {
		export["step.stddev_ms"] = int64(j.steps.Stddev())
	}
	for k, v := range j.sysStat {
		export[k] = v
	}
	return export
}

// handleRequest is a handler used for all http monitoring requests
func (j *JSONStats) handleRequest(w http.ResponseWriter, _ *http.Request) {
	js, err := json.Marshal(j.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(js); err != nil {
		log.Errorf("Failed to reply: %v", err)
	}
}

// Handler returns http handler serving the snapshot as JSON
func (j *JSONStats) Handler() http.Handler {
	return http.HandlerFunc(j.handleRequest)
}

// CollectSysStats refreshes process metrics included into the snapshot
func (j *JSONStats) CollectSysStats() error {
	sys, err := CollectProcessStats()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.sysStat = sys
	j.mu.Unlock()
	return nil
}

// IncRequests atomically add 1 to the counter
func (j *JSONStats) IncRequests() {
	atomic.AddInt64(&j.requests, 1)
}

// IncResponses atomically add 1 to the counter
func (j *JSONStats) IncResponses() {
	atomic.AddInt64(&j.responses, 1)
}

// IncTimeouts atomically add 1 to the counter
func (j *JSONStats) IncTimeouts() {
	atomic.AddInt64(&j.timeouts, 1)
}

// IncMalformed atomically add 1 to the counter
func (j *JSONStats) IncMalformed() {
	atomic.AddInt64(&j.malformed, 1)
}

// IncSendErrors atomically add 1 to the counter
func (j *JSONStats) IncSendErrors() {
	atomic.AddInt64(&j.sendErrors, 1)
}

// IncInvalidFormat atomically add 1 to the counter
func (j *JSONStats) IncInvalidFormat() {
	atomic.AddInt64(&j.invalidFormat, 1)
}

// IncReadError atomically add 1 to the counter
func (j *JSONStats) IncReadError() {
	atomic.AddInt64(&j.readError, 1)
}

// SetAnchor atomically sets the anchor epoch
func (j *JSONStats) SetAnchor(epoch uint64) {
	atomic.StoreInt64(&j.anchor, int64(epoch))
}

// ObserveStep adds a re-anchor step to the running mean and stddev
func (j *JSONStats) ObserveStep(step time.Duration) {
	ms := step.Milliseconds()
	atomic.StoreInt64(&j.lastStepMs, ms)
	j.mu.Lock()
	if j.steps == nil {
		j.steps = welford.New()
	}
	j.steps.Add(float64(ms))
	atomic.AddInt64(&j.stepCount, 1)
	j.mu.Unlock()
}
