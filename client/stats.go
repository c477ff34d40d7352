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

//go:generate mockgen -source=stats.go -destination=stats_mock_test.go -package=client
//go:generate mockgen -destination=mock_test.go -package=client github.com/wordclock/ntpclock/channel Channel

import (
	"time"
)

// Stats is a metric collection interface
type Stats interface {
	// IncRequests atomically add 1 to the counter
	IncRequests()
	// IncResponses atomically add 1 to the counter
	IncResponses()
	// IncTimeouts atomically add 1 to the counter
	IncTimeouts()
	// IncMalformed atomically add 1 to the counter
	IncMalformed()
	// IncSendErrors atomically add 1 to the counter
	IncSendErrors()
	// SetAnchor atomically sets the epoch of the current anchor
	SetAnchor(epoch uint64)
	// ObserveStep records the correction applied by a re-anchor
	ObserveStep(step time.Duration)
}

type noopStats struct{}

func (noopStats) IncRequests()              {}
func (noopStats) IncResponses()             {}
func (noopStats) IncTimeouts()              {}
func (noopStats) IncMalformed()             {}
func (noopStats) IncSendErrors()            {}
func (noopStats) SetAnchor(uint64)          {}
func (noopStats) ObserveStep(time.Duration) {}
