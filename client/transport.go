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
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"

	"github.com/wordclock/ntpclock/channel"
	"github.com/wordclock/ntpclock/protocol/ntp"
	"github.com/wordclock/ntpclock/uptime"
)

// ErrTimeout is returned when no usable reply arrived in time
var ErrTimeout = errors.New("timed out waiting for reply")

// ErrMalformedReply is returned when a reply can't be decoded
var ErrMalformedReply = errors.New("malformed reply")

// Transport does a single request/reply exchange over a Channel per Attempt
type Transport struct {
	ch           channel.Channel
	counter      uptime.Counter
	stats        Stats
	server       string
	port         int
	version      int
	pollInterval time.Duration
	buf          []byte
}

// NewTransport returns a Transport talking to the server from cfg
func NewTransport(ch channel.Channel, counter uptime.Counter, cfg *Config, stats Stats) *Transport {
	if stats == nil {
		stats = noopStats{}
	}
	return &Transport{
		ch:           ch,
		counter:      counter,
		stats:        stats,
		server:       cfg.Server,
		port:         cfg.Port,
		version:      cfg.Version,
		pollInterval: cfg.PollInterval,
		buf:          make([]byte, ntp.PacketSizeBytes),
	}
}

// Attempt flushes the channel, sends one request and polls for the reply
// until timeout of uptime elapses. It returns transmit seconds of the reply.
// Each sleep is capped at the remaining budget.
func (t *Transport) Attempt(timeout time.Duration) (uint32, error) {
	if err := t.ch.Flush(); err != nil {
		return 0, fmt.Errorf("flushing channel: %w", err)
	}
	t.stats.IncRequests()
	if err := t.ch.Send(t.server, t.port, ntp.BuildRequest(t.version)); err != nil {
		t.stats.IncSendErrors()
		return 0, fmt.Errorf("sending request to %s: %w", net.JoinHostPort(t.server, strconv.Itoa(t.port)), err)
	}
	start := t.counter.Millis()
	var budget uint64
	if timeout > 0 {
		budget = uint64(timeout.Milliseconds())
	}
	for {
		size := t.ch.Available()
		if size >= ntp.MinReplySizeBytes {
			return t.receive()
		}
		if size > 0 {
			t.discard(size)
		}
		elapsed := uptime.Since(t.counter, start)
		if elapsed >= budget {
			t.stats.IncTimeouts()
			return 0, ErrTimeout
		}
		if size > 0 {
			continue
		}
		step := t.pollInterval
		if remaining := time.Duration(budget-elapsed) * time.Millisecond; remaining < step {
			step = remaining
		}
		t.counter.Delay(step)
	}
}

// discard drops a pending datagram too small to carry a transmit timestamp
func (t *Transport) discard(size int) {
	t.stats.IncMalformed()
	if _, err := t.ch.Receive(t.buf); err != nil {
		log.Debugf("dropping undersized datagram: %v", err)
		return
	}
	log.Debugf("dropped undersized datagram of %d bytes", size)
}

func (t *Transport) receive() (uint32, error) {
	n, err := t.ch.Receive(t.buf)
	if err != nil {
		t.stats.IncMalformed()
		return 0, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}
	b := t.buf[:n]
	if log.IsLevelEnabled(log.DebugLevel) && n == ntp.PacketSizeBytes {
		if p, err := ntp.BytesToPacket(b); err == nil {
			log.Debugf("reply: %s", spew.Sdump(p))
		}
	}
	seconds, err := ntp.DecodeTransmitSeconds(b)
	if err != nil {
		t.stats.IncMalformed()
		return 0, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}
	if seconds == 0 {
		t.stats.IncMalformed()
		return 0, fmt.Errorf("%w: transmit timestamp is not set", ErrMalformedReply)
	}
	t.stats.IncResponses()
	return seconds, nil
}
