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

package channel

import (
	"sync"
)

// Datagram is a datagram sent over Memory channel
type Datagram struct {
	Host    string
	Port    int
	Payload []byte
}

// Memory is an in-process Channel.
// Datagrams put with Enqueue are pending right away, datagrams put with
// Prepare become pending when the next Send completes, the way a server
// reply follows a request.
type Memory struct {
	// SendErr is returned from Send when set. Prepared datagrams stay put
	SendErr error

	mu       sync.Mutex
	started  bool
	incoming [][]byte
	prepared [][]byte
	sent     []Datagram
}

// NewMemory returns a Memory channel which is not started yet
func NewMemory() *Memory {
	return &Memory{}
}

// Begin marks the channel started
func (m *Memory) Begin(_ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	return nil
}

// Flush drops everything pending
func (m *Memory) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	m.incoming = nil
	return nil
}

// Send records the datagram and delivers prepared replies
func (m *Memory) Send(host string, port int, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, Datagram{Host: host, Port: port, Payload: append([]byte(nil), b...)})
	m.incoming = append(m.incoming, m.prepared...)
	m.prepared = nil
	return nil
}

// Available returns the size of the next pending datagram
func (m *Memory) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.incoming) == 0 {
		return 0
	}
	return len(m.incoming[0])
}

// Receive pops the next pending datagram
func (m *Memory) Receive(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return 0, ErrNotStarted
	}
	if len(m.incoming) == 0 {
		return 0, ErrNoDatagram
	}
	n := copy(b, m.incoming[0])
	m.incoming = m.incoming[1:]
	return n, nil
}

// Close stops the channel and forgets pending datagrams
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	m.incoming = nil
	m.prepared = nil
	return nil
}

// Enqueue makes b pending immediately
func (m *Memory) Enqueue(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incoming = append(m.incoming, append([]byte(nil), b...))
}

// Prepare makes b pending once the next Send completes
func (m *Memory) Prepare(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepared = append(m.prepared, append([]byte(nil), b...))
}

// Pending returns how many datagrams are waiting to be received
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.incoming)
}

// Sent returns a copy of everything sent so far
func (m *Memory) Sent() []Datagram {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Datagram(nil), m.sent...)
}
