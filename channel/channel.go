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
Package channel implements datagram channels the time client exchanges packets over.

A Channel is polled rather than read in a blocking way: Available reports the size
of the next pending datagram, Receive takes it. Nothing on a Channel blocks.
*/
package channel

import (
	"errors"
)

// ErrNotStarted is returned when the channel is used before Begin
var ErrNotStarted = errors.New("channel is not started")

// ErrAlreadyStarted is returned when Begin is called twice
var ErrAlreadyStarted = errors.New("channel is already started")

// ErrNoDatagram is returned by Receive when nothing is pending
var ErrNoDatagram = errors.New("no datagram pending")

// Channel describes what functionality we expect from a datagram channel
type Channel interface {
	// Begin opens the channel on a local port, 0 picks any
	Begin(localPort int) error
	// Flush discards all pending datagrams
	Flush() error
	// Send transmits one datagram to host:port. host may be a name or an IP
	Send(host string, port int, b []byte) error
	// Available returns the size of the next pending datagram, 0 if none
	Available() int
	// Receive copies the next pending datagram into b and removes it.
	// Bytes that do not fit into b are lost.
	Receive(b []byte) (int, error)
	// Close releases the channel
	Close() error
}
