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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryImplementsChannel(t *testing.T) {
	var _ Channel = NewMemory()
	var _ Channel = NewUDP(0)
}

func TestMemoryLifecycle(t *testing.T) {
	m := NewMemory()
	require.ErrorIs(t, m.Flush(), ErrNotStarted)
	require.ErrorIs(t, m.Send("pool.ntp.org", 123, []byte{1}), ErrNotStarted)
	_, err := m.Receive(make([]byte, 1))
	require.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, m.Begin(1337))
	require.ErrorIs(t, m.Begin(1337), ErrAlreadyStarted)
	require.NoError(t, m.Close())
	require.NoError(t, m.Begin(1337))
}

func TestMemoryEnqueue(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Begin(0))

	require.Equal(t, 0, m.Available())
	m.Enqueue([]byte{1, 2, 3})
	m.Enqueue([]byte{4})
	require.Equal(t, 2, m.Pending())
	require.Equal(t, 3, m.Available())

	buf := make([]byte, 2)
	n, err := m.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{1, 2}, buf)
	require.Equal(t, 1, m.Available())

	require.NoError(t, m.Flush())
	require.Equal(t, 0, m.Available())
	_, err = m.Receive(buf)
	require.ErrorIs(t, err, ErrNoDatagram)
}

func TestMemoryPrepareDeliveredOnSend(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Begin(0))

	m.Prepare([]byte{9, 9})
	require.Equal(t, 0, m.Available(), "prepared reply waits for a request")
	// flush before send keeps the prepared reply
	require.NoError(t, m.Flush())

	require.NoError(t, m.Send("pool.ntp.org", 123, []byte{0x1B}))
	require.Equal(t, 2, m.Available())
	require.Equal(t, []Datagram{{Host: "pool.ntp.org", Port: 123, Payload: []byte{0x1B}}}, m.Sent())

	// delivered only once
	_, err := m.Receive(make([]byte, 2))
	require.NoError(t, err)
	require.NoError(t, m.Send("pool.ntp.org", 123, []byte{0x1B}))
	require.Equal(t, 0, m.Available())
	require.Len(t, m.Sent(), 2)
}

func TestMemorySendError(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Begin(0))
	m.SendErr = errors.New("no route to host")
	m.Prepare([]byte{1})

	require.EqualError(t, m.Send("pool.ntp.org", 123, []byte{0x1B}), "no route to host")
	require.Equal(t, 0, m.Available())
	require.Empty(t, m.Sent())
}

func TestMemoryCopiesPayloads(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Begin(0))
	b := []byte{1}
	m.Enqueue(b)
	b[0] = 2

	buf := make([]byte, 1)
	_, err := m.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, byte(1), buf[0])
}
