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
	"fmt"
	"net"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/wordclock/ntpclock/dscp"
)

// maxDatagramBytes is large enough for any datagram we care about
const maxDatagramBytes = 2048

// UDP is a Channel over a UDP socket.
// All reads are non-blocking recvfrom calls on the raw socket.
type UDP struct {
	// ListenIP is the local address to bind to. nil binds to all
	ListenIP net.IP
	// DSCP to mark outgoing datagrams with. 0 leaves the default
	DSCP int

	conn    *net.UDPConn
	raw     syscall.RawConn
	scratch []byte
}

// NewUDP returns a UDP channel which is not started yet
func NewUDP(dscpValue int) *UDP {
	return &UDP{DSCP: dscpValue}
}

// Begin opens the socket
func (u *UDP) Begin(localPort int) error {
	if u.conn != nil {
		return ErrAlreadyStarted
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: u.ListenIP, Port: localPort})
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", localPort, err)
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return fmt.Errorf("getting raw connection: %w", err)
	}
	if u.DSCP > 0 {
		localIP := conn.LocalAddr().(*net.UDPAddr).IP
		var derr error
		if err := raw.Control(func(fd uintptr) {
			derr = dscp.Enable(int(fd), localIP, u.DSCP)
		}); err != nil {
			derr = err
		}
		if derr != nil {
			conn.Close()
			return fmt.Errorf("setting DSCP on socket: %w", derr)
		}
	}
	u.conn = conn
	u.raw = raw
	u.scratch = make([]byte, maxDatagramBytes)
	log.Debugf("udp channel listening on %s", conn.LocalAddr())
	return nil
}

// LocalAddr returns the address the socket is bound to
func (u *UDP) LocalAddr() net.Addr {
	if u.conn == nil {
		return nil
	}
	return u.conn.LocalAddr()
}

// recv runs one non-blocking recvfrom on the socket
func (u *UDP) recv(b []byte, flags int) (int, error) {
	var n int
	var rerr error
	err := u.raw.Read(func(fd uintptr) bool {
		n, _, rerr = unix.Recvfrom(int(fd), b, flags|unix.MSG_DONTWAIT)
		// never wait for readability, we are polled
		return true
	})
	if err != nil {
		return 0, err
	}
	if rerr != nil {
		if errors.Is(rerr, unix.EAGAIN) || errors.Is(rerr, unix.EWOULDBLOCK) {
			return 0, ErrNoDatagram
		}
		return 0, rerr
	}
	return n, nil
}

// Flush discards everything queued on the socket
func (u *UDP) Flush() error {
	if u.conn == nil {
		return ErrNotStarted
	}
	dropped := 0
	for {
		_, err := u.recv(u.scratch, 0)
		if errors.Is(err, ErrNoDatagram) {
			break
		}
		if err != nil {
			return fmt.Errorf("flushing socket: %w", err)
		}
		dropped++
	}
	if dropped > 0 {
		log.Debugf("flushed %d stale datagram(s)", dropped)
	}
	return nil
}

// Send resolves host and sends b to it
func (u *UDP) Send(host string, port int, b []byte) error {
	if u.conn == nil {
		return ErrNotStarted
	}
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", host, err)
	}
	if _, err := u.conn.WriteToUDP(b, addr); err != nil {
		return fmt.Errorf("failed to send to %v: %w", addr, err)
	}
	return nil
}

// Available peeks at the socket and returns the size of the next datagram
func (u *UDP) Available() int {
	if u.conn == nil {
		return 0
	}
	for {
		n, err := u.recv(u.scratch, unix.MSG_PEEK)
		if errors.Is(err, ErrNoDatagram) {
			return 0
		}
		if err != nil {
			log.Debugf("peeking at socket: %v", err)
			return 0
		}
		if n > 0 {
			return n
		}
		// an empty datagram would hide the ones behind it
		if _, err := u.recv(u.scratch, 0); err != nil {
			return 0
		}
	}
}

// Receive takes the next datagram off the socket
func (u *UDP) Receive(b []byte) (int, error) {
	if u.conn == nil {
		return 0, ErrNotStarted
	}
	return u.recv(b, 0)
}

// Close closes the socket. The channel can be started again afterwards
func (u *UDP) Close() error {
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	u.raw = nil
	return err
}
