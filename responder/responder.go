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
Package responder implements a minimal UDP server answering NTP client requests
from the system clock. It is meant for development and integration tests of the
clock, not for serving a fleet.
*/
package responder

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wordclock/ntpclock/dscp"
	"github.com/wordclock/ntpclock/protocol/ntp"
)

// Stats is a metric collection interface
type Stats interface {
	// IncRequests atomically add 1 to the counter
	IncRequests()
	// IncResponses atomically add 1 to the counter
	IncResponses()
	// IncInvalidFormat atomically add 1 to the counter
	IncInvalidFormat()
	// IncReadError atomically add 1 to the counter
	IncReadError()
}

// task is a data structure with everything needed to work independently on NTP packet.
type task struct {
	conn     *net.UDPConn
	addr     *net.UDPAddr
	received time.Time
	request  *ntp.Packet
	stats    Stats
}

// Server is a type for UDP server which handles requests.
type Server struct {
	Config  Config
	Stats   Stats
	Checker *Checker

	conn    *net.UDPConn
	tasks   chan task
	addedIP bool
}

// Listen opens the server socket and sets up the health checker
func (s *Server) Listen() error {
	if s.Config.ManageLoopback {
		added, err := addIP(s.Config.Iface, s.Config.IP)
		if err != nil {
			return fmt.Errorf("adding %s to %s: %w", s.Config.IP, s.Config.Iface, err)
		}
		s.addedIP = added
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: s.Config.IP, Port: s.Config.Port})
	if err != nil {
		s.cleanupIP()
		return fmt.Errorf("listening error: %w", err)
	}
	if s.Config.DSCP > 0 {
		raw, err := conn.SyscallConn()
		if err != nil {
			conn.Close()
			s.cleanupIP()
			return err
		}
		localIP := conn.LocalAddr().(*net.UDPAddr).IP
		var derr error
		if err := raw.Control(func(fd uintptr) {
			derr = dscp.Enable(int(fd), localIP, s.Config.DSCP)
		}); err != nil {
			derr = err
		}
		if derr != nil {
			conn.Close()
			s.cleanupIP()
			return fmt.Errorf("setting DSCP on socket: %w", derr)
		}
	}
	s.conn = conn
	if s.Checker == nil {
		s.Checker = &Checker{}
	}
	s.Checker.ExpectedListeners = 1
	s.Checker.ExpectedWorkers = int64(s.Config.Workers)
	return nil
}

// Addr returns local address of the server socket
func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve answers requests until ctx is done. Listen must be called first
func (s *Server) Serve(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("server is not listening")
	}
	s.tasks = make(chan task, s.Config.Workers)

	eg, ctx := errgroup.WithContext(ctx)
	log.Infof("Creating %d goroutine workers", s.Config.Workers)
	for i := 0; i < s.Config.Workers; i++ {
		eg.Go(func() error {
			s.startWorker(ctx)
			return nil
		})
	}
	log.Infof("Starting listener on %s", s.conn.LocalAddr())
	eg.Go(func() error {
		return s.startListener(ctx)
	})
	eg.Go(func() error {
		<-ctx.Done()
		return s.conn.Close()
	})
	err := eg.Wait()
	s.cleanupIP()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return ctx.Err()
}

// cleanupIP removes the listen IP if Listen added it
func (s *Server) cleanupIP() {
	if !s.addedIP {
		return
	}
	if err := deleteIP(s.Config.Iface, s.Config.IP); err != nil {
		log.Errorf("Failed to delete %s from %s: %v", s.Config.IP, s.Config.Iface, err)
	}
	s.addedIP = false
}

func (s *Server) startListener(ctx context.Context) error {
	s.Checker.IncListeners()
	defer s.Checker.DecListeners()

	buf := make([]byte, 1024)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Warning("listener connection closed, exiting listener server")
				return nil
			}
			log.Errorf("Failed to read packet on %s: %v", s.conn.LocalAddr(), err)
			s.Stats.IncReadError()
			continue
		}
		received := time.Now()

		request, err := ntp.BytesToPacket(buf[:n])
		if err != nil {
			log.Debugf("failed to parse ntp packet: %s", err)
			s.Stats.IncReadError()
			continue
		}
		s.Stats.IncRequests()
		select {
		case s.tasks <- task{conn: s.conn, addr: addr, received: received, request: request, stats: s.Stats}:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) startWorker(ctx context.Context) {
	s.Checker.IncWorkers()
	defer s.Checker.DecWorkers()

	// headers and wire buffer are reused for every reply of this worker
	response := &ntp.Packet{}
	s.fillStaticHeaders(response)
	buf := make([]byte, ntp.PacketSizeBytes)
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-s.tasks:
			t.serve(response, buf, s.Config.ExtraOffset)
		}
	}
}

// serve answers a valid client request with the system time shifted by extraoffset
func (t *task) serve(response *ntp.Packet, buf []byte, extraoffset time.Duration) {
	log.Debugf("Received request: %+v", t.request)
	if !t.request.ValidSettingsFormat() {
		log.Debugf("Invalid query, discarding: %v", t.request)
		t.stats.IncInvalidFormat()
		return
	}

	generateResponse(time.Now().Add(extraoffset), t.received.Add(extraoffset), t.request, response)
	response.Encode(buf)

	log.Debugf("Writing response: %+v", response)
	if _, err := t.conn.WriteToUDP(buf, t.addr); err != nil {
		log.Debugf("Failed to respond to the request: %v", err)
		return
	}
	t.stats.IncResponses()
}

// fillStaticHeaders pre-sets all the headers per worker which will never change
func (s *Server) fillStaticHeaders(response *ntp.Packet) {
	response.Stratum = uint8(s.Config.Stratum)
	response.Precision = -20
	response.RootDelay = 0
	// Root dispersion, big-endian 0.000152
	response.RootDispersion = 10
	response.ReferenceID = binary.BigEndian.Uint32([]byte(fmt.Sprintf("%-4s", s.Config.RefID)))
}

// generateResponse fills the per request fields of a server reply
func generateResponse(now time.Time, received time.Time, request, response *ntp.Packet) {
	response.Settings = ntp.Settings(0, request.Version(), ntp.ModeServer)
	response.Poll = request.Poll

	// the system clock is assumed to be disciplined every 1000s
	response.RefTimeSec, response.RefTimeFrac = ntp.Time(time.Unix(now.Unix()/1000*1000, 0))
	response.OrigTimeSec, response.OrigTimeFrac = request.TxTimeSec, request.TxTimeFrac
	response.RxTimeSec, response.RxTimeFrac = ntp.Time(received)
	response.TxTimeSec, response.TxTimeFrac = ntp.Time(now)
}
