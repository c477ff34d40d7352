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

package ntp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// PacketSizeBytes sets the size of NTP packet
const PacketSizeBytes = 48

// MinReplySizeBytes is the shortest reply that still carries transmit timestamp seconds
const MinReplySizeBytes = 44

// transmitSecondsOffset is where transmit timestamp seconds start
const transmitSecondsOffset = 40

// ErrShortPacket is returned when a reply ends before transmit timestamp seconds
var ErrShortPacket = errors.New("packet too short to carry transmit timestamp")

// Packet is an NTPv4 packet header without extensions.
//
//	offset  field
//	 0      LI(2) VN(3) Mode(3), Stratum, Poll, Precision
//	 4      Root Delay
//	 8      Root Dispersion
//	12      Reference ID
//	16      Reference Timestamp (sec, frac)
//	24      Origin Timestamp (sec, frac)
//	32      Receive Timestamp (sec, frac)
//	40      Transmit Timestamp (sec, frac)
//
// A v3 client request is 0x1B in the first byte and zeros elsewhere.
type Packet struct {
	Settings       uint8  // leap indicator, version number and mode
	Stratum        uint8  // stratum
	Poll           int8   // poll. Power of 2
	Precision      int8   // precision. Power of 2
	RootDelay      uint32 // total delay to the reference clock
	RootDispersion uint32 // total dispersion to the reference clock
	ReferenceID    uint32 // identifier of server or a reference clock
	RefTimeSec     uint32 // last time local clock was updated sec
	RefTimeFrac    uint32 // last time local clock was updated frac
	OrigTimeSec    uint32 // client time sec
	OrigTimeFrac   uint32 // client time frac
	RxTimeSec      uint32 // receive time sec
	RxTimeFrac     uint32 // receive time frac
	TxTimeSec      uint32 // transmit time sec
	TxTimeFrac     uint32 // transmit time frac
}

const (
	liNoWarning      = 0
	liAlarmCondition = 3
	vnFirst          = 1
	vnLast           = 4
	modeClient       = 3
	// ModeServer is the mode of a server reply
	ModeServer = 4
)

// Settings packs leap indicator, version and mode into the first packet byte
func Settings(li, vn, mode uint8) uint8 {
	return (li&0x3)<<6 | (vn&0x7)<<3 | mode&0x7
}

// LeapIndicator returns LI field of the settings byte
func (p *Packet) LeapIndicator() uint8 {
	return p.Settings >> 6
}

// Version returns VN field of the settings byte
func (p *Packet) Version() uint8 {
	return (p.Settings >> 3) & 0x7
}

// Mode returns Mode field of the settings byte
func (p *Packet) Mode() uint8 {
	return p.Settings & 0x7
}

// ValidSettingsFormat reports whether the packet is a client request we can answer:
// leap indicator is 0 or 3, version is 1 to 4, mode is client
func (p *Packet) ValidSettingsFormat() bool {
	li := p.LeapIndicator()
	if li != liNoWarning && li != liAlarmCondition {
		return false
	}
	if v := p.Version(); v < vnFirst || v > vnLast {
		return false
	}
	return p.Mode() == modeClient
}

// Encode writes the packet into the first PacketSizeBytes of b
func (p *Packet) Encode(b []byte) {
	_ = b[PacketSizeBytes-1]
	b[0] = p.Settings
	b[1] = p.Stratum
	b[2] = uint8(p.Poll)
	b[3] = uint8(p.Precision)
	be := binary.BigEndian
	for i, v := range [...]uint32{
		p.RootDelay, p.RootDispersion, p.ReferenceID,
		p.RefTimeSec, p.RefTimeFrac,
		p.OrigTimeSec, p.OrigTimeFrac,
		p.RxTimeSec, p.RxTimeFrac,
		p.TxTimeSec, p.TxTimeFrac,
	} {
		be.PutUint32(b[4+4*i:], v)
	}
}

// Bytes returns the wire form of the packet
func (p *Packet) Bytes() []byte {
	b := make([]byte, PacketSizeBytes)
	p.Encode(b)
	return b
}

// BytesToPacket parses a full size packet. Trailing bytes are ignored
func BytesToPacket(b []byte) (*Packet, error) {
	if len(b) < PacketSizeBytes {
		return nil, fmt.Errorf("got %d bytes, need %d for an NTP packet", len(b), PacketSizeBytes)
	}
	be := binary.BigEndian
	return &Packet{
		Settings:       b[0],
		Stratum:        b[1],
		Poll:           int8(b[2]),
		Precision:      int8(b[3]),
		RootDelay:      be.Uint32(b[4:]),
		RootDispersion: be.Uint32(b[8:]),
		ReferenceID:    be.Uint32(b[12:]),
		RefTimeSec:     be.Uint32(b[16:]),
		RefTimeFrac:    be.Uint32(b[20:]),
		OrigTimeSec:    be.Uint32(b[24:]),
		OrigTimeFrac:   be.Uint32(b[28:]),
		RxTimeSec:      be.Uint32(b[32:]),
		RxTimeFrac:     be.Uint32(b[36:]),
		TxTimeSec:      be.Uint32(b[40:]),
		TxTimeFrac:     be.Uint32(b[44:]),
	}, nil
}

// BuildRequest returns a client mode request of the given version.
// Everything except the settings byte is zero: the client does not
// send its own transmit timestamp.
func BuildRequest(version int) []byte {
	p := Packet{Settings: Settings(liNoWarning, uint8(version), modeClient)}
	return p.Bytes()
}

// DecodeTransmitSeconds reads transmit timestamp seconds (NTP era, since 1900) from a reply.
// Fraction of a second is ignored.
func DecodeTransmitSeconds(b []byte) (uint32, error) {
	if len(b) < MinReplySizeBytes {
		return 0, ErrShortPacket
	}
	return binary.BigEndian.Uint32(b[transmitSecondsOffset:]), nil
}
