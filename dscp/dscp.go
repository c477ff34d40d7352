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

// Package dscp marks outgoing packets of a socket with a DSCP value
package dscp

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// MaxValue is the largest 6-bit DSCP value
const MaxValue = 63

// Enable sets DSCP on the socket. IPv4 sockets get IP_TOS, IPv6 ones IPV6_TCLASS.
func Enable(fd int, localAddr net.IP, dscp int) error {
	if dscp < 0 || dscp > MaxValue {
		return fmt.Errorf("dscp %d is out of range 0-%d", dscp, MaxValue)
	}
	// DSCP is the upper 6 bits of the TOS byte
	tos := dscp << 2
	if localAddr.To4() == nil {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_TCLASS, tos); err != nil {
			return fmt.Errorf("setting IPV6_TCLASS: %w", err)
		}
		return nil
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TOS, tos); err != nil {
		return fmt.Errorf("setting IP_TOS: %w", err)
	}
	return nil
}
