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

package responder

import (
	"fmt"
	"net"

	"github.com/jsimonetti/rtnetlink/rtnl"
	log "github.com/sirupsen/logrus"
)

// hostMask returns a single host mask matching the family of ip
func hostMask(ip net.IP) net.IPMask {
	if ip.To4() == nil {
		return net.CIDRMask(8*net.IPv6len, 8*net.IPv6len)
	}
	return net.CIDRMask(8*net.IPv4len, 8*net.IPv4len)
}

// assigned checks if ip is configured on the interface already
func assigned(iface *net.Interface, ip net.IP) (bool, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return false, err
	}
	for _, a := range addrs {
		var have net.IP
		switch v := a.(type) {
		case *net.IPAddr:
			have = v.IP
		case *net.IPNet:
			have = v.IP
		default:
			continue
		}
		if have.Equal(ip) {
			return true, nil
		}
	}
	return false, nil
}

// addIP configures ip on the named interface. It reports whether the address was added by this call
func addIP(ifname string, ip net.IP) (bool, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return false, fmt.Errorf("looking up interface %s: %w", ifname, err)
	}
	ok, err := assigned(iface, ip)
	if err != nil || ok {
		return false, err
	}
	conn, err := rtnl.Dial(nil)
	if err != nil {
		return false, fmt.Errorf("can't establish netlink connection: %w", err)
	}
	defer conn.Close()

	log.Infof("Adding %s to %s", ip, ifname)
	if err := conn.AddrAdd(iface, &net.IPNet{IP: ip, Mask: hostMask(ip)}); err != nil {
		return false, fmt.Errorf("can't add address: %w", err)
	}
	return true, nil
}

// deleteIP removes ip from the named interface if present
func deleteIP(ifname string, ip net.IP) error {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return err
	}
	ok, err := assigned(iface, ip)
	if err != nil || !ok {
		return err
	}
	conn, err := rtnl.Dial(nil)
	if err != nil {
		return fmt.Errorf("can't establish netlink connection: %w", err)
	}
	defer conn.Close()

	log.Infof("Deleting %s from %s", ip, ifname)
	if err := conn.AddrDel(iface, &net.IPNet{IP: ip, Mask: hostMask(ip)}); err != nil {
		return fmt.Errorf("can't remove address: %w", err)
	}
	return nil
}
