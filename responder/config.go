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
	"time"

	"github.com/wordclock/ntpclock/dscp"
)

// Config is a server config structure
type Config struct {
	ExtraOffset    time.Duration
	Iface          string
	IP             net.IP
	ManageLoopback bool
	MonitoringPort int
	Port           int
	RefID          string
	Stratum        int
	Workers        int
	DSCP           int
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() Config {
	return Config{
		Iface:          "lo",
		IP:             net.ParseIP("127.0.0.1"),
		MonitoringPort: 4271,
		Port:           123,
		RefID:          "LOCL",
		Stratum:        1,
		Workers:        4,
	}
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("will not start without workers")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in range [0, 65535]")
	}
	if c.Stratum < 1 || c.Stratum > 15 {
		return fmt.Errorf("stratum must be in range [1, 15]")
	}
	if c.DSCP < 0 || c.DSCP > dscp.MaxValue {
		return fmt.Errorf("dscp must be in range [0, %d]", dscp.MaxValue)
	}
	if c.ManageLoopback && (c.Iface == "" || c.IP == nil || c.IP.IsUnspecified()) {
		return fmt.Errorf("managing loopback needs an interface and a specific IP")
	}
	if c.MonitoringPort < 0 {
		return fmt.Errorf("monitoring port must be 0 or positive")
	}
	return nil
}
