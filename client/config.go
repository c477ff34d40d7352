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
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/wordclock/ntpclock/dscp"
	"github.com/wordclock/ntpclock/tz"
)

// maxTimeout bounds a single sync attempt
const maxTimeout = time.Hour

// BackoffConfig describes configuration for backoff after failed syncs
type BackoffConfig struct {
	Mode     string `yaml:"mode" env:"NTPCLOCK_BACKOFF_MODE"`
	Step     int    `yaml:"step" env:"NTPCLOCK_BACKOFF_STEP"`
	MaxValue int    `yaml:"maxvalue" env:"NTPCLOCK_BACKOFF_MAXVALUE"`
}

// Validate BackoffConfig is sane
func (c *BackoffConfig) Validate() error {
	if c.Mode != backoffNone && c.Mode != backoffFixed && c.Mode != backoffLinear && c.Mode != backoffExponential {
		return fmt.Errorf("mode must be either %q, %q, %q or %q", backoffNone, backoffFixed, backoffLinear, backoffExponential)
	}
	if c.Mode != backoffNone {
		if c.Step <= 0 {
			return fmt.Errorf("step must be positive")
		}
		if c.Mode != backoffFixed && c.MaxValue <= 0 {
			return fmt.Errorf("maxvalue must be positive")
		}
	}
	return nil
}

// Config specifies ntpclock run options
type Config struct {
	Server         string        `yaml:"server" env:"NTPCLOCK_SERVER"`
	Port           int           `yaml:"port" env:"NTPCLOCK_PORT"`
	LocalPort      int           `yaml:"local_port" env:"NTPCLOCK_LOCAL_PORT"`
	Version        int           `yaml:"version" env:"NTPCLOCK_VERSION"`
	Timeout        time.Duration `yaml:"timeout" env:"NTPCLOCK_TIMEOUT"`
	PollInterval   time.Duration `yaml:"poll_interval" env:"NTPCLOCK_POLL_INTERVAL"`
	DSCP           int           `yaml:"dscp" env:"NTPCLOCK_DSCP"`
	Interval       time.Duration `yaml:"interval" env:"NTPCLOCK_INTERVAL"`
	RetryInterval  time.Duration `yaml:"retry_interval" env:"NTPCLOCK_RETRY_INTERVAL"`
	MonitoringPort int           `yaml:"monitoring_port" env:"NTPCLOCK_MONITORING_PORT"`
	Backoff        BackoffConfig `yaml:"backoff"`
	TZ             tz.Config     `yaml:"tz"`
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		Server:         "pool.ntp.org",
		Port:           123,
		Version:        3,
		Timeout:        time.Second,
		PollInterval:   10 * time.Millisecond,
		Interval:       time.Hour,
		RetryInterval:  time.Minute,
		MonitoringPort: 4270,
		TZ: tz.Config{
			UTCOffsetMinutes: 60,
			UseDST:           true,
			DSTRule:          tz.RuleEU,
		},
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server must be specified")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in range [1, 65535]")
	}
	if c.LocalPort < 0 || c.LocalPort > 65535 {
		return fmt.Errorf("local_port must be in range [0, 65535]")
	}
	if c.Version != 3 && c.Version != 4 {
		return fmt.Errorf("version must be either 3 or 4")
	}
	if c.Timeout < time.Millisecond || c.Timeout > maxTimeout {
		return fmt.Errorf("timeout must be in range [1ms, %v]", maxTimeout)
	}
	if c.PollInterval <= 0 || c.PollInterval > c.Timeout {
		return fmt.Errorf("poll_interval must be greater than zero but not more than timeout")
	}
	if c.DSCP < 0 || c.DSCP > dscp.MaxValue {
		return fmt.Errorf("dscp must be in range [0, %d]", dscp.MaxValue)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("retry_interval must be greater than zero")
	}
	if c.MonitoringPort < 0 {
		return fmt.Errorf("monitoring_port must be 0 or positive")
	}
	if err := c.Backoff.Validate(); err != nil {
		return fmt.Errorf("invalid backoff config: %w", err)
	}
	if err := c.TZ.Validate(); err != nil {
		return fmt.Errorf("invalid tz config: %w", err)
	}
	return nil
}

// ReadConfig reads config from the file
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(cData, &c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// PrepareConfig prepares final version of config based on defaults, on-disk config,
// NTPCLOCK_* environment and CLI flags, and validates resulting config
func PrepareConfig(cfgPath string, server string, timeout time.Duration, interval time.Duration, dscpValue int, monitoringPort int, setFlags map[string]bool) (*Config, error) {
	cfg := DefaultConfig()
	var err error
	warn := func(name string) {
		log.Warningf("overriding %s from CLI flag", name)
	}
	if cfgPath != "" {
		cfg, err = ReadConfig(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("reading config from %q: %w", cfgPath, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}
	if setFlags["server"] {
		warn("server")
		cfg.Server = server
	}
	if setFlags["timeout"] {
		warn("timeout")
		cfg.Timeout = timeout
	}
	if setFlags["interval"] {
		warn("interval")
		cfg.Interval = interval
	}
	if setFlags["dscp"] {
		warn("dscp")
		cfg.DSCP = dscpValue
	}
	if setFlags["monitoringport"] {
		warn("monitoringPort")
		cfg.MonitoringPort = monitoringPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	log.Debugf("config: %+v", cfg)
	return cfg, nil
}
