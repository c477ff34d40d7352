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

package cmd

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/wordclock/ntpclock/responder"
	"github.com/wordclock/ntpclock/stats"
)

const checkInterval = 30 * time.Second

var serveConfig = responder.DefaultConfig()
var serveIPFlag string

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveIPFlag, "ip", serveConfig.IP.String(), "IP to listen on")
	serveCmd.Flags().IntVarP(&serveConfig.Port, "port", "p", serveConfig.Port, "port to answer requests on")
	serveCmd.Flags().IntVarP(&serveConfig.Workers, "workers", "w", serveConfig.Workers, "how many workers (routines) to run")
	serveCmd.Flags().IntVar(&serveConfig.Stratum, "stratum", serveConfig.Stratum, "stratum of the server")
	serveCmd.Flags().StringVar(&serveConfig.RefID, "refid", serveConfig.RefID, "reference ID of the server")
	serveCmd.Flags().DurationVar(&serveConfig.ExtraOffset, "extraoffset", 0, "extra offset to return to clients")
	serveCmd.Flags().IntVarP(&serveConfig.DSCP, "dscp", "d", 0, "DSCP value for replies")
	serveCmd.Flags().StringVar(&serveConfig.Iface, "interface", serveConfig.Iface, "interface to add the IP to")
	serveCmd.Flags().BoolVar(&serveConfig.ManageLoopback, "manage-loopback", false, "add the IP to the interface on start and remove it on exit")
	serveCmd.Flags().IntVarP(&serveConfig.MonitoringPort, "monitoringport", "m", serveConfig.MonitoringPort, "port to serve stats on, 0 disables")
}

// checkResponder cancels the server when listeners or workers die
func checkResponder(ctx context.Context, c *responder.Checker, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Check(); err != nil {
				return err
			}
		}
	}
}

func serveRun(ctx context.Context, cfg responder.Config) error {
	st := stats.NewJSONStats()
	s := &responder.Server{Config: cfg, Stats: st}
	if err := s.Listen(); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.Serve(ctx)
	})
	eg.Go(func() error {
		return checkResponder(ctx, s.Checker, checkInterval)
	})
	if cfg.MonitoringPort > 0 {
		eg.Go(func() error {
			return serveMonitoring(ctx, cfg.MonitoringPort, st)
		})
	}
	eg.Go(func() error {
		return collectSysStats(ctx, st, sysStatsInterval)
	})
	err := eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer NTP requests from the system clock, for testing clients",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		serveConfig.IP = net.ParseIP(serveIPFlag)
		if serveConfig.IP == nil {
			log.Fatalf("invalid IP %q", serveIPFlag)
		}
		if err := serveConfig.Validate(); err != nil {
			log.Fatalf("Config is invalid: %v", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
		defer stop()
		if err := serveRun(ctx, serveConfig); err != nil {
			log.Fatalf("Internal error shutdown: %v", err)
		}
		log.Warning("Graceful shutdown")
	},
}
