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
	"os/signal"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/wordclock/ntpclock/channel"
	"github.com/wordclock/ntpclock/client"
	"github.com/wordclock/ntpclock/stats"
	"github.com/wordclock/ntpclock/uptime"
)

// flags
var (
	runServerFlag         string
	runTimeoutFlag        time.Duration
	runIntervalFlag       time.Duration
	runDSCPFlag           int
	runMonitoringPortFlag int
)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runServerFlag, "server", "s", "", "NTP server to query")
	runCmd.Flags().DurationVarP(&runTimeoutFlag, "timeout", "t", time.Second, "how long to wait for each reply")
	runCmd.Flags().DurationVarP(&runIntervalFlag, "interval", "i", time.Hour, "how often to re-sync after a success")
	runCmd.Flags().IntVarP(&runDSCPFlag, "dscp", "d", 0, "DSCP value for outgoing packets")
	runCmd.Flags().IntVarP(&runMonitoringPortFlag, "monitoringport", "m", 4270, "port to serve stats on, 0 disables")
}

func runDaemon(ctx context.Context, cfg *client.Config) error {
	counter, err := uptime.NewSystem()
	if err != nil {
		return err
	}
	st := stats.NewJSONStats()
	c := client.NewClock(channel.NewUDP(cfg.DSCP), cfg, counter, st)
	if err := c.Setup(); err != nil {
		return err
	}
	defer c.Close()

	sched := client.NewScheduler(c, cfg)
	sched.OnResult = func(err error) {
		if err != nil {
			return
		}
		log.Debugf("utc %d, local %d", c.Now(), c.LocalNow())
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return sched.Run(ctx)
	})
	if cfg.MonitoringPort > 0 {
		eg.Go(func() error {
			return serveMonitoring(ctx, cfg.MonitoringPort, st)
		})
	}
	eg.Go(func() error {
		return collectSysStats(ctx, st, sysStatsInterval)
	})

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warningf("failed to notify systemd: %v", err)
	} else if ok {
		log.Debug("notified systemd")
	}

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep the clock synchronized until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		ConfigureVerbosity()
		cfg, err := client.PrepareConfig(rootConfigFlag, runServerFlag, runTimeoutFlag, runIntervalFlag, runDSCPFlag, runMonitoringPortFlag,
			setFlags(cmd, "server", "timeout", "interval", "dscp", "monitoringport"))
		if err != nil {
			log.Fatal(err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
		defer stop()
		if err := runDaemon(ctx, cfg); err != nil {
			log.Fatal(err)
		}
		log.Warning("Graceful shutdown")
	},
}
