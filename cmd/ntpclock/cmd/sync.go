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
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wordclock/ntpclock/channel"
	"github.com/wordclock/ntpclock/client"
	"github.com/wordclock/ntpclock/tz"
	"github.com/wordclock/ntpclock/uptime"
)

// flags
var (
	syncServerFlag  string
	syncTimeoutFlag time.Duration
	syncDSCPFlag    int
)

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVarP(&syncServerFlag, "server", "s", "", "NTP server to query")
	syncCmd.Flags().DurationVarP(&syncTimeoutFlag, "timeout", "t", time.Second, "how long to wait for the reply")
	syncCmd.Flags().IntVarP(&syncDSCPFlag, "dscp", "d", 0, "DSCP value for outgoing packets")
}

func setFlags(cmd *cobra.Command, names ...string) map[string]bool {
	set := map[string]bool{}
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			set[name] = true
		}
	}
	return set
}

func printClock(c *client.Clock, cfg *client.Config) {
	a := c.Anchor()
	utc := c.Now()
	local := c.LocalNow()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"server", "anchor", "uptime(ms)", "utc", "local", "dst"})
	table.Append([]string{
		fmt.Sprintf("%s:%d", cfg.Server, cfg.Port),
		strconv.FormatUint(a.EpochSeconds, 10),
		strconv.FormatUint(a.UptimeMs, 10),
		c.NowTime().Format(time.RFC3339),
		time.Unix(local, 0).UTC().Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%v", tz.InDST(utc, cfg.TZ)),
	})
	table.Render()
}

func syncRun(cfg *client.Config) error {
	counter, err := uptime.NewSystem()
	if err != nil {
		return err
	}
	c := client.NewClock(channel.NewUDP(cfg.DSCP), cfg, counter, nil)
	if err := c.Setup(); err != nil {
		return err
	}
	defer c.Close()

	if err := c.Sync(); err != nil {
		fmt.Println(failString, err)
		return err
	}
	fmt.Println(okString, "synchronized with", cfg.Server)
	printClock(c, cfg)
	return nil
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Query the server once and print the resulting wall clock",
	Run: func(cmd *cobra.Command, _ []string) {
		ConfigureVerbosity()
		cfg, err := client.PrepareConfig(rootConfigFlag, syncServerFlag, syncTimeoutFlag, 0, syncDSCPFlag, 0, setFlags(cmd, "server", "timeout", "dscp"))
		if err != nil {
			log.Fatal(err)
		}
		if err := syncRun(cfg); err != nil {
			os.Exit(1)
		}
	},
}
