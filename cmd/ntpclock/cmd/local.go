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
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wordclock/ntpclock/tz"
)

// flags
var localTZ tz.Config
var localRuleFlag string

func init() {
	RootCmd.AddCommand(localCmd)
	localCmd.Flags().IntVarP(&localTZ.UTCOffsetMinutes, "offset", "o", 60, "standard UTC offset in minutes")
	localCmd.Flags().BoolVar(&localTZ.UseDST, "dst", true, "apply daylight saving time")
	localCmd.Flags().StringVarP(&localRuleFlag, "rule", "r", string(tz.RuleEU), "DST rule: eu or us")
}

// localString renders Unix seconds as local wall time
func localString(utc uint64, cfg tz.Config) string {
	local := tz.LocalTime(utc, cfg)
	dst := ""
	if tz.InDST(utc, cfg) {
		dst = " (DST)"
	}
	return fmt.Sprintf("%s%s", time.Unix(local, 0).UTC().Format("2006-01-02 15:04:05"), dst)
}

var localCmd = &cobra.Command{
	Use:   "local [unix seconds]",
	Short: "Convert Unix seconds to local time, defaults to the system clock",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		localTZ.DSTRule = tz.Rule(localRuleFlag)
		if err := localTZ.Validate(); err != nil {
			log.Fatal(err)
		}
		utc := uint64(time.Now().Unix())
		if len(args) == 1 {
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				log.Fatalf("parsing %q: %v", args[0], err)
			}
			utc = v
		}
		fmt.Println(localString(utc, localTZ))
	},
}
