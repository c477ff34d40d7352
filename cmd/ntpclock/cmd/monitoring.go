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
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wordclock/ntpclock/stats"
)

const (
	sysStatsInterval = time.Minute
	shutdownTimeout  = 5 * time.Second
)

// monitoringMux serves the JSON snapshot on / and prometheus metrics on /metrics
func monitoringMux(st *stats.JSONStats) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", st.Handler())
	mux.Handle("/metrics", stats.NewPrometheusExporter(st).Handler())
	return mux
}

// serveMonitoring runs the monitoring http server until ctx is done
func serveMonitoring(ctx context.Context, port int, st *stats.JSONStats) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           monitoringMux(st),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warningf("monitoring server shutdown: %v", err)
		}
	}()
	log.Infof("Starting monitoring server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitoring server: %w", err)
	}
	return nil
}

// collectSysStats refreshes process metrics every interval until ctx is done
func collectSysStats(ctx context.Context, st *stats.JSONStats, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := st.CollectSysStats(); err != nil {
			log.Warningf("collecting process stats: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
