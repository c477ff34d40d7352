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

package stats

import (
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const metricPrefix = "ntpclock_"

// Snapshotter is anything with a flat metrics snapshot
type Snapshotter interface {
	Snapshot() map[string]int64
}

// PrometheusExporter exposes a snapshot as prometheus gauges
type PrometheusExporter struct {
	registry *prometheus.Registry
	source   Snapshotter
}

// NewPrometheusExporter creates a new instance of PrometheusExporter
func NewPrometheusExporter(source Snapshotter) *PrometheusExporter {
	return &PrometheusExporter{registry: prometheus.NewRegistry(), source: source}
}

// Handler returns http handler which refreshes gauges and serves them
func (e *PrometheusExporter) Handler() http.Handler {
	h := promhttp.HandlerFor(
		e.registry,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.scrapeMetrics()
		h.ServeHTTP(w, r)
	})
}

func (e *PrometheusExporter) scrapeMetrics() {
	for mkey, mval := range e.source.Snapshot() {
		promCollector := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + flattenKey(mkey),
			Help: mkey,
		})
		if err := e.registry.Register(promCollector); err != nil {
			are := prometheus.AlreadyRegisteredError{}
			if errors.As(err, &are) {
				promCollector = are.ExistingCollector.(prometheus.Gauge)
			} else {
				log.Errorf("failed to register metric %s %v", mkey, err)
				continue
			}
		}
		promCollector.Set(float64(mval))
	}
}

func flattenKey(key string) string {
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, "=", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}
