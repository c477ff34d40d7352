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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, url string) string {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestFlattenKey(t *testing.T) {
	require.Equal(t, "step_mean_ms", flattenKey("step.mean_ms"))
	require.Equal(t, "a_b_c_d_e_f", flattenKey("a b-c=d/e.f"))
}

func TestPrometheusExporter(t *testing.T) {
	j := NewJSONStats()
	j.IncRequests()
	j.IncRequests()
	j.SetAnchor(1700000000)

	e := NewPrometheusExporter(j)
	ts := httptest.NewServer(e.Handler())
	defer ts.Close()

	body := scrape(t, ts.URL)
	require.Contains(t, body, "ntpclock_requests 2")
	require.Contains(t, body, "ntpclock_step_count 0")
	require.Contains(t, body, "# HELP ntpclock_step_last_ms step.last_ms")

	// gauges are refreshed on every scrape
	j.IncRequests()
	body = scrape(t, ts.URL)
	require.Contains(t, body, "ntpclock_requests 3")
}
