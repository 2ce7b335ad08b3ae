/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dc0d/onexit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/vault"
)

var (
	metricFileBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memvault_file_bytes", Help: "Current size of the vault file in bytes.",
	})
	metricActiveFrames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memvault_active_frames", Help: "Number of active (non-superseded, non-deleted) frames.",
	})
	metricWALBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memvault_wal_bytes", Help: "Current manifest WAL size in bytes.",
	})
)

// runServe periodically refreshes a small set of gauges from Stats() and
// exposes them at /metrics, in the teacher pack's promhttp.Handler idiom
// (vjache-cie cmd/cie/index.go's MCP-server metrics endpoint).
func runServe(args []string, g Globals) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":9464", "Listen address for the /metrics endpoint")
	interval := fs.Duration("interval", 15*time.Second, "Stats refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memvaultctl serve <path>")
	}
	path := fs.Arg(0)

	v, err := vault.Open(path)
	if err != nil {
		return err
	}
	onexit.Register(func() { _ = v.Close() })

	stop := make(chan struct{})
	onexit.Register(func() { close(stop) })
	go refreshStatsLoop(v, *interval, stop)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if !g.Quiet {
		fmt.Println(headString(fmt.Sprintf("serving metrics for %s on %s", path, *addr)))
	}
	return http.ListenAndServe(*addr, mux)
}

func refreshStatsLoop(v *vault.Vault, interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	refreshStats(v)
	for {
		select {
		case <-ticker.C:
			refreshStats(v)
		case <-stop:
			return
		}
	}
}

func refreshStats(v *vault.Vault) {
	s, err := v.Stats()
	if err != nil {
		return
	}
	metricFileBytes.Set(float64(s.FileBytes))
	metricActiveFrames.Set(float64(s.ActiveFrames))
	metricWALBytes.Set(float64(s.WALBytes))
}
