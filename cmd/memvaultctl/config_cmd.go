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
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// runConfig prints the effective config, or writes out fresh defaults to
// ~/.memvault/config.yaml with --write.
func runConfig(args []string, g Globals) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.memvault/config.yaml)")
	write := fs.Bool("write", false, "Write out default settings to the config path")
	threads := fs.Int("worker-threads", 0, "With --write, set worker_threads")
	track := fs.String("default-track", "", "With --write, set default_track")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *write {
		cfg := defaultConfig()
		if *threads > 0 {
			cfg.WorkerThreads = *threads
		}
		if *track != "" {
			cfg.DefaultTrack = *track
		}
		if err := saveConfig(cfg, *configPath); err != nil {
			return err
		}
		if !g.Quiet {
			fmt.Println(okString("wrote config"))
		}
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if g.JSON {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}
	fmt.Printf("default_track:  %s\n", cfg.DefaultTrack)
	fmt.Printf("worker_threads: %d\n", cfg.WorkerThreads)
	fmt.Printf("worker_queue:   %d\n", cfg.WorkerQueue)
	fmt.Printf("want_pq:        %v\n", cfg.WantPQ)
	fmt.Printf("replay_session: %s\n", cfg.ReplaySession)
	return nil
}
