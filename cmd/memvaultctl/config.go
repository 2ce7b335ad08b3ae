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
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configEnvVar = "MEMVAULTCTL_CONFIG"

// Config is memvaultctl's persistent defaults, read from
// ~/.memvault/config.yaml unless overridden by MEMVAULTCTL_CONFIG or --config.
type Config struct {
	DefaultTrack   string `yaml:"default_track"`
	WorkerThreads  int    `yaml:"worker_threads"`
	WorkerQueue    int    `yaml:"worker_queue"`
	WantPQ         bool   `yaml:"want_pq"`
	ReplaySession  string `yaml:"replay_session,omitempty"`
}

func defaultConfig() *Config {
	return &Config{
		WorkerThreads: 4,
		WorkerQueue:   8,
	}
}

// defaultConfigPath returns ~/.memvault/config.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".memvault", "config.yaml"), nil
}

// loadConfig loads configPath (or the default path if empty), returning
// defaultConfig() unchanged if no file exists yet — a missing config is
// not an error for a CLI that works fine with zero setup.
func loadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		if env := os.Getenv(configEnvVar); env != "" {
			configPath = env
		}
	}
	if configPath == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return defaultConfig(), nil
		}
		configPath = p
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// saveConfig writes cfg to configPath (or the default path if empty),
// creating the parent directory if needed.
func saveConfig(cfg *Config, configPath string) error {
	if configPath == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o600)
}
