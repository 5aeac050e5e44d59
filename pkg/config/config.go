// Jukebox Core
// Copyright (c) 2026 Jukebox Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Jukebox Core.
//
// Jukebox Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Jukebox Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Jukebox Core.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads and holds the process-level configuration
// recognized by the core, as a snapshot readable from multiple
// goroutines while a reload swaps it atomically.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rustjuke/jukebox-core/pkg/helpers/syncutil"
)

// Values holds every configuration key this core recognizes.
type Values struct {
	TriggerOnlyMode bool `toml:"trigger_only_mode"`

	ShutdownCommand   string `toml:"shutdown_command"`
	VolumeUpCommand   string `toml:"volume_up_command"`
	VolumeDownCommand string `toml:"volume_down_command"`

	AudioBaseDirectory         string `toml:"audio_base_directory"`
	AudioOutputDevice          string `toml:"audio_output_device"`
	TagMapperConfigurationFile string `toml:"tag_mapper_configuration_file"`

	RefreshToken    string `toml:"refresh_token"`
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	DeviceName      string `toml:"device_name"`
	PostInitCommand string `toml:"post_init_command"`

	MQTTBrokerURL string `toml:"mqtt_broker_url"`
	MQTTTopic     string `toml:"mqtt_trigger_topic"`

	HoldModeExitDelay time.Duration `toml:"hold_mode_exit_delay"`
}

// BaseDefaults mirror the original Rust implementation's serde
// defaults: trigger-only mode on, shutdown via sudo.
var BaseDefaults = Values{
	TriggerOnlyMode:   true,
	ShutdownCommand:   "sudo shutdown -h now",
	VolumeUpCommand:   "amixer set Master 5%+",
	VolumeDownCommand: "amixer set Master 5%-",
	HoldModeExitDelay: 2 * time.Second,
}

// Instance holds a reloadable Values snapshot behind a reader-
// preferring lock.
type Instance struct {
	path string

	mu  syncutil.RWMutex
	val Values
}

// Load reads path, merging onto BaseDefaults, and returns a ready
// Instance.
func Load(path string) (*Instance, error) {
	inst := &Instance{path: path}
	if err := inst.Reload(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Reload re-reads the backing TOML file, starting from BaseDefaults.
func (i *Instance) Reload() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", i.path, err)
	}

	val := BaseDefaults
	if err := toml.Unmarshal(data, &val); err != nil {
		return fmt.Errorf("config: parse %s: %w", i.path, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.val = val
	return nil
}

// Snapshot returns a copy of the current configuration values.
func (i *Instance) Snapshot() Values {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.val
}
