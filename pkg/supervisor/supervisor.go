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

// Package supervisor keeps a configured external child process alive:
// it respawns on exit, and kills and respawns on loss of a polled
// "device id" from a remote HTTP endpoint. It is the abstract shape
// an optional external streaming bridge (e.g. a Spotify Connect
// daemon) plugs into; no bridge-specific protocol lives here.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustjuke/jukebox-core/pkg/helpers/command"
)

// Config configures the child process and the device-id poll.
type Config struct {
	// Command and Args launch the child process.
	Command string
	Args    []string

	// DeviceIDURL, if non-empty, is polled every PollInterval; the
	// child is killed and respawned whenever the returned device id
	// changes from present to absent/empty.
	DeviceIDURL  string
	PollInterval time.Duration

	// RespawnBackoff is the delay before respawning after an exit.
	RespawnBackoff time.Duration
}

// Supervisor manages the lifecycle of one child process.
type Supervisor struct {
	cfg      Config
	executor command.Executor
	httpGet  func(ctx context.Context, url string) (string, error)
}

// New returns a Supervisor using executor to spawn the child.
func New(cfg Config, executor command.Executor) *Supervisor {
	s := &Supervisor{cfg: cfg, executor: executor}
	s.httpGet = s.defaultHTTPGet
	return s
}

// Run spawns the child and keeps it alive until ctx is cancelled,
// respawning on exit and on device-id loss.
func (s *Supervisor) Run(ctx context.Context) {
	var lastDeviceID string
	haveDeviceID := s.cfg.DeviceIDURL != ""

	for ctx.Err() == nil {
		childCtx, cancelChild := context.WithCancel(ctx)
		exited := make(chan error, 1)

		go func() {
			exited <- s.executor.RunDetached(childCtx, s.cfg.Command, s.cfg.Args...)
		}()

		if haveDeviceID {
			s.watchDeviceID(childCtx, cancelChild, &lastDeviceID)
		}

		select {
		case err := <-exited:
			if err != nil {
				log.Warn().Err(err).Msg("supervisor: child exited with error, respawning")
			} else {
				log.Info().Msg("supervisor: child exited, respawning")
			}
		case <-ctx.Done():
			cancelChild()
			<-exited
			return
		}
		cancelChild()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.RespawnBackoff):
		}
	}
}

func (s *Supervisor) watchDeviceID(ctx context.Context, killChild context.CancelFunc, lastDeviceID *string) {
	go func() {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				id, err := s.httpGet(ctx, s.cfg.DeviceIDURL)
				if err != nil {
					log.Debug().Err(err).Msg("supervisor: device id poll failed")
					continue
				}
				if *lastDeviceID != "" && id == "" {
					log.Warn().Msg("supervisor: device id lost, killing child for respawn")
					*lastDeviceID = id
					killChild()
					return
				}
				*lastDeviceID = id
			}
		}
	}()
}

func (s *Supervisor) defaultHTTPGet(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("supervisor: build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("supervisor: request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("supervisor: read response: %w", err)
	}

	var parsed struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("supervisor: parse response: %w", err)
	}
	return parsed.DeviceID, nil
}
