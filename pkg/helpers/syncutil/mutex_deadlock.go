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

//go:build deadlock

// Package syncutil provides the mutex primitives used throughout the
// daemon to guard config snapshots, tag-mapper reloads, and player
// state, with optional deadlock detection.
// Use build tag -tags=deadlock to enable deadlock detection during development.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"

	"github.com/rs/zerolog/log"
)

// DeadlockEnabled is true if the deadlock detector is enabled.
const DeadlockEnabled = true

// deadlockTimeout is shorter than go-deadlock's own default. This
// appliance has no terminal attached once running headless on the
// jukebox hardware: a held lock that hangs the button/tag dispatch
// loop for 30s looks identical to a crashed daemon from the user's
// side of the box, so a stuck lock needs to surface well before that.
const deadlockTimeout = 5 * time.Second

func init() {
	deadlock.Opts.DeadlockTimeout = deadlockTimeout
	deadlock.Opts.OnPotentialDeadlock = func() {
		log.Error().Msg("syncutil: potential deadlock detected, see stderr goroutine dump")
	}
}

// A Mutex is a mutual exclusion lock.
type Mutex struct {
	deadlock.Mutex
}

// An RWMutex is a reader/writer mutual exclusion lock.
type RWMutex struct {
	deadlock.RWMutex
}
