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

// Package effects defines the effect vocabulary the player emits and
// the single Interpreter capability that executes it against an
// audio sink and an LED.
package effects

import (
	"context"
	"time"

	"github.com/rustjuke/jukebox-core/pkg/tagmapper"
)

// Kind names the shape of an Effect.
type Kind int

const (
	// Play starts the given TagConf from offset zero.
	Play Kind = iota
	// PlayContinue resumes playback of the previously paused TagConf
	// at Offset.
	PlayContinue
	// Stop halts playback without clearing any queued items.
	Stop
	// LedOn turns the status LED on.
	LedOn
	// LedOff turns the status LED off.
	LedOff
	// GenericCommand runs a shell command and fails on non-zero exit.
	GenericCommand
)

// Effect is one instruction for the interpreter. Only the fields
// relevant to Kind are meaningful.
type Effect struct {
	Kind    Kind
	TagConf tagmapper.TagConf
	Offset  time.Duration
	Command string
}

// PlayEffect returns a Play effect for conf.
func PlayEffect(conf tagmapper.TagConf) Effect { return Effect{Kind: Play, TagConf: conf} }

// PlayContinueEffect returns a PlayContinue effect resuming at offset.
func PlayContinueEffect(offset time.Duration) Effect {
	return Effect{Kind: PlayContinue, Offset: offset}
}

// StopEffect returns a Stop effect.
func StopEffect() Effect { return Effect{Kind: Stop} }

// LedOnEffect returns a LedOn effect.
func LedOnEffect() Effect { return Effect{Kind: LedOn} }

// LedOffEffect returns a LedOff effect.
func LedOffEffect() Effect { return Effect{Kind: LedOff} }

// GenericCommandEffect returns a GenericCommand effect running cmd
// through a shell.
func GenericCommandEffect(cmd string) Effect { return Effect{Kind: GenericCommand, Command: cmd} }

// State is the observable snapshot an Interpreter publishes, updated
// at roughly 0.5 Hz from the underlying audio sink.
type State struct {
	CurrentlyPlaying bool
}

// Interpreter is the single capability the player needs: execute an
// Effect, and block until the underlying sinks are ready.
type Interpreter interface {
	// WaitUntilReady blocks until the underlying sinks are available.
	WaitUntilReady(ctx context.Context) error
	// Interpret executes eff and reports whether it succeeded.
	Interpret(eff Effect) error
	// State returns the most recently published snapshot.
	State() State
}
