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

// Package blinker interprets a small tree of LED commands,
// cooperatively cancellable at every wait point. A new program always
// cancels whatever program was previously running.
package blinker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CmdKind names the shape of a Cmd.
type CmdKind int

const (
	// CmdOn turns the LED on for a duration.
	CmdOn CmdKind = iota
	// CmdOff turns the LED off for a duration.
	CmdOff
	// CmdMany runs a sequence of commands in order.
	CmdMany
	// CmdRepeat runs Inner N times in sequence.
	CmdRepeat
	// CmdLoop runs Inner forever, until cancelled.
	CmdLoop
)

// Cmd is a node in the LED program tree.
type Cmd struct {
	Kind     CmdKind
	Duration time.Duration
	Many     []Cmd
	Count    uint32
	Inner    *Cmd
}

// On returns a Cmd that switches the LED on for d.
func On(d time.Duration) Cmd { return Cmd{Kind: CmdOn, Duration: d} }

// Off returns a Cmd that switches the LED off for d.
func Off(d time.Duration) Cmd { return Cmd{Kind: CmdOff, Duration: d} }

// Many returns a Cmd that runs cmds in sequence.
func Many(cmds ...Cmd) Cmd { return Cmd{Kind: CmdMany, Many: cmds} }

// Repeat returns a Cmd that runs inner n times in sequence.
func Repeat(n uint32, inner Cmd) Cmd { return Cmd{Kind: CmdRepeat, Count: n, Inner: &inner} }

// Loop returns a Cmd that runs inner forever.
func Loop(inner Cmd) Cmd { return Cmd{Kind: CmdLoop, Inner: &inner} }

// LED is the hardware collaborator the blinker drives.
type LED interface {
	On() error
	Off() error
}

// Blinker runs at most one LED program at a time.
type Blinker struct {
	led LED

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a Blinker driving led.
func New(led LED) *Blinker {
	return &Blinker{led: led}
}

// Run starts spec running in the background, cancelling any program
// already in flight.
func (b *Blinker) Run(spec Cmd) {
	b.mu.Lock()
	if b.cancel != nil {
		log.Debug().Msg("blinker: terminating current program for a new one")
		b.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.mu.Unlock()

	go run(ctx, b.led, spec)
}

// Stop cancels any running program without starting a new one.
func (b *Blinker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func run(ctx context.Context, led LED, cmd Cmd) {
	switch cmd.Kind {
	case CmdOn:
		if err := led.On(); err != nil {
			log.Error().Err(err).Msg("blinker: led on failed")
		}
		sleep(ctx, cmd.Duration)

	case CmdOff:
		if err := led.Off(); err != nil {
			log.Error().Err(err).Msg("blinker: led off failed")
		}
		sleep(ctx, cmd.Duration)

	case CmdMany:
		for _, c := range cmd.Many {
			if ctx.Err() != nil {
				return
			}
			run(ctx, led, c)
		}

	case CmdRepeat:
		for i := uint32(0); i < cmd.Count; i++ {
			if ctx.Err() != nil {
				return
			}
			run(ctx, led, *cmd.Inner)
		}

	case CmdLoop:
		for {
			if ctx.Err() != nil {
				return
			}
			run(ctx, led, *cmd.Inner)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
