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

package effects

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustjuke/jukebox-core/pkg/helpers/command"
	"github.com/rustjuke/jukebox-core/pkg/tagmapper"
)

// AudioSink is the production audio collaborator ProdInterpreter
// drives; satisfied by *audiosink.Sink.
type AudioSink interface {
	PlayFrom(conf tagmapper.TagConf, offset time.Duration) error
	Stop()
	CurrentlyPlaying() bool
}

// LED is the hardware collaborator LedOn/LedOff effects drive.
type LED interface {
	On() error
	Off() error
}

// PollInterval is how often ProdInterpreter refreshes its published
// State from the audio sink.
const PollInterval = 2 * time.Second

// ProdInterpreter is the production Interpreter: it drives a real
// audio sink, a real LED, and shell commands through command.Executor,
// polling the sink at PollInterval to publish its State.
type ProdInterpreter struct {
	sink     AudioSink
	led      LED
	executor command.Executor

	mu        sync.Mutex
	lastConf  tagmapper.TagConf

	stateMu sync.RWMutex
	state   State
}

// NewProdInterpreter returns a ProdInterpreter driving sink, led, and
// executor.
func NewProdInterpreter(sink AudioSink, led LED, executor command.Executor) *ProdInterpreter {
	return &ProdInterpreter{sink: sink, led: led, executor: executor}
}

// WaitUntilReady returns immediately: the audio sink is opened and
// ready as soon as NewProdInterpreter is called, so there is nothing
// further to wait for beyond ctx itself still being live.
func (p *ProdInterpreter) WaitUntilReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("effects: wait until ready: %w", err)
	}
	return nil
}

// Interpret executes eff against the sink, LED, or shell.
func (p *ProdInterpreter) Interpret(eff Effect) error {
	switch eff.Kind {
	case Play:
		p.mu.Lock()
		p.lastConf = eff.TagConf
		p.mu.Unlock()
		return p.sink.PlayFrom(eff.TagConf, 0)

	case PlayContinue:
		p.mu.Lock()
		conf := p.lastConf
		p.mu.Unlock()
		return p.sink.PlayFrom(conf, eff.Offset)

	case Stop:
		p.sink.Stop()
		return nil

	case LedOn:
		return p.led.On()

	case LedOff:
		return p.led.Off()

	case GenericCommand:
		if err := p.executor.Run(context.Background(), "/bin/sh", "-c", eff.Command); err != nil {
			return fmt.Errorf("effects: generic command %q: %w", eff.Command, err)
		}
		return nil

	default:
		return fmt.Errorf("effects: unknown effect kind %v", eff.Kind)
	}
}

// RunPolling refreshes the published State from the sink every
// PollInterval until ctx is cancelled.
func (p *ProdInterpreter) RunPolling(ctx context.Context) {
	p.runPollingEvery(ctx, PollInterval)
}

func (p *ProdInterpreter) runPollingEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			playing := p.sink.CurrentlyPlaying()
			p.stateMu.Lock()
			p.state = State{CurrentlyPlaying: playing}
			p.stateMu.Unlock()
			log.Debug().Bool("currently_playing", playing).Msg("effects: refreshed interpreter state")
		}
	}
}

// State returns the most recently polled snapshot.
func (p *ProdInterpreter) State() State {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}
