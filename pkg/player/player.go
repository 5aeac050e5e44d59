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

// Package player is the heart of the system: it decides which effects
// to emit from the current PlayerState, an incoming command, the
// configured trigger-only-mode policy, and periodic completion
// snapshots from the effect interpreter. Every transition is
// tentative — if any emitted effect fails, the player reverts to the
// state it held before the transition began.
package player

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rustjuke/jukebox-core/pkg/effects"
	"github.com/rustjuke/jukebox-core/pkg/helpers/syncutil"
	"github.com/rustjuke/jukebox-core/pkg/picc"
	"github.com/rustjuke/jukebox-core/pkg/tagmapper"
)

// Clock returns the current time. Satisfied by clockwork.Clock; narrowed
// here so tests can advance time deterministically instead of sleeping
// past PlayingSince.
type Clock interface {
	Now() time.Time
}

// Kind names which variant of PlayerState is populated.
type Kind int

const (
	// Idle is the resting state: no tag, no audio.
	Idle Kind = iota
	// Playing means audio is (or was, until complete) running for
	// TagConf, started at PlayingSince with a starting Offset.
	Playing
	// Paused means the sink was stopped mid-track; PausedAt records
	// the conceptual position to resume from.
	Paused
)

// State is the player's state: a Rust-style sum type flattened into
// one struct, with only the fields relevant to Kind populated.
type State struct {
	Kind Kind

	// Playing fields.
	TagConf      tagmapper.TagConf
	PlayingSince time.Time
	Offset       time.Duration

	// Paused fields.
	PausedAt    time.Duration
	PrevTagConf tagmapper.TagConf
}

// Equal reports whether two states are behaviorally equal: same Kind
// and the same values in the fields that Kind makes meaningful. Used
// by self-assertions, not by production transition logic.
func (s State) Equal(other State) bool {
	if s.Kind != other.Kind {
		return false
	}
	switch s.Kind {
	case Idle:
		return true
	case Playing:
		return s.TagConf.Equal(other.TagConf) &&
			s.PlayingSince.Equal(other.PlayingSince) &&
			s.Offset == other.Offset
	case Paused:
		return s.PausedAt == other.PausedAt && s.PrevTagConf.Equal(other.PrevTagConf)
	default:
		return false
	}
}

// PlaybackRequest is the two-shape request the PICC loop and trigger
// sources issue against the player: a tag insertion, or a removal.
type PlaybackRequest struct {
	Start *picc.Tag
	Stop  bool
}

// Config is the subset of process configuration the player consults.
type Config struct {
	// TriggerOnlyMode, when true, means tag removal never stops
	// playback; only presenting another tag (or an explicit
	// PauseContinue) does.
	TriggerOnlyMode bool
}

// Mapper resolves a tag UID to its TagConf. Satisfied by
// *tagmapper.Mapper; narrowed here so tests can substitute a fake.
type Mapper interface {
	Resolve(uid []byte) tagmapper.TagConf
}

// Player is the state machine described in this package's doc
// comment. It owns State exclusively; nothing outside this package
// ever mutates it directly.
type Player struct {
	mu     syncutil.Mutex
	state  State
	interp effects.Interpreter
	mapper Mapper
	cfg    Config
	clock  Clock
}

// New returns an idle Player driving interp, resolving tags via
// mapper, under cfg. clock may be nil, in which case it defaults to
// clockwork.NewRealClock(); tests pass a clockwork.FakeClock to
// control elapsed-position bookkeeping deterministically.
func New(interp effects.Interpreter, mapper Mapper, cfg Config, clock Clock) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Player{interp: interp, mapper: mapper, cfg: cfg, clock: clock}
}

// State returns a copy of the player's current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) complete() bool {
	return !p.interp.State().CurrentlyPlaying
}

func (p *Player) dispatch(effs ...effects.Effect) error {
	for _, eff := range effs {
		if err := p.interp.Interpret(eff); err != nil {
			return fmt.Errorf("player: dispatch effect %v: %w", eff.Kind, err)
		}
	}
	return nil
}

// HandlePlayback applies req to the current state per spec §4.7.1/
// §4.7.2, dispatching the resulting effects. On error, the observable
// state is left exactly as it was before the call.
func (p *Player) HandlePlayback(req PlaybackRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if req.Start != nil {
		return p.handleStart(req.Start)
	}
	return p.handleStop()
}

func (p *Player) handleStart(tag *picc.Tag) error {
	conf := p.mapper.Resolve(tag.UID)
	now := p.clock.Now()

	switch p.state.Kind {
	case Idle:
		return p.commit(
			State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: 0},
			effects.PlayEffect(conf),
		)

	case Playing:
		if !p.state.TagConf.Equal(conf) {
			return p.commit(
				State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: 0},
				effects.StopEffect(), effects.PlayEffect(conf),
			)
		}
		if p.complete() {
			return p.commit(
				State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: 0},
				effects.StopEffect(), effects.PlayEffect(conf),
			)
		}
		// Same tag, still playing, not complete: idempotent no-op (P5).
		return nil

	case Paused:
		if p.state.PrevTagConf.Equal(conf) {
			if p.complete() {
				return p.commit(
					State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: 0},
					effects.StopEffect(), effects.PlayEffect(conf),
				)
			}
			return p.commit(
				State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: p.state.PausedAt},
				effects.StopEffect(),
			)
		}
		return p.commit(
			State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: 0},
			effects.StopEffect(), effects.PlayEffect(conf),
		)

	default:
		return fmt.Errorf("player: unknown state kind %v", p.state.Kind)
	}
}

func (p *Player) handleStop() error {
	switch p.state.Kind {
	case Idle, Paused:
		return nil

	case Playing:
		if p.cfg.TriggerOnlyMode {
			// Triggers only start playback; removal never stops it.
			return nil
		}

		playedFor := p.state.Offset + p.clock.Now().Sub(p.state.PlayingSince)
		if p.complete() {
			return p.commit(State{Kind: Idle}, effects.StopEffect())
		}
		return p.commit(
			State{Kind: Paused, PausedAt: playedFor, PrevTagConf: p.state.TagConf},
			effects.StopEffect(),
		)

	default:
		return fmt.Errorf("player: unknown state kind %v", p.state.Kind)
	}
}

// HandlePauseContinue applies a PauseContinue command per spec §4.7.3.
func (p *Player) HandlePauseContinue() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	switch p.state.Kind {
	case Idle:
		return nil

	case Paused:
		conf := p.state.PrevTagConf
		return p.commit(
			State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: p.state.PausedAt},
			effects.PlayContinueEffect(p.state.PausedAt),
		)

	case Playing:
		if p.complete() {
			conf := p.state.TagConf
			return p.commit(
				State{Kind: Playing, TagConf: conf, PlayingSince: now, Offset: 0},
				effects.StopEffect(), effects.PlayEffect(conf),
			)
		}
		playedFor := p.state.Offset + p.clock.Now().Sub(p.state.PlayingSince)
		return p.commit(
			State{Kind: Paused, PausedAt: playedFor, PrevTagConf: p.state.TagConf},
			effects.StopEffect(),
		)

	default:
		return fmt.Errorf("player: unknown state kind %v", p.state.Kind)
	}
}

// commit dispatches effs in order and, only if every one succeeds,
// replaces the player's state with next. A failure anywhere in the
// sequence leaves the player's state untouched (§4.7.5).
func (p *Player) commit(next State, effs ...effects.Effect) error {
	if err := p.dispatch(effs...); err != nil {
		return err
	}
	p.state = next
	return nil
}
