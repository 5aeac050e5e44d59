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

// Package transformer decodes merged button/tag/trigger input into
// the logical command stream the player consumes, detecting the
// volume-up+volume-down chord along the way. It is stateless about
// the lock/unlock toggle itself; that belongs one layer up, in the
// command dispatch loop.
package transformer

import (
	"github.com/rustjuke/jukebox-core/pkg/buttons"
	"github.com/rustjuke/jukebox-core/pkg/fanin"
	"github.com/rustjuke/jukebox-core/pkg/picc"
)

// CommandKind names a logical command emitted by the transformer.
type CommandKind int

const (
	// CommandShutdown requests a clean system shutdown.
	CommandShutdown CommandKind = iota
	// CommandVolumeUp requests a volume increase.
	CommandVolumeUp
	// CommandVolumeDown requests a volume decrease.
	CommandVolumeDown
	// CommandPauseContinue requests toggling playback pause/resume.
	CommandPauseContinue
	// CommandLockPlayer is emitted once per detected volume chord.
	CommandLockPlayer
	// CommandPlayback carries a tag-presence or removal request.
	CommandPlayback
)

// PlaybackKind distinguishes a tag insertion from a removal.
type PlaybackKind int

const (
	// PlaybackStart carries the tag that was presented.
	PlaybackStart PlaybackKind = iota
	// PlaybackStop indicates the tag was removed.
	PlaybackStop
)

// Command is a single logical instruction for the player or the
// surrounding dispatch loop.
type Command struct {
	Kind     CommandKind
	Playback PlaybackKind
	Tag      *picc.Tag
}

// Transformer holds the two down-flags and two swallow-release flags
// needed to detect the volume chord. It is not safe for concurrent
// use; one transformer is owned by one dispatch loop.
type Transformer struct {
	volUpDown       bool
	volDownDown     bool
	swallowUpRel    bool
	swallowDownRel  bool
}

// New returns a Transformer with no buttons currently held.
func New() *Transformer {
	return &Transformer{}
}

// Transform consumes one merged Input and returns zero or more
// logical Commands, in emission order.
func (t *Transformer) Transform(in fanin.Input) []Command {
	switch {
	case in.Button != nil:
		return t.transformButton(*in.Button)
	case in.Tag != nil:
		return t.transformTag(*in.Tag)
	case in.Trigger != nil:
		return []Command{{
			Kind:     CommandPlayback,
			Playback: PlaybackStart,
			Tag:      &picc.Tag{UID: in.Trigger.UID},
		}}
	default:
		return nil
	}
}

func (t *Transformer) transformTag(ev picc.Event) []Command {
	if ev.Tag == nil {
		return []Command{{Kind: CommandPlayback, Playback: PlaybackStop}}
	}
	return []Command{{Kind: CommandPlayback, Playback: PlaybackStart, Tag: ev.Tag}}
}

func (t *Transformer) transformButton(ev buttons.Event) []Command {
	switch ev.Button {
	case buttons.ButtonShutdown:
		if ev.Edge == buttons.Press {
			return []Command{{Kind: CommandShutdown}}
		}
		return nil

	case buttons.ButtonPauseContinue:
		if ev.Edge == buttons.Press {
			return []Command{{Kind: CommandPauseContinue}}
		}
		return nil

	case buttons.ButtonVolumeUp:
		return t.volumeEdge(ev.Edge, true)

	case buttons.ButtonVolumeDown:
		return t.volumeEdge(ev.Edge, false)

	default:
		return nil
	}
}

// volumeEdge implements both VolumeUp and VolumeDown press/release
// handling; isUp selects which button this edge belongs to.
func (t *Transformer) volumeEdge(edge buttons.Edge, isUp bool) []Command {
	if edge == buttons.Press {
		otherAlreadyDown := t.volDownDown
		if isUp {
			t.volUpDown = true
		} else {
			otherAlreadyDown = t.volUpDown
			t.volDownDown = true
		}
		if otherAlreadyDown {
			t.swallowUpRel = true
			t.swallowDownRel = true
			return []Command{{Kind: CommandLockPlayer}}
		}
		return nil
	}

	// Release.
	if isUp {
		t.volUpDown = false
		if t.swallowUpRel {
			t.swallowUpRel = false
			return nil
		}
		return []Command{{Kind: CommandVolumeUp}}
	}

	t.volDownDown = false
	if t.swallowDownRel {
		t.swallowDownRel = false
		return nil
	}
	return []Command{{Kind: CommandVolumeDown}}
}
