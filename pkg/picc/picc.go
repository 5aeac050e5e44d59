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

// Package picc turns raw, noisy MFRC522 tag-presence polling into a
// stable sequence of Start/Stop events via a deflicker counter. It
// owns the reader transport exclusively; nothing else may poll it
// while the loop is running.
package picc

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// PollInterval is how often the loop polls the transport for a tag.
const PollInterval = 200 * time.Millisecond

// Deflicker is the number of consecutive identical polls required,
// after the poll that first reports a new UID (or the first empty
// poll after a UID), before a presence or absence event is emitted.
const Deflicker = 3

// ErrNoTag is returned by Transport.DetectTag when no card is present
// on this poll. It is not logged as an error; it is the expected,
// steady-state "nothing here" result.
var ErrNoTag = errors.New("picc: no tag present")

// Tag is a detected PICC's identity. Its lifetime is bounded by the
// time the card sits in the reader's field; the loop holds no
// ownership over it beyond a single event.
type Tag struct {
	UID []byte
}

// Transport is the hardware collaborator the loop polls. A nil, nil
// return is never valid: implementations return (*Tag, nil) for a
// present card or (nil, ErrNoTag) for an absent one.
type Transport interface {
	DetectTag(ctx context.Context) (*Tag, error)
}

// Event is a Start (tag present, UID set) or Stop (tag removed, UID
// nil) notification emitted by the loop.
type Event struct {
	Tag *Tag
}

// Loop polls a Transport and emits debounced Start/Stop events.
type Loop struct {
	transport Transport
	events    chan Event

	lastUID     []byte
	lastPlaying []byte
	deflicker   int
}

// New returns a Loop over transport. events should be read by the
// caller for as long as Run is executing; Run closes it on return.
func New(transport Transport, eventBuf int) (*Loop, <-chan Event) {
	events := make(chan Event, eventBuf)
	return &Loop{transport: transport, events: events}, events
}

// Run polls the transport every PollInterval until ctx is cancelled,
// emitting Start/Stop events per the deflicker state machine. It
// closes the event channel before returning.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.events)

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.poll(ctx)
		}
	}
}

func (l *Loop) poll(ctx context.Context) {
	tag, err := l.transport.DetectTag(ctx)
	switch {
	case err != nil && !errors.Is(err, ErrNoTag):
		log.Error().Err(err).Msg("picc: transport error, retrying next tick")
		return
	case err != nil:
		l.onAbsent()
	default:
		l.onPresent(tag)
	}
}

func (l *Loop) onAbsent() {
	if l.lastUID != nil {
		l.lastUID = nil
		l.deflicker = 0
		return
	}

	if l.deflicker < Deflicker {
		l.deflicker++
	}
	if l.deflicker == Deflicker && l.lastPlaying != nil {
		l.emit(Event{Tag: nil})
		l.lastPlaying = nil
	}
}

func (l *Loop) onPresent(tag *Tag) {
	if !bytes.Equal(l.lastUID, tag.UID) {
		l.lastUID = tag.UID
		l.deflicker = 0
		return
	}

	prev := l.deflicker
	if l.deflicker < Deflicker {
		l.deflicker++
	}
	if !(prev == Deflicker-1 && l.deflicker == Deflicker) {
		return
	}

	switch {
	case l.lastPlaying == nil:
		l.emit(Event{Tag: tag})
		l.lastPlaying = tag.UID
	case bytes.Equal(l.lastPlaying, tag.UID):
		// Already the stable, currently-playing tag: no-op.
	default:
		l.emit(Event{Tag: nil})
		l.emit(Event{Tag: tag})
		l.lastPlaying = tag.UID
	}
}

func (l *Loop) emit(ev Event) {
	l.events <- ev
}
