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

// Package buttons turns raw GPIO edge events into debounced,
// boot-guarded logical button events. One goroutine runs per
// configured line; lines are otherwise independent and provide no
// ordering guarantee relative to each other.
package buttons

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warthog618/go-gpiocdev"
)

// DebounceWindow is the minimum time between two accepted events on
// the same line.
const DebounceWindow = 500 * time.Millisecond

// StartupShutdownGuard is how long after process start a Shutdown
// button event is dropped, to survive boot-time GPIO noise.
const StartupShutdownGuard = 10 * time.Second

// MaxShutdownDropsDuringGuard is the number of guarded shutdown drops
// tolerated before shutdown is permanently disabled for this run.
const MaxShutdownDropsDuringGuard = 10

// Button names a logical button independent of which GPIO line it is
// wired to.
type Button int

const (
	// ButtonShutdown requests a clean system shutdown.
	ButtonShutdown Button = iota
	// ButtonVolumeUp requests a volume increase.
	ButtonVolumeUp
	// ButtonVolumeDown requests a volume decrease.
	ButtonVolumeDown
	// ButtonPauseContinue requests toggling playback pause/resume.
	ButtonPauseContinue
)

// Edge is whether a button event is a press or a release.
type Edge int

const (
	// Press marks the falling edge of a button line going active.
	Press Edge = iota
	// Release marks the line returning to its resting state.
	Release
)

// Event is a single debounced button transition.
type Event struct {
	Button Button
	Edge   Edge
}

// Line associates a GPIO chip offset with the logical button it drives.
type Line struct {
	Chip   string
	Offset int
	Button Button
}

// lineWatcher tracks debounce and shutdown-guard state for one line.
// It is not safe for concurrent use; each line owns exactly one.
type lineWatcher struct {
	button         Button
	lastAccepted   time.Time
	haveLast       bool
	startedAt      time.Time
	shutdownDrops  int
	shutdownKilled bool
}

func newLineWatcher(button Button, startedAt time.Time) *lineWatcher {
	return &lineWatcher{button: button, startedAt: startedAt}
}

// accept reports whether the edge at now should be published, and
// updates internal debounce/guard state as a side effect.
func (w *lineWatcher) accept(now time.Time) bool {
	if w.haveLast && now.Sub(w.lastAccepted) < DebounceWindow {
		return false
	}
	w.lastAccepted = now
	w.haveLast = true

	if w.button == ButtonShutdown && !w.shutdownKilled {
		if now.Sub(w.startedAt) < StartupShutdownGuard {
			w.shutdownDrops++
			if w.shutdownDrops > MaxShutdownDropsDuringGuard {
				w.shutdownKilled = true
				log.Warn().Msg("buttons: shutdown permanently disabled after repeated boot-time drops")
			}
			return false
		}
	}
	if w.button == ButtonShutdown && w.shutdownKilled {
		return false
	}
	return true
}

// Source requests both-edge watches on every configured Line and
// publishes debounced press (falling edge) and release (rising edge)
// events on a shared channel.
type Source struct {
	chips   map[string]*gpiocdev.Chip
	lines   []Line
	events  chan Event
	started time.Time
}

// New opens the GPIO chips referenced by lines and returns a Source
// ready to Run. Callers provide events' buffer size (sized for the
// known receiver, per the fan-in stage).
func New(lines []Line, eventBuf int) (*Source, <-chan Event, error) {
	chips := make(map[string]*gpiocdev.Chip)
	for _, l := range lines {
		if _, ok := chips[l.Chip]; ok {
			continue
		}
		chip, err := gpiocdev.NewChip(l.Chip)
		if err != nil {
			for _, c := range chips {
				_ = c.Close()
			}
			return nil, nil, err
		}
		chips[l.Chip] = chip
	}

	events := make(chan Event, eventBuf)
	return &Source{chips: chips, lines: lines, events: events, started: time.Now()}, events, nil
}

// Run requests edge watches on every line and blocks processing edges
// until ctx is cancelled, then closes every requested line and the
// event channel.
func (s *Source) Run(ctx context.Context) {
	defer close(s.events)

	var wg sync.WaitGroup
	for _, l := range s.lines {
		l := l
		watcher := newLineWatcher(l.Button, s.started)
		chip := s.chips[l.Chip]

		edgeCh := make(chan gpiocdev.LineEvent, 8)
		req, err := chip.RequestLine(l.Offset,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				select {
				case edgeCh <- evt:
				default:
					log.Warn().Str("chip", l.Chip).Int("offset", l.Offset).Msg("buttons: edge dropped, handler busy")
				}
			}),
		)
		if err != nil {
			log.Error().Err(err).Str("chip", l.Chip).Int("offset", l.Offset).Msg("buttons: failed to request line")
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { _ = req.Close() }()
			s.watchLine(ctx, watcher, edgeCh)
		}()
	}

	wg.Wait()
	for _, c := range s.chips {
		_ = c.Close()
	}
}

func (s *Source) watchLine(ctx context.Context, watcher *lineWatcher, edgeCh <-chan gpiocdev.LineEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-edgeCh:
			if !ok {
				return
			}
			if !watcher.accept(time.Now()) {
				continue
			}
			edge := Release
			if evt.Type == gpiocdev.LineEventFallingEdge {
				edge = Press
			}
			select {
			case s.events <- Event{Button: watcher.button, Edge: edge}:
			case <-ctx.Done():
				return
			}
		}
	}
}
