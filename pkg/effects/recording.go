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
	"sync"
)

// RecordingInterpreter records every effect it is asked to interpret,
// for assertion in player and supervisor tests. Its State is whatever
// was last set with SetCurrentlyPlaying; it defaults to not playing.
type RecordingInterpreter struct {
	mu         sync.Mutex
	recorded   []Effect
	playing    bool
	nextErr    error
}

// NewRecordingInterpreter returns a RecordingInterpreter with no
// effects recorded yet.
func NewRecordingInterpreter() *RecordingInterpreter {
	return &RecordingInterpreter{}
}

// WaitUntilReady always succeeds immediately; there is no real sink.
func (r *RecordingInterpreter) WaitUntilReady(_ context.Context) error {
	return nil
}

// Interpret records eff and returns the error queued by FailNext, if
// any (consumed exactly once).
func (r *RecordingInterpreter) Interpret(eff Effect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nextErr != nil {
		err := r.nextErr
		r.nextErr = nil
		return err
	}
	r.recorded = append(r.recorded, eff)
	return nil
}

// State returns the currently-playing flag last set via
// SetCurrentlyPlaying.
func (r *RecordingInterpreter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{CurrentlyPlaying: r.playing}
}

// SetCurrentlyPlaying overrides the snapshot State reports, simulating
// the 0.5 Hz completion poll a real interpreter performs.
func (r *RecordingInterpreter) SetCurrentlyPlaying(playing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = playing
}

// FailNext causes the next call to Interpret to return err instead of
// recording its effect.
func (r *RecordingInterpreter) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextErr = err
}

// Effects returns a copy of every effect recorded so far, in order.
func (r *RecordingInterpreter) Effects() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Effect, len(r.recorded))
	copy(out, r.recorded)
	return out
}
