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

package blinker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type fakeLED struct {
	mu  sync.Mutex
	log []string
}

func (f *fakeLED) On() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "on")
	return nil
}

func (f *fakeLED) Off() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "off")
	return nil
}

func (f *fakeLED) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.log))
	copy(out, f.log)
	return out
}

func TestRunManyExecutesInOrder(t *testing.T) {
	t.Parallel()

	led := &fakeLED{}
	b := New(led)
	b.Run(Many(On(5*time.Millisecond), Off(5*time.Millisecond), On(5*time.Millisecond)))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"on", "off", "on"}, led.snapshot())
}

func TestRunCancelsPreviousProgram(t *testing.T) {
	t.Parallel()

	led := &fakeLED{}
	b := New(led)
	b.Run(Loop(Many(On(5*time.Millisecond), Off(5*time.Millisecond))))
	time.Sleep(20 * time.Millisecond)

	b.Run(On(5 * time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	before := len(led.snapshot())
	time.Sleep(30 * time.Millisecond)
	after := len(led.snapshot())

	assert.Equal(t, before, after, "the loop must stop producing events once replaced")
}

func TestStopCancelsWithoutStartingNewProgram(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	led := &fakeLED{}
	b := New(led)
	b.Run(Loop(Many(On(2*time.Millisecond), Off(2*time.Millisecond))))
	time.Sleep(10 * time.Millisecond)

	b.Stop()
	before := len(led.snapshot())
	time.Sleep(20 * time.Millisecond)
	after := len(led.snapshot())

	assert.Equal(t, before, after)
}
