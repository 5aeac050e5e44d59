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

package buttons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLineWatcherRejectsEventsWithinDebounceWindow(t *testing.T) {
	t.Parallel()

	started := time.Now().Add(-StartupShutdownGuard - time.Second)
	w := newLineWatcher(ButtonVolumeUp, started)

	base := time.Now()
	assert.True(t, w.accept(base))
	assert.False(t, w.accept(base.Add(100*time.Millisecond)))
	assert.True(t, w.accept(base.Add(DebounceWindow+time.Millisecond)))
}

func TestShutdownDroppedDuringStartupGuard(t *testing.T) {
	t.Parallel()

	started := time.Now()
	w := newLineWatcher(ButtonShutdown, started)

	assert.False(t, w.accept(started.Add(time.Second)))
}

func TestShutdownAcceptedAfterStartupGuardElapses(t *testing.T) {
	t.Parallel()

	started := time.Now().Add(-StartupShutdownGuard - time.Second)
	w := newLineWatcher(ButtonShutdown, started)

	assert.True(t, w.accept(time.Now()))
}

func TestShutdownPermanentlyDisabledAfterExcessiveDrops(t *testing.T) {
	t.Parallel()

	started := time.Now()
	w := newLineWatcher(ButtonShutdown, started)

	now := started
	for i := 0; i < MaxShutdownDropsDuringGuard+1; i++ {
		now = now.Add(DebounceWindow + time.Millisecond)
		assert.False(t, w.accept(now))
	}

	// Even once the guard window has long passed, shutdown stays disabled.
	assert.False(t, w.accept(started.Add(StartupShutdownGuard*10)))
}
