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

package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustjuke/jukebox-core/pkg/buttons"
	"github.com/rustjuke/jukebox-core/pkg/fanin"
)

func buttonInput(button buttons.Button, edge buttons.Edge) fanin.Input {
	ev := buttons.Event{Button: button, Edge: edge}
	return fanin.Input{Button: &ev}
}

// TestVolumeChordEmitsExactlyOneLockAndSwallowsReleases is S6/P10.
func TestVolumeChordEmitsExactlyOneLockAndSwallowsReleases(t *testing.T) {
	t.Parallel()

	tr := New()
	var emitted []Command

	emitted = append(emitted, tr.Transform(buttonInput(buttons.ButtonVolumeDown, buttons.Press))...)
	emitted = append(emitted, tr.Transform(buttonInput(buttons.ButtonVolumeUp, buttons.Press))...)
	emitted = append(emitted, tr.Transform(buttonInput(buttons.ButtonVolumeDown, buttons.Release))...)
	emitted = append(emitted, tr.Transform(buttonInput(buttons.ButtonVolumeUp, buttons.Release))...)

	require.Len(t, emitted, 1)
	assert.Equal(t, CommandLockPlayer, emitted[0].Kind)
}

func TestVolumeUpAloneEmitsVolumeUpOnRelease(t *testing.T) {
	t.Parallel()

	tr := New()
	assert.Empty(t, tr.Transform(buttonInput(buttons.ButtonVolumeUp, buttons.Press)))

	got := tr.Transform(buttonInput(buttons.ButtonVolumeUp, buttons.Release))
	require.Len(t, got, 1)
	assert.Equal(t, CommandVolumeUp, got[0].Kind)
}

func TestShutdownPressEmitsShutdownReleaseEmitsNothing(t *testing.T) {
	t.Parallel()

	tr := New()
	got := tr.Transform(buttonInput(buttons.ButtonShutdown, buttons.Press))
	require.Len(t, got, 1)
	assert.Equal(t, CommandShutdown, got[0].Kind)

	assert.Empty(t, tr.Transform(buttonInput(buttons.ButtonShutdown, buttons.Release)))
}

func TestSecondChordAfterFirstStillEmitsExactlyOneLock(t *testing.T) {
	t.Parallel()

	tr := New()
	press := func(b buttons.Button) {
		tr.Transform(buttonInput(b, buttons.Press))
	}
	release := func(b buttons.Button) {
		tr.Transform(buttonInput(b, buttons.Release))
	}

	press(buttons.ButtonVolumeDown)
	press(buttons.ButtonVolumeUp)
	release(buttons.ButtonVolumeDown)
	release(buttons.ButtonVolumeUp)

	press(buttons.ButtonVolumeDown)
	got := tr.Transform(buttonInput(buttons.ButtonVolumeUp, buttons.Press))
	require.Len(t, got, 1)
	assert.Equal(t, CommandLockPlayer, got[0].Kind)
	release(buttons.ButtonVolumeDown)
	release(buttons.ButtonVolumeUp)
}
