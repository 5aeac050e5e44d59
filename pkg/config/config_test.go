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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jukeboxd.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAppliesDefaultsForUnsetKeys(t *testing.T) {
	t.Parallel()

	inst, err := Load(writeTempConfig(t, `audio_base_directory = "/srv/audio"`))
	require.NoError(t, err)

	snap := inst.Snapshot()
	assert.True(t, snap.TriggerOnlyMode)
	assert.Equal(t, "sudo shutdown -h now", snap.ShutdownCommand)
	assert.Equal(t, "/srv/audio", snap.AudioBaseDirectory)
}

func TestReloadReplacesSnapshotAtomically(t *testing.T) {
	t.Parallel()

	path := writeTempConfig(t, `trigger_only_mode = true`)
	inst, err := Load(path)
	require.NoError(t, err)
	require.True(t, inst.Snapshot().TriggerOnlyMode)

	require.NoError(t, os.WriteFile(path, []byte(`trigger_only_mode = false`), 0o600))
	require.NoError(t, inst.Reload())

	assert.False(t, inst.Snapshot().TriggerOnlyMode)
}
