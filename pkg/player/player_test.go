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

package player

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustjuke/jukebox-core/pkg/effects"
	"github.com/rustjuke/jukebox-core/pkg/picc"
	"github.com/rustjuke/jukebox-core/pkg/tagmapper"
)

type fakeMapper map[string]tagmapper.TagConf

func (m fakeMapper) Resolve(uid []byte) tagmapper.TagConf {
	return m[string(uid)]
}

func tagA() *picc.Tag  { return &picc.Tag{UID: []byte("A")} }
func tagB() *picc.Tag  { return &picc.Tag{UID: []byte("B")} }
func confA() tagmapper.TagConf { return tagmapper.TagConf{URIs: []string{"a.ogg"}} }
func confB() tagmapper.TagConf { return tagmapper.TagConf{URIs: []string{"b.ogg"}} }

func newTestPlayer(triggerOnly bool) (*Player, *effects.RecordingInterpreter) {
	p, interp, _ := newTestPlayerWithClock(triggerOnly)
	return p, interp
}

func newTestPlayerWithClock(triggerOnly bool) (*Player, *effects.RecordingInterpreter, *clockwork.FakeClock) {
	interp := effects.NewRecordingInterpreter()
	mapper := fakeMapper{"A": confA(), "B": confB()}
	clock := clockwork.NewFakeClock()
	p := New(interp, mapper, Config{TriggerOnlyMode: triggerOnly}, clock)
	return p, interp, clock
}

// S1.
func TestStartFromIdlePlaysAndTransitionsToPlaying(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(true)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))

	assert.Equal(t, []effects.Effect{effects.PlayEffect(confA())}, interp.Effects())
	assert.Equal(t, Playing, p.State().Kind)
	assert.True(t, confA().Equal(p.State().TagConf))
	assert.Equal(t, time.Duration(0), p.State().Offset)
}

// S2 / P5: same-UID repeat while Playing and not complete is idempotent.
func TestRepeatedStartSameTagWhilePlayingIsIdempotent(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(true)
	interp.SetCurrentlyPlaying(true) // not complete
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))
	before := p.State()

	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))

	assert.Len(t, interp.Effects(), 1, "no Stop/Play should be emitted on idempotent re-tap")
	assert.True(t, before.Equal(p.State()))
}

// S3: different tag while Playing emits Stop, Play.
func TestStartDifferentTagWhilePlayingEmitsStopThenPlay(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(true)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagB()}))

	assert.Equal(t, []effects.Effect{
		effects.PlayEffect(confA()),
		effects.StopEffect(),
		effects.PlayEffect(confB()),
	}, interp.Effects())
	assert.True(t, confB().Equal(p.State().TagConf))
}

// S4: same tag, but the track finished (complete) -> restart.
func TestStartSameTagAfterCompleteRestartsPlayback(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(true)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))
	interp.SetCurrentlyPlaying(false) // complete = true

	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))

	assert.Equal(t, []effects.Effect{
		effects.PlayEffect(confA()),
		effects.StopEffect(),
		effects.PlayEffect(confA()),
	}, interp.Effects())
}

// S5: trigger_only_mode=false, stop then pause/continue round trip.
func TestStopThenPauseContinueInTraditionalMode(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(false)
	interp.SetCurrentlyPlaying(true) // not complete
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))

	require.NoError(t, p.HandlePlayback(PlaybackRequest{Stop: true}))
	assert.Equal(t, Paused, p.State().Kind)

	require.NoError(t, p.HandlePauseContinue())
	assert.Equal(t, Playing, p.State().Kind)

	gotKinds := make([]effects.Kind, 0)
	for _, e := range interp.Effects() {
		gotKinds = append(gotKinds, e.Kind)
	}
	assert.Equal(t, []effects.Kind{effects.Play, effects.Stop, effects.PlayContinue}, gotKinds)
}

// P6: trigger_only_mode=true, Stop never leaves Playing.
func TestTriggerOnlyModeIgnoresStopWhilePlaying(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(true)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))

	require.NoError(t, p.HandlePlayback(PlaybackRequest{Stop: true}))

	assert.Equal(t, Playing, p.State().Kind)
	assert.Len(t, interp.Effects(), 1, "Stop request must not emit any effect in trigger-only mode")
}

// P4: a failed effect dispatch leaves the observable state unchanged.
func TestFailedEffectDispatchRevertsObservableState(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(true)
	before := p.State()

	interp.FailNext(errors.New("sink unavailable"))
	err := p.HandlePlayback(PlaybackRequest{Start: tagA()})

	require.Error(t, err)
	assert.True(t, before.Equal(p.State()))
}

// P1: Idle can only become Playing via a Playback(Start) command.
func TestPauseContinueFromIdleIsNoop(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(true)
	require.NoError(t, p.HandlePauseContinue())

	assert.Equal(t, Idle, p.State().Kind)
	assert.Empty(t, interp.Effects())
}

// P2: Paused state implies no background audio, i.e. a Stop effect
// was the last thing dispatched en route to Paused.
func TestPausedStateFollowsAStopEffect(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(false)
	interp.SetCurrentlyPlaying(true)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Stop: true}))

	require.Equal(t, Paused, p.State().Kind)
	recorded := interp.Effects()
	require.NotEmpty(t, recorded)
	assert.Equal(t, effects.Stop, recorded[len(recorded)-1].Kind)
}

// P3: played position accrues as offset + elapsed since playing_since.
func TestPlayedPositionAccumulatesAcrossPause(t *testing.T) {
	t.Parallel()

	p, interp, clock := newTestPlayerWithClock(false)
	interp.SetCurrentlyPlaying(true)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))

	clock.Advance(5 * time.Second)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Stop: true}))

	assert.Equal(t, 5*time.Second, p.State().PausedAt)
}

func TestDifferentTagWhilePausedStopsAndPlaysNewTag(t *testing.T) {
	t.Parallel()

	p, interp := newTestPlayer(false)
	interp.SetCurrentlyPlaying(true)
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagA()}))
	require.NoError(t, p.HandlePlayback(PlaybackRequest{Stop: true}))
	require.Equal(t, Paused, p.State().Kind)

	require.NoError(t, p.HandlePlayback(PlaybackRequest{Start: tagB()}))

	assert.Equal(t, Playing, p.State().Kind)
	assert.True(t, confB().Equal(p.State().TagConf))
	assert.Equal(t, time.Duration(0), p.State().Offset)
	lastTwo := interp.Effects()[len(interp.Effects())-2:]
	assert.Equal(t, []effects.Effect{effects.StopEffect(), effects.PlayEffect(confB())}, lastTwo)
}
