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

package fanin

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMergeClosesOnlyAfterAllSourcesClose(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := make(chan int)
	b := make(chan int)
	out := Merge(a, b)

	go func() {
		a <- 1
		close(a)
	}()

	select {
	case v := <-out:
		assert.Equal(t, 1, v)
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for value from a")
	}

	select {
	case _, ok := <-out:
		require.True(t, ok, "merged channel must not close while b is still open")
	case <-time.After(50 * time.Millisecond):
		// Fine: no more values pending, but channel should remain open.
	}

	go func() {
		b <- 2
		close(b)
	}()

	var got []int
	for v := range out {
		got = append(got, v)
	}
	sort.Ints(got)
	assert.Equal(t, []int{2}, got)
}

func TestMergeDoesNotStarveASource(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := make(chan int, 10)
	b := make(chan int, 10)
	for i := 0; i < 10; i++ {
		a <- i
		b <- i + 100
	}
	close(a)
	close(b)

	out := Merge(a, b)
	var got []int
	for v := range out {
		got = append(got, v)
	}
	assert.Len(t, got, 20)
}
