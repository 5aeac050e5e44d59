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

// Package fanin merges independent input sources (buttons, tag
// presence, and optional extras such as an MQTT trigger source) into
// one ordered stream. Each source runs its own forwarding goroutine,
// so no source can starve another, and the merged stream only closes
// once every source has closed.
package fanin

import (
	"sync"

	"github.com/rustjuke/jukebox-core/pkg/buttons"
	"github.com/rustjuke/jukebox-core/pkg/picc"
)

// Input is the union of everything that can reach the event
// transformer: a button edge, a tag-presence transition, or an
// externally-sourced playback trigger.
type Input struct {
	Button  *buttons.Event
	Tag     *picc.Event
	Trigger *TriggerInput
}

// TriggerInput is a playback request originating from a source other
// than the onboard reader, e.g. a retained MQTT message naming a UID.
type TriggerInput struct {
	UID []byte
}

// Merge fans the given channels into a single channel, closing it
// only once every source channel has closed.
func Merge[T any](sources ...<-chan T) <-chan T {
	out := make(chan T)
	var wg sync.WaitGroup
	wg.Add(len(sources))

	for _, src := range sources {
		src := src
		go func() {
			defer wg.Done()
			for v := range src {
				out <- v
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// MergeInputs adapts button, tag, and trigger channels into one
// <-chan Input stream via Merge.
func MergeInputs(buttonEvents <-chan buttons.Event, tagEvents <-chan picc.Event, triggers <-chan TriggerInput) <-chan Input {
	buttonInputs := make(chan Input)
	go func() {
		defer close(buttonInputs)
		for ev := range buttonEvents {
			ev := ev
			buttonInputs <- Input{Button: &ev}
		}
	}()

	tagInputs := make(chan Input)
	go func() {
		defer close(tagInputs)
		for ev := range tagEvents {
			ev := ev
			tagInputs <- Input{Tag: &ev}
		}
	}()

	triggerInputs := make(chan Input)
	go func() {
		defer close(triggerInputs)
		for ev := range triggers {
			ev := ev
			triggerInputs <- Input{Trigger: &ev}
		}
	}()

	return Merge(buttonInputs, tagInputs, triggerInputs)
}
