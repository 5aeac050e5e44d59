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

// Package audiosink is the production audio sink the effect
// interpreter drives: it plays the first URI of a TagConf through
// beep's speaker, resolving relative paths against a configured base
// directory and treating http(s) URIs as streamed downloads.
package audiosink

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog/log"

	"github.com/rustjuke/jukebox-core/pkg/tagmapper"
)

// SampleRate is the fixed output sample rate the speaker is opened
// with; individual streams are resampled to match if needed.
const SampleRate = beep.SampleRate(44100)

// Sink plays one track of a TagConf through the system audio output.
// It is the sole owner of the speaker device.
type Sink struct {
	baseDir string

	mu       sync.Mutex
	ctrl     *beep.Ctrl
	done     chan struct{}
	playing  bool
}

// New opens the speaker device at SampleRate and returns a ready Sink
// resolving relative URIs against baseDir.
func New(baseDir string) (*Sink, error) {
	bufferSize := SampleRate.N(time.Second / 10)
	if err := speaker.Init(SampleRate, bufferSize); err != nil {
		return nil, fmt.Errorf("audiosink: init speaker: %w", err)
	}
	return &Sink{baseDir: baseDir}, nil
}

// PlayFrom streams the first of conf's URIs, seeking it to offset if
// the decoded streamer supports seeking. The remaining URIs are not
// played. Playback proceeds asynchronously; CurrentlyPlaying reflects
// ongoing state.
func (s *Sink) PlayFrom(conf tagmapper.TagConf, offset time.Duration) error {
	s.Stop()
	if len(conf.URIs) == 0 {
		return nil
	}

	streamer, format, err := s.open(conf.URIs[0])
	if err != nil {
		return fmt.Errorf("audiosink: open %s: %w", conf.URIs[0], err)
	}

	resampled := beep.Resample(4, format.SampleRate, SampleRate, streamer)
	if offset > 0 {
		if seeker, ok := streamer.(beep.StreamSeeker); ok {
			_ = seeker.Seek(format.SampleRate.N(offset))
		}
	}

	ctrl := &beep.Ctrl{Streamer: resampled}
	done := make(chan struct{})

	s.mu.Lock()
	s.ctrl = ctrl
	s.done = done
	s.playing = true
	s.mu.Unlock()

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		close(done)
	})))
	return nil
}

// Stop halts any in-progress playback without clearing anything else.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Paused = true
		speaker.Unlock()
	}
	s.playing = false
}

// CurrentlyPlaying reports whether a track is actively streaming.
func (s *Sink) CurrentlyPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Sink) open(uri string) (beep.StreamCloser, beep.Format, error) {
	var reader interface {
		Read([]byte) (int, error)
		Close() error
	}

	switch {
	case strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://"):
		resp, err := http.Get(uri) //nolint:gosec,noctx // URI comes from an operator-controlled tag mapping file
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("fetch %s: %w", uri, err)
		}
		reader = resp.Body

	default:
		path := uri
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.baseDir, path)
		}
		f, err := os.Open(path) //nolint:gosec // path is resolved against an operator-controlled base directory
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("open %s: %w", path, err)
		}
		reader = f
	}

	if strings.HasSuffix(strings.ToLower(uri), ".mp3") {
		return mp3.Decode(reader)
	}
	log.Debug().Str("uri", uri).Msg("audiosink: defaulting to wav decoder")
	return wav.Decode(reader)
}
