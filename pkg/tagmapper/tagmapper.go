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

// Package tagmapper resolves a tag UID to its configured playback
// URIs from a YAML file. A reload swaps the whole mapping atomically;
// readers always see a consistent snapshot.
package tagmapper

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustjuke/jukebox-core/pkg/helpers/syncutil"
)

// TagConf is the resolved playback configuration for a known UID.
type TagConf struct {
	URIs []string `yaml:"files"`
}

// Equal reports whether two TagConfs name the same ordered URI list.
func (c TagConf) Equal(other TagConf) bool {
	if len(c.URIs) != len(other.URIs) {
		return false
	}
	for i, u := range c.URIs {
		if u != other.URIs[i] {
			return false
		}
	}
	return true
}

// fileFormat mirrors the on-disk YAML shape:
//
//	mappings:
//	  "<uid-hex>": { files: ["a.ogg", ...] }
type fileFormat struct {
	Mappings map[string]TagConf `yaml:"mappings"`
}

// Mapper holds the current UID -> TagConf mapping, reloadable at
// runtime from the backing file.
type Mapper struct {
	path string

	mu       syncutil.RWMutex
	mappings map[string]TagConf
}

// New loads path and returns a ready Mapper.
func New(path string) (*Mapper, error) {
	m := &Mapper{path: path}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads the backing YAML file and atomically replaces the
// in-memory mapping.
func (m *Mapper) Reload() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("tagmapper: read %s: %w", m.path, err)
	}

	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("tagmapper: parse %s: %w", m.path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings = parsed.Mappings
	return nil
}

// Lookup returns the TagConf for uid and whether it was found. uid is
// matched against the lowercase hex encoding used in the mapping file.
func (m *Mapper) Lookup(uid []byte) (TagConf, bool) {
	key := hex.EncodeToString(uid)

	m.mu.RLock()
	defer m.mu.RUnlock()
	conf, ok := m.mappings[key]
	return conf, ok
}

// Resolve returns the TagConf for uid, or an empty TagConf if the UID
// is unmapped. A tag present but unmapped still occupies the Playing
// state; it simply plays nothing.
func (m *Mapper) Resolve(uid []byte) TagConf {
	conf, _ := m.Lookup(uid)
	return conf
}
