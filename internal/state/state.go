/*
 * vblock: content-addressed block store
 * Copyright © 2026 Mario Finelli
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package state remembers the stores this user has pointed vblock at.
//
// The split depth is recorded per store because it is a property of the
// on-disk layout, not of the invocation: reopening a store with a
// different depth would silently orphan every object in it. Once a root
// is registered here, later commands resolve its depth from state and
// ignore the configured default.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Store is one registered store root.
type Store struct {
	Root       string `json:"root"`
	SplitDepth int    `json:"split_depth,omitempty"`
	AddedAt    string `json:"added_at,omitempty"`
}

// State is the persisted per-user state: every store vblock has been
// told about, and which of them is active.
type State struct {
	Active    string  `json:"active,omitempty"`
	Stores    []Store `json:"stores,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// ActiveStore returns the registered entry for the active root, if any.
func (s State) ActiveStore() (Store, bool) {
	if s.Active == "" {
		return Store{}, false
	}
	return s.Lookup(s.Active)
}

// Lookup finds the registered entry for a root.
func (s State) Lookup(root string) (Store, bool) {
	for _, st := range s.Stores {
		if st.Root == root {
			return st, true
		}
	}
	return Store{}, false
}

// Register records a store root with its split depth. Re-registering
// an existing root updates its depth in place. Registration does not
// change which store is active.
func (s *State) Register(root string, splitDepth int) {
	i := slices.IndexFunc(s.Stores, func(st Store) bool { return st.Root == root })
	if i >= 0 {
		s.Stores[i].SplitDepth = splitDepth
		return
	}

	s.Stores = append(s.Stores, Store{
		Root:       root,
		SplitDepth: splitDepth,
		AddedAt:    time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

// SetActive makes a registered root the active store.
func (s *State) SetActive(root string) {
	s.Active = root
}

// ClearActive forgets which store is active but keeps the registry, so
// a later set-active still knows the store's depth.
func (s *State) ClearActive() {
	s.Active = ""
}

func statePath() (string, error) {
	return xdg.StateFile(filepath.Join("vblock", "stores.json"))
}

// Load reads the persisted state. A state file that never existed is an
// empty state, not an error.
func Load() (State, error) {
	p, err := statePath()
	if err != nil {
		return State{}, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read %s: %w", p, err)
	}

	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, fmt.Errorf("parse %s: %w", p, err)
	}
	return s, nil
}

// Save persists the state with the same discipline the object store
// uses for records: staged write, fsync, then atomic rename.
func Save(s State) error {
	p, err := statePath()
	if err != nil {
		return err
	}

	s.UpdatedAt = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	b = append(b, '\n')

	f, err := os.CreateTemp(filepath.Dir(p), ".stores-*")
	if err != nil {
		return fmt.Errorf("stage state: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(b); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s -> %s: %w", tmp, p, err)
	}

	return nil
}
