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

// Package store implements the on-disk content-addressed object store.
//
// Objects live under <root>/objects/ fanned out by the leading hex digits
// of their oid: with the default split depth of 4 an object whose oid
// starts with "5e73" lands at objects/5/e/7/3/<remaining 124 hex chars>.
// Writes stage into a per-writer temp directory and become visible in a
// single atomic rename; reads verify the hash of everything they load.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/mfinelli/vblock/internal/chunk"
	"github.com/mfinelli/vblock/internal/fsdir"
	"github.com/mfinelli/vblock/internal/object"
)

const (
	objectsDirName = "objects"
	tempPrefix     = "vblock-temp."
	stagingName    = "new-object"

	// DefaultSplitDepth is the number of single-hex-digit directory
	// levels partitioning the object keyspace: 16^4 leaf directories.
	DefaultSplitDepth = 4

	maxSplitDepth = 16
)

// Store is a content-addressed object store over a base directory. It
// holds only directory handles; all mutation goes through handle-relative
// syscalls, so any number of Stores (in any number of processes) may
// point at the same base concurrently.
type Store struct {
	base    *os.Root
	objects *os.Root
	depth   int

	// newSplitter produces the content-defined splitter used by PutBlob.
	newSplitter func() chunk.Splitter
}

// Open opens a store over an existing base directory with the default
// split depth, creating objects/ if needed.
func Open(dir string) (*Store, error) {
	return OpenSplitDepth(dir, DefaultSplitDepth)
}

// OpenSplitDepth opens a store with an explicit split depth. The depth is
// fixed for the life of a store on disk: reopening with a different depth
// would make existing objects unreachable.
func OpenSplitDepth(dir string, depth int) (*Store, error) {
	if depth < 1 || depth > maxSplitDepth {
		return nil, fmt.Errorf("split depth %d out of range [1,%d]",
			depth, maxSplitDepth)
	}

	base, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}

	objects, err := fsdir.OpenOrCreate(base, objectsDirName)
	if err != nil {
		base.Close()
		return nil, err
	}

	return &Store{
		base:        base,
		objects:     objects,
		depth:       depth,
		newSplitter: func() chunk.Splitter { return chunk.NewBup() },
	}, nil
}

// Init creates the base directory if it does not exist and opens a store
// over it.
func Init(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, err
	}
	return Open(dir)
}

// Close releases the store's directory handles.
func (s *Store) Close() error {
	oerr := s.objects.Close()
	berr := s.base.Close()
	if oerr != nil {
		return oerr
	}
	return berr
}

// SplitDepth returns the number of fan-out directory levels.
func (s *Store) SplitDepth() int { return s.depth }

// objectPath splits an oid's hex into the fan-out directory path (one
// hex digit per level) and the leaf filename holding the rest.
func (s *Store) objectPath(oid object.Oid) (dir, name string) {
	h := oid.Hex()
	parts := make([]string, s.depth)
	for i := range s.depth {
		parts[i] = h[i : i+1]
	}
	return path.Join(parts...), h[s.depth:]
}

// ensureObjectDir creates the fan-out directory chain for oid, level by
// level, tolerating concurrent creators at every step.
func (s *Store) ensureObjectDir(oid object.Oid) error {
	h := oid.Hex()
	d := s.objects
	for i := range s.depth {
		next, err := fsdir.OpenOrCreate(d, h[i:i+1])
		if d != s.objects {
			d.Close()
		}
		if err != nil {
			return err
		}
		d = next
	}
	if d != s.objects {
		d.Close()
	}
	return nil
}

// Put starts a new object of the given kind. The returned builder stages
// into its own temp directory and publishes nothing until Commit.
func (s *Store) Put(kind object.Kind) (*Builder, error) {
	return newBuilder(s, kind)
}

// PutObject stores data as a single object of the given kind and returns
// its oid.
func (s *Store) PutObject(kind object.Kind, data []byte) (object.Oid, error) {
	b, err := s.Put(kind)
	if err != nil {
		return object.Oid{}, err
	}
	return b.Append(data).Commit()
}

// Get loads the object identified by oid. Absence is not an error: a nil
// object with a nil error means not found. The record's hash is verified
// against the oid on every load, so a successful Get implies the payload
// is exactly what was committed.
func (s *Store) Get(oid object.Oid) (*Object, error) {
	dir, name := s.objectPath(oid)

	f, err := s.objects.Open(path.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	record, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	if calc := object.FromData(record); calc != oid {
		return nil, fmt.Errorf("%w: object %s is corrupt, calculated oid %s",
			object.ErrInvalidData, oid, calc)
	}

	kind, err := object.KindFromBytes(record)
	if err != nil {
		return nil, err
	}

	return &Object{
		oid:     oid,
		kind:    kind,
		payload: record[object.KindLen:],
	}, nil
}

// GetObject loads an object's payload, skipping the incremental reader
// interface. nil payload with nil error means not found; note that an
// empty object also has a nil-length payload, so callers that need to
// distinguish should use Get.
func (s *Store) GetObject(oid object.Oid) ([]byte, error) {
	o, err := s.Get(oid)
	if err != nil || o == nil {
		return nil, err
	}
	return o.Payload(), nil
}
