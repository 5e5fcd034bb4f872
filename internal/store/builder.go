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

package store

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/mfinelli/vblock/internal/fsdir"
	"github.com/mfinelli/vblock/internal/object"
)

// Builder accumulates an object's payload and publishes it atomically.
//
// The builder owns a temp directory (vblock-temp.<random>) holding the
// staging file. Commit writes the record, fsyncs, renames the staging
// file into its final fan-out location, and removes the temp directory.
// The temp directory is removed on every exit path: commit success,
// commit failure, and Abort.
type Builder struct {
	store *Store
	kind  object.Kind

	temp     *os.Root
	tempName string
	file     *os.File

	// record is the full on-disk record: kind tag then payload.
	record []byte

	done bool
}

func newBuilder(s *Store, kind object.Kind) (*Builder, error) {
	temp, tempName, err := fsdir.TempDir(s.base, tempPrefix)
	if err != nil {
		return nil, err
	}

	file, err := temp.Create(stagingName)
	if err != nil {
		temp.Close()
		_ = s.base.RemoveAll(tempName)
		return nil, err
	}

	return &Builder{
		store:    s,
		kind:     kind,
		temp:     temp,
		tempName: tempName,
		file:     file,
		record:   append(make([]byte, 0, 64), kind.Bytes()...),
	}, nil
}

// Write buffers payload bytes. It never fails before Commit.
func (b *Builder) Write(p []byte) (int, error) {
	b.record = append(b.record, p...)
	return len(p), nil
}

// Append buffers payload bytes and returns the builder for chaining.
func (b *Builder) Append(p []byte) *Builder {
	b.record = append(b.record, p...)
	return b
}

// Kind returns the kind the object will be committed as.
func (b *Builder) Kind() object.Kind { return b.kind }

// Commit hashes the record, writes it durably to the staging file, and
// renames it into place. The rename is atomic, so concurrent writers of
// the same content race harmlessly: both stage independently, both
// rename to the same name, and the bytes are identical either way.
func (b *Builder) Commit() (object.Oid, error) {
	if b.done {
		return object.Oid{}, errors.New("builder already finished")
	}
	defer b.release()

	oid := object.FromData(b.record)

	if _, err := b.file.Write(b.record); err != nil {
		return object.Oid{}, fmt.Errorf("write object %s: %w", oid, err)
	}
	if err := b.file.Sync(); err != nil {
		return object.Oid{}, fmt.Errorf("sync object %s: %w", oid, err)
	}
	if err := b.file.Close(); err != nil {
		b.file = nil
		return object.Oid{}, fmt.Errorf("close object %s: %w", oid, err)
	}
	b.file = nil

	if err := b.store.ensureObjectDir(oid); err != nil {
		return object.Oid{}, fmt.Errorf("create object dir for %s: %w", oid, err)
	}

	dir, name := b.store.objectPath(oid)
	oldpath := path.Join(b.tempName, stagingName)
	newpath := path.Join(objectsDirName, dir, name)
	if err := b.store.base.Rename(oldpath, newpath); err != nil {
		return object.Oid{}, fmt.Errorf("rename object %s into place: %w", oid, err)
	}

	// Best-effort: fsync the target directory so the rename itself is
	// durable, not just the file contents.
	if d, err := b.store.objects.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return oid, nil
}

// Abort discards the builder and removes its temp directory. Aborting a
// finished builder is a no-op.
func (b *Builder) Abort() {
	if b.done {
		return
	}
	b.release()
}

func (b *Builder) release() {
	b.done = true
	if b.file != nil {
		_ = b.file.Close()
		b.file = nil
	}
	if b.temp != nil {
		_ = b.temp.Close()
		b.temp = nil
	}
	_ = b.store.base.RemoveAll(b.tempName)
}
