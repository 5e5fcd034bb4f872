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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfinelli/vblock/internal/object"
)

func TestObjectsEmptyStore(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	count := 0
	for _, err := range s.Objects() {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)
}

func TestObjectsYieldsEachOnce(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	want := make(map[object.Oid][]byte)
	for i := range 50 {
		payload := fmt.Appendf(nil, "object %d", i)
		oid, err := s.PutObject(object.KindPiece, payload)
		require.NoError(t, err)
		want[oid] = payload
	}

	seen := make(map[object.Oid]bool)
	for o, err := range s.Objects() {
		require.NoError(t, err)
		require.False(t, seen[o.Oid()], "oid %s yielded twice", o.Oid())
		seen[o.Oid()] = true

		payload, ok := want[o.Oid()]
		require.True(t, ok, "unexpected oid %s", o.Oid())
		assert.Equal(t, payload, o.Payload())
	}
	assert.Len(t, seen, len(want))
}

func TestObjectsSkipsForeignEntries(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t)

	oid, err := s.PutObject(object.KindPiece, []byte("real"))
	require.NoError(t, err)

	objects := filepath.Join(dir, "objects")

	// non-hex directory at the first level
	require.NoError(t, os.MkdirAll(filepath.Join(objects, "zz"), 0o777))
	// regular file where a fan-out directory belongs
	require.NoError(t, os.WriteFile(filepath.Join(objects, "1"), []byte("junk"), 0o666))
	// file with a non-hex name in a real leaf directory
	h := oid.Hex()
	leaf := filepath.Join(objects, h[0:1], h[1:2], h[2:3], h[3:4])
	require.NoError(t, os.WriteFile(filepath.Join(leaf, "README"), []byte("junk"), 0o666))
	// file whose name is hex but the wrong length
	require.NoError(t, os.WriteFile(filepath.Join(leaf, "abcd"), []byte("junk"), 0o666))

	var oids []object.Oid
	for o, err := range s.Objects() {
		require.NoError(t, err)
		oids = append(oids, o.Oid())
	}

	require.Len(t, oids, 1)
	assert.Equal(t, oid, oids[0])
}

func TestObjectsVerifiesOnLoad(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t)

	good, err := s.PutObject(object.KindPiece, []byte("good"))
	require.NoError(t, err)
	bad, err := s.PutObject(object.KindPiece, []byte("about to rot"))
	require.NoError(t, err)

	h := bad.Hex()
	p := filepath.Join(dir, "objects", h[0:1], h[1:2], h[2:3], h[3:4], h[4:])
	record, err := os.ReadFile(p)
	require.NoError(t, err)
	record[object.KindLen] ^= 0x80
	require.NoError(t, os.WriteFile(p, record, 0o666))

	var goodSeen int
	var corrupt int
	for o, err := range s.Objects() {
		if err != nil {
			assert.ErrorIs(t, err, object.ErrInvalidData)
			corrupt++
			continue
		}
		assert.Equal(t, good, o.Oid())
		goodSeen++
	}

	assert.Equal(t, 1, goodSeen)
	assert.Equal(t, 1, corrupt)
}
