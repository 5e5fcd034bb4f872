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

package bench

import (
	"bytes"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededBytes(n int) []byte {
	r := rand.NewChaCha8([32]byte{42})
	b := make([]byte, n)
	_, _ = r.Read(b)
	return b
}

func TestMeasureBup(t *testing.T) {
	t.Parallel()

	data := seededBytes(1 << 20)
	src := NewBytesSource("test", data)

	stats, err := MeasureBup(src)
	require.NoError(t, err)

	assert.Equal(t, "bup", stats.Splitter)
	assert.Equal(t, int64(len(data)), stats.Bytes)
	assert.Greater(t, stats.Chunks, 1)
	assert.LessOrEqual(t, stats.Unique, stats.Chunks)
	assert.LessOrEqual(t, stats.Min, stats.Max)

	// same bytes, same chunking
	again, err := MeasureBup(src)
	require.NoError(t, err)
	assert.Equal(t, stats.Chunks, again.Chunks)
	assert.Equal(t, stats.Unique, again.Unique)
}

func TestMeasureBupEmptyInput(t *testing.T) {
	t.Parallel()

	stats, err := MeasureBup(NewBytesSource("empty", nil))
	require.NoError(t, err)

	// the empty input is a single empty chunk
	assert.Equal(t, 1, stats.Chunks)
	assert.Equal(t, int64(0), stats.Bytes)
}

func TestMeasureBupDetectsDuplicates(t *testing.T) {
	t.Parallel()

	// the same 256 KiB block four times over: after the first pass the
	// splitter re-finds the same boundaries, so later chunks repeat
	block := seededBytes(256 << 10)
	data := bytes.Repeat(block, 4)

	stats, err := MeasureBup(NewBytesSource("repeats", data))
	require.NoError(t, err)

	assert.Equal(t, int64(len(data)), stats.Bytes)
	assert.Greater(t, stats.DupBytes, int64(0))
	assert.Less(t, stats.Unique, stats.Chunks)
}

func TestMeasureRabin(t *testing.T) {
	t.Parallel()

	// large enough to clear the rabin chunker's minimum chunk size a
	// few times over
	data := seededBytes(4 << 20)

	stats, err := MeasureRabin(NewBytesSource("test", data))
	require.NoError(t, err)

	assert.Equal(t, "rabin", stats.Splitter)
	assert.Equal(t, int64(len(data)), stats.Bytes)
	assert.GreaterOrEqual(t, stats.Chunks, 1)
	assert.LessOrEqual(t, stats.Unique, stats.Chunks)
}

func TestRunMeasuresBoth(t *testing.T) {
	t.Parallel()

	data := seededBytes(1 << 20)

	results, err := Run(NewBytesSource("test", data))
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "bup", results[0].Splitter)
	assert.Equal(t, "rabin", results[1].Splitter)
	for _, r := range results {
		assert.Equal(t, int64(len(data)), r.Bytes)
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "input")
	data := seededBytes(64 << 10)
	require.NoError(t, os.WriteFile(p, data, 0o666))

	stats, err := MeasureBup(NewFileSource(p))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), stats.Bytes)
}

func TestDirSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o777))

	a := seededBytes(32 << 10)
	b := seededBytes(16 << 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), a, 0o666))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), b, 0o666))

	src, err := NewDirSource(dir)
	require.NoError(t, err)

	stats, err := MeasureBup(src)
	require.NoError(t, err)
	assert.Equal(t, int64(len(a)+len(b)), stats.Bytes)
}

func TestDirSourceEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewDirSource(t.TempDir())
	assert.Error(t, err)
}

func TestRandomSourceReplays(t *testing.T) {
	t.Parallel()

	src := NewRandomSource(128 << 10)

	r1, err := src.Open()
	require.NoError(t, err)
	first, err := io.ReadAll(r1)
	require.NoError(t, err)

	r2, err := src.Open()
	require.NoError(t, err)
	second, err := io.ReadAll(r2)
	require.NoError(t, err)

	assert.Equal(t, 128<<10, len(first))
	assert.True(t, bytes.Equal(first, second))
}
