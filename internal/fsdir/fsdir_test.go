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

package fsdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOrCreate(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root, err := os.OpenRoot(base)
	require.NoError(t, err)
	defer root.Close()

	d, err := OpenOrCreate(root, "x")
	require.NoError(t, err)
	defer d.Close()

	// visible through normal path methods
	info, err := os.Stat(filepath.Join(base, "x"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// opening again reuses the existing directory
	d2, err := OpenOrCreate(root, "x")
	require.NoError(t, err)
	defer d2.Close()

	// nesting works through the returned handle
	sub, err := OpenOrCreate(d, "y")
	require.NoError(t, err)
	defer sub.Close()

	info, err = os.Stat(filepath.Join(base, "x", "y"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenOrCreateFailsOnFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "f"), []byte("x"), 0o666))

	root, err := os.OpenRoot(base)
	require.NoError(t, err)
	defer root.Close()

	_, err = OpenOrCreate(root, "f")
	assert.Error(t, err)
}

func TestOpenOrCreateConcurrentRace(t *testing.T) {
	t.Parallel()

	const agents = 10

	for range 50 {
		base := t.TempDir()

		var wg sync.WaitGroup
		errs := make(chan error, agents)
		for i := range agents {
			wg.Add(1)
			go func() {
				defer wg.Done()

				root, err := os.OpenRoot(base)
				if err != nil {
					errs <- err
					return
				}
				defer root.Close()

				d, err := OpenOrCreate(root, "a")
				if err != nil {
					errs <- err
					return
				}
				defer d.Close()

				f, err := d.Create(fmt.Sprintf("%d", i))
				if err != nil {
					errs <- err
					return
				}
				errs <- f.Close()
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		// exactly one directory "a", containing every agent's file
		entries, err := os.ReadDir(base)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "a", entries[0].Name())

		files, err := os.ReadDir(filepath.Join(base, "a"))
		require.NoError(t, err)
		found := make(map[string]bool, agents)
		for _, f := range files {
			assert.False(t, found[f.Name()], "found %s twice", f.Name())
			found[f.Name()] = true
		}
		assert.Len(t, found, agents)
	}
}

func TestTempDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root, err := os.OpenRoot(base)
	require.NoError(t, err)
	defer root.Close()

	seen := make(map[string]bool)
	for range 20 {
		d, name, err := TempDir(root, "vblock-temp.")
		require.NoError(t, err)
		d.Close()

		assert.True(t, strings.HasPrefix(name, "vblock-temp."))
		assert.Len(t, name, len("vblock-temp.")+10)
		for _, c := range name[len("vblock-temp."):] {
			assert.True(t, c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z',
				"suffix character %q is not an ascii letter", c)
		}

		assert.False(t, seen[name], "tempdir name %s reused", name)
		seen[name] = true

		info, err := os.Stat(filepath.Join(base, name))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
