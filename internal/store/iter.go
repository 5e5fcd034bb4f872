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
	"io/fs"
	"iter"
	"path"
	"strings"

	"github.com/mfinelli/vblock/internal/object"
)

// Objects iterates over every stored object, depth-first through the
// fan-out tree. Each object is loaded (and therefore hash-verified) as
// it is yielded. Entries that do not match the split scheme are skipped.
// Objects present when iteration starts are yielded exactly once;
// objects committed concurrently may or may not be observed.
func (s *Store) Objects() iter.Seq2[*Object, error] {
	return func(yield func(*Object, error) bool) {
		s.walkLevel(".", 0, yield)
	}
}

func (s *Store) walkLevel(dir string, depth int, yield func(*Object, error) bool) bool {
	entries, err := fs.ReadDir(s.objects.FS(), dir)
	if err != nil {
		return yield(nil, err)
	}

	for _, e := range entries {
		name := e.Name()
		if depth < s.depth {
			if !e.IsDir() || len(name) != 1 || !isHexDigit(name[0]) {
				continue
			}
			if !s.walkLevel(path.Join(dir, name), depth+1, yield) {
				return false
			}
			continue
		}

		if !e.Type().IsRegular() {
			continue
		}
		h := strings.ReplaceAll(dir, "/", "") + name
		oid, err := object.FromHex(h)
		if err != nil {
			continue
		}

		o, err := s.Get(oid)
		if err != nil {
			if !yield(nil, err) {
				return false
			}
			continue
		}
		if o == nil {
			// pruned between listing and load
			continue
		}
		if !yield(o, nil) {
			return false
		}
	}

	return true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f'
}
