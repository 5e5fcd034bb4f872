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

// Package fsdir wraps the handful of file-descriptor-relative directory
// operations the store needs. Everything goes through os.Root so lookups
// and renames are relative to an open directory handle rather than a
// path, which keeps concurrent writers and symlink games out of the
// picture.
package fsdir

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"strings"
)

// OpenOrCreate opens parent/name, creating the directory if it does not
// exist. Many writers may race on the same name against the same parent;
// the strategy is ask-for-forgiveness: try to open first, then create,
// and if the create loses the race to another creator, open again.
func OpenOrCreate(parent *os.Root, name string) (*os.Root, error) {
	d, err := parent.OpenRoot(name)
	if err == nil {
		return d, nil
	}

	if err := parent.Mkdir(name, 0o777); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
		// someone else created it between our open and mkdir
	}

	return parent.OpenRoot(name)
}

const tempSuffixLen = 10

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TempDir creates a uniquely named directory under parent, named prefix
// plus ten random ASCII letters, and returns its handle along with the
// name relative to parent. A name collision is retried with a fresh name
// rather than reusing the existing directory.
func TempDir(parent *os.Root, prefix string) (*os.Root, string, error) {
	for {
		name := prefix + randomSuffix()
		if err := parent.Mkdir(name, 0o777); err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return nil, "", err
		}

		d, err := parent.OpenRoot(name)
		if err != nil {
			return nil, "", err
		}
		return d, name, nil
	}
}

func randomSuffix() string {
	var b strings.Builder
	b.Grow(tempSuffixLen)
	for range tempSuffixLen {
		b.WriteByte(letters[rand.IntN(len(letters))])
	}
	return b.String()
}
