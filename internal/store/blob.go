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

	"github.com/mfinelli/vblock/internal/object"
)

// maxIndexDepth bounds blob index nesting. The index of n children is
// 8+64n bytes, so each level shrinks the data by roughly the average
// chunk size over 64; eight levels is unreachable for any input that
// fits in memory and only a pathological splitter gets near it.
const maxIndexDepth = 8

// PutBlob stores an arbitrary byte stream as a tree of objects.
//
// The stream is split at content-defined boundaries; each chunk becomes
// one object, and when more than one chunk results their oids are listed
// in a blob index, itself stored (and split again, recursively, if the
// index outgrows one chunk). The returned oid is the outermost object's,
// which is sufficient to recover everything.
//
// Inputs that fit in a single chunk are stored as a bare piece with no
// wrapping index; the empty input is stored as an empty piece.
func (s *Store) PutBlob(data []byte) (object.Oid, error) {
	return s.putBlobLevel(object.KindPiece, data, 0)
}

// putBlobLevel stores data whose assembled interpretation is kind: user
// bytes at level zero (KindPiece), serialized indexes above it
// (KindBlob). Chunks of data are stored as objects of that same kind,
// and the index wrapping them records it as the sub-kind header.
func (s *Store) putBlobLevel(kind object.Kind, data []byte, depth int) (object.Oid, error) {
	if depth >= maxIndexDepth {
		return object.Oid{}, fmt.Errorf(
			"%w: blob index nesting exceeds %d levels", object.ErrInvalidData, maxIndexDepth)
	}

	index := append(make([]byte, 0, object.KindLen), kind.Bytes()...)
	havePieces := false
	sp := s.newSplitter()
	rest := data

	for {
		if len(rest) == 0 {
			if !havePieces {
				// the whole input (possibly empty) is one chunk
				break
			}
			if len(index) >= len(data) {
				return object.Oid{}, fmt.Errorf(
					"%w: blob index did not shrink (%d bytes from %d)",
					object.ErrInvalidData, len(index), len(data))
			}
			return s.putBlobLevel(object.KindBlob, index, depth+1)
		}

		used := sp.Push(rest)
		if used == 0 {
			if !havePieces {
				break
			}
			// no further boundary: the remainder is the last chunk
			used = len(rest)
		} else if used == len(rest) && !havePieces {
			break
		}

		oid, err := s.PutObject(kind, rest[:used])
		if err != nil {
			return object.Oid{}, err
		}
		index = append(index, oid.Bytes()...)
		havePieces = true
		rest = rest[used:]
	}

	return s.PutObject(kind, data)
}

// GetBlob reassembles the byte stream rooted at oid. A missing root
// returns nil bytes and nil error; a missing or malformed child is
// invalid data.
func (s *Store) GetBlob(oid object.Oid) ([]byte, error) {
	o, err := s.Get(oid)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	return s.assemble(o.Kind(), o.Payload())
}

// StatBlob reports the shape of the tree rooted at oid: the number of
// leaf chunk objects holding the data and the number of index levels
// above them. A bare piece is (1, 0).
func (s *Store) StatBlob(oid object.Oid) (pieces, levels int64, err error) {
	o, err := s.Get(oid)
	if err != nil {
		return 0, 0, err
	}
	if o == nil {
		return 0, 0, fmt.Errorf("%w: missing object %s", object.ErrInvalidData, oid)
	}

	kind, payload := o.Kind(), o.Payload()
	for {
		if kind == object.KindPiece {
			if levels == 0 {
				pieces = 1
			}
			return pieces, levels, nil
		}
		if kind != object.KindBlob {
			return 0, 0, fmt.Errorf("%w: cannot assemble a %s object",
				object.ErrInvalidData, kind)
		}

		if len(payload) < object.KindLen {
			return 0, 0, fmt.Errorf("%w: blob index shorter than its sub-kind header",
				object.ErrInvalidData)
		}
		subKind, err := object.KindFromBytes(payload)
		if err != nil {
			return 0, 0, err
		}
		entries := payload[object.KindLen:]
		if len(entries)%object.HashLen != 0 {
			return 0, 0, fmt.Errorf("%w: blob index ends with a partial entry (%d trailing bytes)",
				object.ErrInvalidData, len(entries)%object.HashLen)
		}

		levels++
		count := int64(len(entries) / object.HashLen)
		if subKind == object.KindPiece {
			return count, levels, nil
		}
		if subKind != object.KindBlob {
			return 0, 0, fmt.Errorf("%w: sub-kind %s not allowed in a blob index",
				object.ErrInvalidData, subKind)
		}

		// descend: reassemble the next index level from its fragments
		var next []byte
		for len(entries) > 0 {
			coid, err := object.FromBytes(entries[:object.HashLen])
			if err != nil {
				return 0, 0, err
			}
			entries = entries[object.HashLen:]

			child, err := s.Get(coid)
			if err != nil {
				return 0, 0, err
			}
			if child == nil {
				return 0, 0, fmt.Errorf("%w: missing object %s",
					object.ErrInvalidData, coid)
			}
			if child.Kind() != subKind {
				return 0, 0, fmt.Errorf("%w: object %s is a %s, index expects %s",
					object.ErrInvalidData, coid, child.Kind(), subKind)
			}
			next = append(next, child.Payload()...)
		}
		kind, payload = subKind, next
	}
}

// assemble interprets payload as an object of the given kind: pieces are
// the data itself, blobs are resolved child by child and the
// concatenation re-interpreted under the index's sub-kind.
func (s *Store) assemble(kind object.Kind, payload []byte) ([]byte, error) {
	switch kind {
	case object.KindPiece:
		return payload, nil

	case object.KindBlob:
		if len(payload) < object.KindLen {
			return nil, fmt.Errorf("%w: blob index shorter than its sub-kind header",
				object.ErrInvalidData)
		}
		subKind, err := object.KindFromBytes(payload)
		if err != nil {
			return nil, err
		}
		if subKind == object.KindTree {
			return nil, fmt.Errorf("%w: sub-kind tree not allowed in a blob index",
				object.ErrInvalidData)
		}

		entries := payload[object.KindLen:]
		if len(entries)%object.HashLen != 0 {
			return nil, fmt.Errorf("%w: blob index ends with a partial entry (%d trailing bytes)",
				object.ErrInvalidData, len(entries)%object.HashLen)
		}

		// non-nil even for an entry-less index: nil means not found
		data := []byte{}
		for len(entries) > 0 {
			oid, err := object.FromBytes(entries[:object.HashLen])
			if err != nil {
				return nil, err
			}
			entries = entries[object.HashLen:]

			child, err := s.Get(oid)
			if err != nil {
				return nil, err
			}
			if child == nil {
				return nil, fmt.Errorf("%w: missing object %s",
					object.ErrInvalidData, oid)
			}
			if child.Kind() != subKind {
				return nil, fmt.Errorf("%w: object %s is a %s, index expects %s",
					object.ErrInvalidData, oid, child.Kind(), subKind)
			}
			data = append(data, child.Payload()...)
		}

		return s.assemble(subKind, data)

	default:
		return nil, fmt.Errorf("%w: cannot assemble a %s object",
			object.ErrInvalidData, kind)
	}
}
