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
	"io"

	"github.com/mfinelli/vblock/internal/object"
)

// Object is a verified object loaded from the store. The payload is the
// record minus its kind tag.
type Object struct {
	oid     object.Oid
	kind    object.Kind
	payload []byte
	off     int
}

// Oid returns the object's identifier.
func (o *Object) Oid() object.Oid { return o.oid }

// Kind returns the object's kind tag.
func (o *Object) Kind() object.Kind { return o.kind }

// Payload returns the object's payload bytes. The slice aliases the
// loaded record; callers must not modify it.
func (o *Object) Payload() []byte { return o.payload }

// Size returns the payload length in bytes.
func (o *Object) Size() int { return len(o.payload) }

// Read implements io.Reader over the payload.
func (o *Object) Read(p []byte) (int, error) {
	if o.off >= len(o.payload) {
		return 0, io.EOF
	}
	n := copy(p, o.payload[o.off:])
	o.off += n
	return n, nil
}
