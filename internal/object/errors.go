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

package object

import "errors"

var (
	// ErrInvalidData marks a malformed on-disk record: an unknown kind
	// tag, an oid/content mismatch, a truncated blob index, or an index
	// entry that resolves to the wrong kind of object. Corruption is
	// always surfaced, never masked.
	ErrInvalidData = errors.New("invalid data")

	// ErrBadEncoding marks a hex parse failure on user-supplied input.
	ErrBadEncoding = errors.New("bad encoding")

	// ErrConflict is reserved for cross-process coordination. Content
	// addressing makes writes idempotent, so nothing returns it today.
	ErrConflict = errors.New("conflict")
)
