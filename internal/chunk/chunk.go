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

// Package chunk provides content-defined chunking for the blob layer.
package chunk

// A Splitter finds chunk boundaries in a byte stream. Boundaries are a
// deterministic function of the bytes consumed so far, so the same input
// always splits the same way no matter how it is sliced across pushes.
type Splitter interface {
	// Push scans p and returns the number of bytes from p that complete
	// a chunk, or 0 if no boundary was found (the bytes are consumed
	// into the splitter's state either way).
	Push(p []byte) int
}

const (
	windowSize = 64
	charOffset = 31

	// splitBits sets the expected chunk size: a boundary fires when the
	// low 13 checksum bits are all ones, i.e. every 8 KiB on average.
	splitBits = 13
	splitMask = 1<<splitBits - 1
)

// Bup is a rolling-checksum splitter using the bup/rsync adler-style sum
// over a 64-byte window.
type Bup struct {
	s1, s2 uint32
	window [windowSize]byte
	wofs   int
}

// NewBup returns a splitter with an empty window.
func NewBup() *Bup {
	b := &Bup{}
	b.reset()
	return b
}

func (b *Bup) reset() {
	b.s1 = windowSize * charOffset
	b.s2 = windowSize * (windowSize - 1) * charOffset
	b.window = [windowSize]byte{}
	b.wofs = 0
}

func (b *Bup) roll(ch byte) {
	drop := uint32(b.window[b.wofs])
	add := uint32(ch)
	b.s1 += add - drop
	b.s2 += b.s1 - windowSize*(drop+charOffset)
	b.window[b.wofs] = ch
	b.wofs = (b.wofs + 1) & (windowSize - 1)
}

func (b *Bup) onSplit() bool {
	return b.s2&splitMask == splitMask
}

// Push implements Splitter. The window resets at each boundary so chunks
// are independent of their predecessors.
func (b *Bup) Push(p []byte) int {
	for i, ch := range p {
		b.roll(ch)
		if b.onSplit() {
			b.reset()
			return i + 1
		}
	}
	return 0
}
