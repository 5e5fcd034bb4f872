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

// Package bench measures block-splitting mechanisms: chunk counts and
// sizes, throughput, and how much of the input deduplicates.
package bench

import (
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"time"

	"github.com/restic/chunker"

	"github.com/mfinelli/vblock/internal/chunk"
)

// rabinPol is a fixed irreducible polynomial so rabin runs are
// comparable across invocations.
const rabinPol = chunker.Pol(0x3DA3358B4DC173)

// Stats summarizes one splitter's pass over a source.
type Stats struct {
	Splitter string
	Bytes    int64
	Chunks   int
	Unique   int
	DupBytes int64
	Min, Max int
	Elapsed  time.Duration
}

// Avg returns the mean chunk size in bytes.
func (s Stats) Avg() int64 {
	if s.Chunks == 0 {
		return 0
	}
	return s.Bytes / int64(s.Chunks)
}

// Throughput returns MiB processed per second.
func (s Stats) Throughput() float64 {
	secs := s.Elapsed.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.Bytes) / (1 << 20) / secs
}

// Run measures the built-in bup splitter and the rabin chunker against
// the same source.
func Run(src Source) ([]Stats, error) {
	bup, err := MeasureBup(src)
	if err != nil {
		return nil, fmt.Errorf("bup: %w", err)
	}

	rabin, err := MeasureRabin(src)
	if err != nil {
		return nil, fmt.Errorf("rabin: %w", err)
	}

	return []Stats{bup, rabin}, nil
}

// chunkTally accumulates per-chunk statistics, deduplicating by chunk
// content hash.
type chunkTally struct {
	stats Stats
	seen  map[[sha512.Size]byte]struct{}
	h     hash.Hash
	n     int
}

func newChunkTally(name string) *chunkTally {
	return &chunkTally{
		stats: Stats{Splitter: name},
		seen:  make(map[[sha512.Size]byte]struct{}),
		h:     sha512.New(),
	}
}

func (t *chunkTally) consume(p []byte) {
	t.h.Write(p)
	t.n += len(p)
}

func (t *chunkTally) finish() {
	n := t.n
	var sum [sha512.Size]byte
	t.h.Sum(sum[:0])
	t.h.Reset()
	t.n = 0

	t.stats.Chunks++
	t.stats.Bytes += int64(n)
	if t.stats.Chunks == 1 || n < t.stats.Min {
		t.stats.Min = n
	}
	if n > t.stats.Max {
		t.stats.Max = n
	}
	if _, dup := t.seen[sum]; dup {
		t.stats.DupBytes += int64(n)
	} else {
		t.seen[sum] = struct{}{}
		t.stats.Unique++
	}
}

// MeasureBup streams the source through the rolling-checksum splitter.
func MeasureBup(src Source) (Stats, error) {
	r, err := src.Open()
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	tally := newChunkTally("bup")
	sp := chunk.NewBup()
	buf := make([]byte, 64*1024)
	start := time.Now()

	for {
		n, err := r.Read(buf)
		p := buf[:n]
		for len(p) > 0 {
			used := sp.Push(p)
			if used == 0 {
				tally.consume(p)
				break
			}
			tally.consume(p[:used])
			tally.finish()
			p = p[used:]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Stats{}, err
		}
	}

	if tally.n > 0 || tally.stats.Chunks == 0 {
		tally.finish()
	}

	tally.stats.Elapsed = time.Since(start)
	return tally.stats, nil
}

// MeasureRabin streams the source through restic's rabin-polynomial
// content-defined chunker.
func MeasureRabin(src Source) (Stats, error) {
	r, err := src.Open()
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	tally := newChunkTally("rabin")
	c := chunker.New(r, rabinPol)
	buf := make([]byte, chunker.MaxSize)
	start := time.Now()

	for {
		ch, err := c.Next(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return Stats{}, err
		}
		tally.consume(ch.Data)
		tally.finish()
	}

	if tally.stats.Chunks == 0 {
		tally.finish()
	}

	tally.stats.Elapsed = time.Since(start)
	return tally.stats, nil
}
