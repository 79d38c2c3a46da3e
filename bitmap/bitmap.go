// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package bitmap specializes bitfield.Vector to one-bit elements, and adds
// Rank and Select over the set bits, computed by scanning the backing
// words (no popcount is cached). This
// is the succinct primitive Elias-Fano needs for its high-bits structure;
// spec.md treats rank/select as an external capability and this package
// supplies just enough of it to make Elias-Fano buildable.
package bitmap

import (
	"math/bits"

	"github.com/succinct-go/sux/bitfield"
)

// Bitmap is a packed vector of single bits.
type Bitmap struct {
	words *bitfield.Vector[uint64]
	n     int
}

// New returns a zero-filled Bitmap with room for n bits.
func New(n int) *Bitmap {
	return &Bitmap{words: bitfield.NewVector[uint64](1, n), n: n}
}

// AtomicBitmap is the atomic twin of Bitmap, used by Elias-Fano's
// concurrent builder.
type AtomicBitmap struct {
	words *bitfield.AtomicVector
	n     int
}

// NewAtomic returns a zero-filled AtomicBitmap with room for n bits.
func NewAtomic(n int) *AtomicBitmap {
	return &AtomicBitmap{words: bitfield.NewAtomicVector(1, n), n: n}
}

func (b *Bitmap) Len() int { return b.n }

// Get returns whether bit i is set.
func (b *Bitmap) Get(i int) bool { return b.words.Get(i) != 0 }

// Set sets bit i to one.
func (b *Bitmap) Set(i int) { b.words.Set(i, 1) }

// Unset clears bit i.
func (b *Bitmap) Unset(i int) { b.words.Set(i, 0) }

// SetAtomic sets bit i to one using an atomic compare-and-swap.
func (a *AtomicBitmap) SetAtomic(i int, order bitfield.Order) {
	a.words.SetAtomic(i, 1, order)
}

func (a *AtomicBitmap) GetAtomic(i int, order bitfield.Order) bool {
	return a.words.GetAtomic(i, order) != 0
}

func (a *AtomicBitmap) Len() int { return a.n }

// Freeze converts the AtomicBitmap into a plain Bitmap without copying.
func (a *AtomicBitmap) Freeze() *Bitmap {
	return &Bitmap{words: a.words.Freeze(), n: a.n}
}

// Rank returns the number of set bits in [0, i).
func (b *Bitmap) Rank(i int) int {
	count := 0
	full := i / 64
	raw := b.words.Raw()
	for w := 0; w < full; w++ {
		count += bits.OnesCount64(raw[w])
	}
	rem := i % 64
	if rem > 0 {
		mask := (uint64(1) << uint(rem)) - 1
		count += bits.OnesCount64(raw[full] & mask)
	}
	return count
}

// Select returns the position of the rank-th (0-indexed) set bit, or -1 if
// there is no such bit. It is a linear scan over the backing words using
// math/bits.OnesCount64, the succinct-library equivalent of scanning
// ints.TestBit one word at a time.
func (b *Bitmap) Select(rank int) int {
	raw := b.words.Raw()
	remaining := rank
	for w, word := range raw {
		c := bits.OnesCount64(word)
		if remaining < c {
			for bit := 0; bit < 64; bit++ {
				if word&(1<<uint(bit)) != 0 {
					if remaining == 0 {
						pos := w*64 + bit
						if pos >= b.n {
							return -1
						}
						return pos
					}
					remaining--
				}
			}
		}
		remaining -= c
	}
	return -1
}
