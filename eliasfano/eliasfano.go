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

// Package eliasfano encodes a monotone sequence of n values bounded above
// by u as a packed array of low bits plus a unary-coded, selectable bitmap
// of high bits, giving indexed access in a space close to the
// information-theoretic minimum.
package eliasfano

import (
	"fmt"
	"math/bits"

	"github.com/succinct-go/sux/bitfield"
	"github.com/succinct-go/sux/bitmap"
)

func lowBitWidth(u, n int) int {
	if n == 0 || u < n {
		return 0
	}
	return bits.Len(uint(u/n)) - 1
}

// MemUpperbound returns the worst-case bit budget for an Elias-Fano
// sequence of n values bounded by u: 2n + n*ceil(log2(u/n)).
func MemUpperbound(u, n int) int {
	if n == 0 {
		return 0
	}
	q := u / n
	if u%n != 0 {
		q++
	}
	ceilLog2 := 0
	for (1 << uint(ceilLog2)) < q {
		ceilLog2++
	}
	return 2*n + n*ceilLog2
}

// EliasFano is a frozen, queryable monotone sequence.
type EliasFano struct {
	u, n, l  int
	lowBits  *bitfield.Vector[uint64]
	highBits *bitmap.Bitmap
}

// Len returns n, the number of stored values.
func (e *EliasFano) Len() int { return e.n }

// Upperbound returns u, the exclusive upper bound on stored values.
func (e *EliasFano) Upperbound() int { return e.u }

// Get returns the i-th stored value (0-indexed, in insertion order).
func (e *EliasFano) Get(i int) int {
	if i < 0 || i >= e.n {
		panic(fmt.Sprintf("eliasfano: index %d out of bounds (n=%d)", i, e.n))
	}
	high := e.highBits.Select(i)
	low := e.lowBits.Get(i)
	return ((high - i) << uint(e.l)) | int(low)
}

// Successor returns the index and value of the smallest stored value >=
// x, found by a binary search over Get (indexed access is the only
// primitive EliasFano exposes besides rank/select on the high bits). ok
// is false if no stored value is >= x.
func (e *EliasFano) Successor(x int) (index, value int, ok bool) {
	lo, hi := 0, e.n
	for lo < hi {
		mid := (lo + hi) / 2
		if e.Get(mid) >= x {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == e.n {
		return 0, 0, false
	}
	return lo, e.Get(lo), true
}

// Predecessor returns the index and value of the largest stored value <=
// x. ok is false if no stored value is <= x.
func (e *EliasFano) Predecessor(x int) (index, value int, ok bool) {
	lo, hi := 0, e.n
	for lo < hi {
		mid := (lo + hi) / 2
		if e.Get(mid) <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, 0, false
	}
	return lo - 1, e.Get(lo - 1), true
}

// Builder sequentially constructs an EliasFano sequence, checking that
// pushed values are monotone non-decreasing.
type Builder struct {
	u, n, l   int
	lowBits   *bitfield.Vector[uint64]
	highBits  *bitmap.Bitmap
	lastValue int
	count     int
}

// NewBuilder returns a Builder for n values strictly less than u.
func NewBuilder(u, n int) *Builder {
	l := lowBitWidth(u, n)
	return &Builder{
		u:        u,
		n:        n,
		l:        l,
		lowBits:  bitfield.NewVector[uint64](l, n),
		highBits: bitmap.New(n + (u >> uint(l)) + 1),
	}
}

// Push appends value, which must be >= the previously pushed value and
// strictly less than u. It returns an error if value breaks monotonicity.
func (b *Builder) Push(value int) error {
	if value < b.lastValue {
		return fmt.Errorf("eliasfano: values are not monotone: %d after %d", value, b.lastValue)
	}
	b.PushUnchecked(value)
	return nil
}

// PushUnchecked appends value without the monotonicity check. The caller
// guarantees value < u and value >= every previously pushed value.
func (b *Builder) PushUnchecked(value int) {
	low := value
	if b.l > 0 {
		low = value & ((1 << uint(b.l)) - 1)
	} else {
		low = 0
	}
	b.lowBits.Set(b.count, uint64(low))

	high := (value >> uint(b.l)) + b.count
	b.highBits.Set(high)

	b.count++
	b.lastValue = value
}

// Build finalizes the sequence. It panics if fewer than n values were
// pushed, matching the fixed-size contract the retrieval function relies
// on for its parameter tables.
func (b *Builder) Build() *EliasFano {
	if b.count != b.n {
		panic(fmt.Sprintf("eliasfano: built with %d values, expected %d", b.count, b.n))
	}
	return &EliasFano{u: b.u, n: b.n, l: b.l, lowBits: b.lowBits, highBits: b.highBits}
}

// AtomicBuilder concurrently constructs an EliasFano sequence. The caller
// guarantees the values set at each index are monotone non-decreasing in
// index order and that each index is set exactly once.
type AtomicBuilder struct {
	u, n, l  int
	lowBits  *bitfield.AtomicVector
	highBits *bitmap.AtomicBitmap
}

// NewAtomicBuilder returns an AtomicBuilder for n values strictly less
// than u.
func NewAtomicBuilder(u, n int) *AtomicBuilder {
	l := lowBitWidth(u, n)
	return &AtomicBuilder{
		u:        u,
		n:        n,
		l:        l,
		lowBits:  bitfield.NewAtomicVector(l, n),
		highBits: bitmap.NewAtomic(n + (u >> uint(l)) + 1),
	}
}

// Set stores value at index. The caller must guarantee index < n, value <
// u, and that the full sequence of sets across all indices is monotone in
// index order.
func (b *AtomicBuilder) Set(index, value int, order bitfield.Order) {
	low := 0
	if b.l > 0 {
		low = value & ((1 << uint(b.l)) - 1)
	}
	b.lowBits.SetAtomic(index, uint64(low), order)

	high := (value >> uint(b.l)) + index
	b.highBits.SetAtomic(high, order)
}

// Build finalizes the sequence, freezing the atomic backing storage.
func (b *AtomicBuilder) Build() *EliasFano {
	return &EliasFano{
		u:        b.u,
		n:        b.n,
		l:        b.l,
		lowBits:  b.lowBits.Freeze(),
		highBits: b.highBits.Freeze(),
	}
}
