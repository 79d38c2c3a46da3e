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

package bitfield

import "github.com/succinct-go/sux/word"

// ForwardUnchecked holds a rolling bits-wide window and a fill counter,
// refilling from the next backing word whenever the window is exhausted.
// It is the unchecked building block for forward iteration.
type ForwardUnchecked[W word.Unsigned] struct {
	vec       *Vector[W]
	wordIndex int
	window    W
	fill      int
}

// NewForwardUnchecked starts unchecked iteration at element index i.
// i may equal v.Len() (an empty, exhausted iterator).
func NewForwardUnchecked[W word.Unsigned](v *Vector[W], i int) *ForwardUnchecked[W] {
	if i > v.length {
		panic("bitfield: start index out of bounds")
	}
	it := &ForwardUnchecked[W]{vec: v}
	if i == v.length {
		return it
	}
	bits := word.Bits[W]()
	bitOffset := i * v.bitWidth
	bitIndex := bitOffset % bits
	it.wordIndex = bitOffset / bits
	it.fill = bits - bitIndex
	it.window = v.data[it.wordIndex] >> uint(bitIndex)
	return it
}

// NextUnchecked returns the next element. The caller guarantees it is not
// called more times than remain in the vector.
func (it *ForwardUnchecked[W]) NextUnchecked() W {
	v := it.vec
	bits := word.Bits[W]()
	bw := v.bitWidth
	if it.fill >= bw {
		res := it.window & v.mask
		it.window >>= uint(bw)
		it.fill -= bw
		return res
	}
	res := it.window
	it.wordIndex++
	it.window = v.data[it.wordIndex]
	res = (res | (it.window << uint(it.fill))) & v.mask
	used := bw - it.fill
	it.window >>= uint(used)
	it.fill = bits - used
	return res
}

// ReverseUnchecked iterates a Vector back to front using the same rolling
// window technique as ForwardUnchecked, rotated instead of shifted so the
// drained bits move to the window's top.
type ReverseUnchecked[W word.Unsigned] struct {
	vec       *Vector[W]
	wordIndex int
	window    W
	fill      int
}

// NewReverseUnchecked starts unchecked reverse iteration at element index
// i, i.e. the first NextUnchecked call returns element i-1. i may be 0.
func NewReverseUnchecked[W word.Unsigned](v *Vector[W], i int) *ReverseUnchecked[W] {
	if i > v.length {
		panic("bitfield: start index out of bounds")
	}
	it := &ReverseUnchecked[W]{vec: v}
	if i == 0 {
		return it
	}
	bits := word.Bits[W]()
	bitOffset := i*v.bitWidth - 1 // i > 0, so i*bitWidth >= 0; this only underflows when bitWidth == 0, handled below
	if v.bitWidth == 0 {
		bitOffset = 0
	}
	bitIndex := bitOffset % bits
	it.wordIndex = bitOffset / bits
	it.fill = bitIndex + 1
	it.window = v.data[it.wordIndex] << uint(bits-it.fill)
	return it
}

func rotl[W word.Unsigned](x W, k, bits int) W {
	k %= bits
	if k == 0 {
		return x
	}
	return (x << uint(k)) | (x >> uint(bits-k))
}

// NextUnchecked returns the preceding element.
func (it *ReverseUnchecked[W]) NextUnchecked() W {
	v := it.vec
	bits := word.Bits[W]()
	bw := v.bitWidth
	if it.fill >= bw {
		it.window = rotl(it.window, bw, bits)
		it.fill -= bw
		return it.window & v.mask
	}
	res := rotl(it.window, it.fill, bits)
	it.wordIndex--
	it.window = v.data[it.wordIndex]
	used := bw - it.fill
	res = ((res << uint(used)) | (it.window >> uint(bits-used))) & v.mask
	it.window <<= uint(used)
	it.fill = bits - used
	return res
}

// Iterator is an ordinary double-ended iterator over a Vector, built from
// independent forward and reverse cursors.
type Iterator[W word.Unsigned] struct {
	v          *Vector[W]
	start, end int
	fwd        *ForwardUnchecked[W]
	rev        *ReverseUnchecked[W]
}

// NewIterator returns an Iterator over all elements of v.
func NewIterator[W word.Unsigned](v *Vector[W]) *Iterator[W] {
	return &Iterator[W]{v: v, start: 0, end: v.length}
}

// Next returns the next element in forward order, or ok=false when
// exhausted.
func (it *Iterator[W]) Next() (val W, ok bool) {
	if it.start >= it.end {
		return 0, false
	}
	if it.fwd == nil {
		it.fwd = NewForwardUnchecked(it.v, it.start)
	}
	val = it.fwd.NextUnchecked()
	it.start++
	return val, true
}

// NextBack returns the next element in reverse order, or ok=false when
// exhausted.
func (it *Iterator[W]) NextBack() (val W, ok bool) {
	if it.start >= it.end {
		return 0, false
	}
	if it.rev == nil {
		it.rev = NewReverseUnchecked(it.v, it.end)
	}
	val = it.rev.NextUnchecked()
	it.end--
	return val, true
}

// Collect drains the forward direction into a slice, for tests and small
// vectors.
func (v *Vector[W]) Collect() []W {
	out := make([]W, v.length)
	for i := range out {
		out[i] = v.GetUnchecked(i)
	}
	return out
}
