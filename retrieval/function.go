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

// Package retrieval builds and queries a static retrieval function: a
// structure that maps a known, finite key set to arbitrary fixed-width
// integer values in space close to the information-theoretic minimum, via
// randomized three-hypergraph peeling sharded across independent chunks.
// Keys not in the original set still return a value — the structure is
// a retrieval function, not a membership filter.
package retrieval

import (
	"github.com/succinct-go/sux/bitfield"
	"github.com/succinct-go/sux/spooky"
)

// Function is a frozen, queryable retrieval function.
type Function struct {
	seed        uint64
	log2L       uint
	highBits    uint
	chunkMask   uint64
	numKeys     int
	segmentSize int
	bitWidth    int
	values      *bitfield.Vector[uint64]
}

// Len returns the number of keys the function was built over.
func (f *Function) Len() int { return f.numKeys }

// BitWidth returns the value bit width.
func (f *Function) BitWidth() int { return f.bitWidth }

func (f *Function) numVertices() int {
	return f.segmentSize * (int(1<<f.log2L) + 2)
}

// GetBySignature queries directly by a precomputed signature, bypassing
// Remap. It is exposed for callers that already have a signature on
// hand.
func (f *Function) GetBySignature(s0, s1 uint64) uint64 {
	e := edge(s0, s1, f.log2L, f.segmentSize)
	chunk := chunkOf(s0, f.highBits, f.chunkMask)
	chunkOffset := chunk * f.numVertices()
	return f.values.Get(e[0]+chunkOffset) ^ f.values.Get(e[1]+chunkOffset) ^ f.values.Get(e[2]+chunkOffset)
}

// Get returns the value associated with key. For a key outside the
// original build set, the result is an arbitrary value in [0, 2^bit_width).
func Get[K spooky.Remap](f *Function, key K) uint64 {
	s0, s1 := key.Remap(f.seed)
	return f.GetBySignature(s0, s1)
}

// FromRawParts reconstructs a Function from its persisted scalar header
// and backing value vector. It is used by the serdes package when loading
// or memory-mapping a stored function.
func FromRawParts(seed uint64, log2L, highBits, chunkMask uint32, numKeys, segmentSize, bitWidth uint64, values *bitfield.Vector[uint64]) *Function {
	return &Function{
		seed:        seed,
		log2L:       uint(log2L),
		highBits:    uint(highBits),
		chunkMask:   uint64(chunkMask),
		numKeys:     int(numKeys),
		segmentSize: int(segmentSize),
		bitWidth:    int(bitWidth),
		values:      values,
	}
}

// RawParts exposes the persisted scalar header fields and the backing
// value vector, for the serdes package's writer.
func RawParts(f *Function) (seed uint64, log2L, highBits, chunkMask uint32, numKeys, segmentSize, bitWidth uint64, values *bitfield.Vector[uint64]) {
	return f.seed, uint32(f.log2L), uint32(f.highBits), uint32(f.chunkMask), uint64(f.numKeys), uint64(f.segmentSize), uint64(f.bitWidth), f.values
}
