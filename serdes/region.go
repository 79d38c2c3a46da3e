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

// Package serdes persists a retrieval function to a byte stream and
// reconstructs it either by reading the whole file into memory or by
// memory-mapping it, with the bulk packed-vector backing store borrowed
// from the region zero-copy in both cases. It plays the role spec.md
// treats as an external serialization framework: the core only needs the
// encasement-wrapper and load/map contract this package supplies.
package serdes

import "fmt"

// Kind identifies what backs a Region's bytes.
type Kind int

const (
	// KindNone backs a structure built directly in memory, with no
	// associated byte region (e.g. retrieval.Build's return value before
	// it is ever stored).
	KindNone Kind = iota
	// KindOwned backs a structure deserialized from a file read fully
	// into an allocated buffer.
	KindOwned
	// KindMmap backs a structure deserialized from a memory-mapped file.
	KindMmap
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOwned:
		return "owned"
	case KindMmap:
		return "mmap"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Region is the backing byte storage a deserialized structure borrows
// from. It must be kept alive for as long as any view into it is used.
type Region struct {
	kind  Kind
	bytes []byte
	words []uint64 // set for KindOwned, so the allocation's alignment is visible to callers that need it
	close func() error
}

// Bytes returns the region's raw bytes. For KindNone it is nil.
func (r *Region) Bytes() []byte { return r.bytes }

// Kind reports what backs the region.
func (r *Region) Kind() Kind { return r.kind }

// Close releases the region's resources (unmapping a KindMmap region).
// It is a no-op for KindNone and KindOwned.
func (r *Region) Close() error {
	if r.close != nil {
		return r.close()
	}
	return nil
}

// Cased pairs a deserialized value with the Region it borrows memory
// from, the Go analogue of the reference library's MemCase encasement
// wrapper. Cased embeds a pointer to the value so callers can use it
// nearly transparently, and exposes Region for explicit lifetime
// management (mmap backends must outlive every access to Value).
type Cased[T any] struct {
	Value  T
	region *Region
}

// Encase wraps v with no backend, the Go equivalent of the reference
// library's encase/From for in-memory-built structures.
func Encase[T any](v T) *Cased[T] {
	return &Cased[T]{Value: v, region: &Region{kind: KindNone}}
}

// Region returns the backing region, for explicit Close calls on mapped
// structures.
func (c *Cased[T]) Region() *Region { return c.region }

// Close releases the underlying region's resources.
func (c *Cased[T]) Close() error { return c.region.Close() }
