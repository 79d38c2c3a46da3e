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

// Package word abstracts over the unsigned machine integer types used as
// the storage word of a packed fixed-width vector.
package word

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Unsigned is the set of machine word types a packed vector may be built
// on top of.
type Unsigned interface {
	constraints.Unsigned
}

// Bits returns the number of bits in W, e.g. 64 for uint64.
func Bits[W Unsigned]() int {
	var w W
	return int(unsafe.Sizeof(w)) * 8
}

// Mask returns a W with its lowest bitWidth bits set to one. bitWidth must
// be in [0, Bits[W]()].
func Mask[W Unsigned](bitWidth int) W {
	if bitWidth <= 0 {
		return 0
	}
	if bitWidth >= Bits[W]() {
		return ^W(0)
	}
	return (W(1) << uint(bitWidth)) - 1
}
