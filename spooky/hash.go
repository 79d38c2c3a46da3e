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

package spooky

import "github.com/dchest/siphash"

// hash128 is the same siphash.Hash128(k0, k1, buf) call the teacher uses
// in its generic (non-amd64) siphashx8 fallback, reused here as the
// 128-bit-output building block for the four-word mix Bytes produces.
func hash128(k0, k1 uint64, buf []byte) (uint64, uint64) {
	return siphash.Hash128(k0, k1, buf)
}
