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

// Package spooky mixes a key and a 64-bit seed into four 64-bit words, the
// first two of which form a 128-bit signature. It is not cryptographic:
// it exists to spread keys across hash space cheaply and reproducibly,
// the substrate the retrieval function's hypergraph peeling is built on.
package spooky

import "encoding/binary"

// Remap is implemented by any key type that can be mixed into a 128-bit
// signature. seed selects an independent hash family member; remap must
// be a pure function of (key, seed).
type Remap interface {
	Remap(seed uint64) (s0, s1 uint64)
}

// Bytes mixes a byte slice with seed into four 64-bit words using two
// independent SipHash-2-4 keys derived from seed, matching the teacher's
// siphashx8 use of siphash.Hash128 for exactly this kind of bulk mixing.
func Bytes(key []byte, seed uint64) (w0, w1, w2, w3 uint64) {
	w0, w1 = hash128(seed, seed^0x9e3779b97f4a7c15, key)
	w2, w3 = hash128(seed^0xbf58476d1ce4e5b9, seed, key)
	return
}

// String mixes the UTF-8 bytes of s.
func String(s string, seed uint64) (w0, w1, w2, w3 uint64) {
	return Bytes([]byte(s), seed)
}

// Uint64 mixes the native-endian byte representation of v, matching the
// integer convention spec.md's remap contract requires.
func Uint64(v uint64, seed uint64) (w0, w1, w2, w3 uint64) {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], v)
	return Bytes(buf[:], seed)
}

// BytesKey is a []byte that implements Remap via Bytes.
type BytesKey []byte

func (k BytesKey) Remap(seed uint64) (s0, s1 uint64) {
	s0, s1, _, _ = Bytes(k, seed)
	return
}

// StringKey is a string that implements Remap via String.
type StringKey string

func (k StringKey) Remap(seed uint64) (s0, s1 uint64) {
	s0, s1, _, _ = String(string(k), seed)
	return
}

// Uint64Key is a uint64 that implements Remap via Uint64.
type Uint64Key uint64

func (k Uint64Key) Remap(seed uint64) (s0, s1 uint64) {
	s0, s1, _, _ = Uint64(uint64(k), seed)
	return
}
