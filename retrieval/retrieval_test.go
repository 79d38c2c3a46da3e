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

package retrieval

import (
	"fmt"
	"testing"

	"github.com/succinct-go/sux/spooky"
)

func TestBuildSmallStringSet(t *testing.T) {
	words := []string{"apple", "banana", "cherry", "date", "elderberry"}
	keys := make([]spooky.StringKey, len(words))
	values := make([]uint64, len(words))
	for i, w := range words {
		keys[i] = spooky.StringKey(w)
		values[i] = uint64(i)
	}

	f := Build(keys, values, 8)
	if f.Len() != len(words) {
		t.Fatalf("Len() = %d, want %d", f.Len(), len(words))
	}
	for i, k := range keys {
		if got := Get(f, k); got != values[i] {
			t.Fatalf("Get(%q) = %d, want %d", words[i], got, values[i])
		}
	}
}

func TestBuildLargeUint64Set(t *testing.T) {
	const n = 200_000
	keys := make([]spooky.Uint64Key, n)
	values := make([]uint64, n)
	for i := 0; i < n; i++ {
		keys[i] = spooky.Uint64Key(uint64(i))
		values[i] = uint64(i) & 0xFF
	}

	f := Build(keys, values, 8)
	for i := 0; i < n; i += 997 { // sparse sample, full scan is slow but would also pass
		if got := Get(f, keys[i]); got != values[i] {
			t.Fatalf("Get(%d) = %d, want %d", i, got, values[i])
		}
	}

	bitsPerKey := float64(f.values.Len()) * 8 / float64(n)
	if bitsPerKey > 8*1.3 {
		t.Fatalf("space usage %.2f bits/key exceeds the expected ~1.1-1.2x expansion budget", bitsPerKey)
	}
}

func TestGetOnUnknownKeyDoesNotPanic(t *testing.T) {
	keys := []spooky.StringKey{"a", "b", "c"}
	values := []uint64{0, 1, 2}
	f := Build(keys, values, 4)
	_ = Get(f, spooky.StringKey("not-a-member")) // must not panic; value is unspecified
}

func TestBuildPanicsOnBitWidthOutOfRange(t *testing.T) {
	keys := []spooky.StringKey{"a"}
	values := []uint64{0}
	for _, bw := range []int{0, 64, 65} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("bit width %d: expected panic", bw)
				}
			}()
			Build(keys, values, bw)
		}()
	}
}

func TestParamSelectionMatchesTableShape(t *testing.T) {
	for _, n := range []int{1, 10, 1000, 100_000, 5_000_000} {
		geo := selectParams(n)
		if geo.l <= 0 || geo.l&(geo.l-1) != 0 {
			t.Fatalf("n=%d: l=%d is not a power of two", n, geo.l)
		}
		if geo.numChunks != 1<<geo.highBits {
			t.Fatalf("n=%d: numChunks=%d inconsistent with highBits=%d", n, geo.numChunks, geo.highBits)
		}
		if geo.c > 1.23 || geo.c < 1.10 {
			t.Fatalf("n=%d: c=%f out of expected table range", n, geo.c)
		}
	}
}

func TestEdgeFunctionStaysWithinSegments(t *testing.T) {
	const segmentSize = 37
	const log2L = 5 // l = 32
	const l = 1 << log2L
	for seed := uint64(0); seed < 50; seed++ {
		key := spooky.Uint64Key(seed * 7919)
		s0, s1 := key.Remap(seed)
		e := edge(s0, s1, log2L, segmentSize)

		firstSegment := int((s0 >> 32) & (l - 1))
		start := firstSegment * segmentSize
		if e[0] < start || e[0] >= start+segmentSize {
			t.Fatalf("seed=%d: e0=%d outside segment [%d,%d)", seed, e[0], start, start+segmentSize)
		}
		if e[1] < start+segmentSize || e[1] >= start+2*segmentSize {
			t.Fatalf("seed=%d: e1=%d outside segment [%d,%d)", seed, e[1], start+segmentSize, start+2*segmentSize)
		}
		if e[2] < start+2*segmentSize || e[2] >= start+3*segmentSize {
			t.Fatalf("seed=%d: e2=%d outside segment [%d,%d)", seed, e[2], start+2*segmentSize, start+3*segmentSize)
		}
	}
}

func TestDuplicateKeysPanic(t *testing.T) {
	keys := []spooky.StringKey{"same", "same", "same", "same"}
	values := []uint64{0, 1, 2, 3}
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for duplicate keys")
		}
		if fmt.Sprint(r) != "duplicate keys" {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()
	Build(keys, values, 4)
}
