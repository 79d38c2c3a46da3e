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

package bitmap

import (
	"sync"
	"testing"

	"github.com/succinct-go/sux/bitfield"
)

func TestGetSetUnset(t *testing.T) {
	b := New(100)
	for i := 0; i < 100; i += 3 {
		b.Set(i)
	}
	for i := 0; i < 100; i++ {
		want := i%3 == 0
		if got := b.Get(i); got != want {
			t.Fatalf("index %d: got %v want %v", i, got, want)
		}
	}
	b.Unset(0)
	if b.Get(0) {
		t.Fatal("expected bit 0 to be cleared")
	}
}

func TestRankSelect(t *testing.T) {
	b := New(200)
	var set []int
	for i := 0; i < 200; i += 7 {
		b.Set(i)
		set = append(set, i)
	}
	for rank, pos := range set {
		if got := b.Select(rank); got != pos {
			t.Fatalf("select(%d) = %d, want %d", rank, got, pos)
		}
	}
	for i := 1; i < len(set); i++ {
		if got := b.Rank(set[i]); got != i {
			t.Fatalf("rank(%d) = %d, want %d", set[i], got, i)
		}
	}
	if got := b.Select(len(set)); got != -1 {
		t.Fatalf("select out of range = %d, want -1", got)
	}
}

func TestAtomicBitmapConcurrentDisjoint(t *testing.T) {
	const n = 10_000
	a := NewAtomic(n)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += 8 {
				if i%2 == 0 {
					a.SetAtomic(i, bitfield.Relaxed)
				}
			}
		}(w)
	}
	wg.Wait()

	frozen := a.Freeze()
	for i := 0; i < n; i++ {
		want := i%2 == 0
		if got := frozen.Get(i); got != want {
			t.Fatalf("index %d: got %v want %v", i, got, want)
		}
	}
}
