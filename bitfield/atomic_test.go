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

import (
	"sync"
	"testing"
)

func TestAtomicConcurrentDisjointStripes(t *testing.T) {
	const (
		bitWidth = 8 // power of two: no straddling
		length   = 10_000
		workers  = 8
	)
	v := NewAtomicVector(bitWidth, length)

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := id; i < length; i += workers {
				v.SetAtomic(i, uint64(id), Relaxed)
			}
		}(id)
	}
	wg.Wait()

	for i := 0; i < length; i++ {
		want := uint64(i % workers)
		if got := v.GetAtomic(i, Relaxed); got != want {
			t.Fatalf("index %d: got %d want %d", i, got, want)
		}
	}
}

func TestAtomicGetSetRoundTrip(t *testing.T) {
	v := NewAtomicVector(5, 200)
	for i := 0; i < v.Len(); i++ {
		v.SetAtomic(i, uint64(i%32), SeqCst)
	}
	for i := 0; i < v.Len(); i++ {
		if got := v.GetAtomic(i, SeqCst); got != uint64(i%32) {
			t.Fatalf("index %d: got %d want %d", i, got, i%32)
		}
	}
}

func TestFreezeSharesBackingStorage(t *testing.T) {
	v := NewAtomicVector(9, 500)
	for i := 0; i < v.Len(); i++ {
		v.SetAtomic(i, uint64(i), Relaxed)
	}
	frozen := v.Freeze()
	for i := 0; i < frozen.Len(); i++ {
		if got := frozen.Get(i); got != uint64(i) {
			t.Fatalf("index %d: got %d want %d", i, got, i)
		}
	}
}

func TestSetAtomicWordWidthPanics(t *testing.T) {
	v := NewAtomicVector(64, 4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic setting bit width 64 atomically")
		}
	}()
	v.SetAtomic(0, 1, Relaxed)
}
