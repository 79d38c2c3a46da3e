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

package eliasfano

import (
	"sync"
	"testing"

	"github.com/succinct-go/sux/bitfield"
)

func TestBuildAndGet(t *testing.T) {
	values := []int{3, 7, 7, 42, 1000}
	b := NewBuilder(1001, len(values))
	for _, v := range values {
		if err := b.Push(v); err != nil {
			t.Fatalf("push(%d): %v", v, err)
		}
	}
	ef := b.Build()
	for i, want := range values {
		if got := ef.Get(i); got != want {
			t.Fatalf("get(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestNonMonotonePushErrors(t *testing.T) {
	values := []int{3, 7, 7, 42, 1000}
	b := NewBuilder(1001, len(values)+1)
	for _, v := range values {
		if err := b.Push(v); err != nil {
			t.Fatalf("push(%d): %v", v, err)
		}
	}
	if err := b.Push(6); err == nil {
		t.Fatal("expected error pushing non-monotone value 6 after 1000")
	}
}

func TestSuccessorPredecessor(t *testing.T) {
	values := []int{3, 7, 7, 42, 1000}
	b := NewBuilder(1001, len(values))
	for _, v := range values {
		_ = b.Push(v)
	}
	ef := b.Build()

	if idx, val, ok := ef.Successor(8); !ok || val != 42 || idx != 3 {
		t.Fatalf("successor(8) = (%d,%d,%v), want (3,42,true)", idx, val, ok)
	}
	if idx, val, ok := ef.Predecessor(8); !ok || val != 7 || idx != 2 {
		t.Fatalf("predecessor(8) = (%d,%d,%v), want (2,7,true)", idx, val, ok)
	}
	if _, _, ok := ef.Successor(1001); ok {
		t.Fatal("expected no successor beyond the largest stored value")
	}
	if _, _, ok := ef.Predecessor(2); ok {
		t.Fatal("expected no predecessor below the smallest stored value")
	}
}

func TestAtomicBuilderRoundTrip(t *testing.T) {
	values := make([]int, 0, 1000)
	v := 0
	for i := 0; i < 1000; i++ {
		v += i % 5
		values = append(values, v)
	}

	b := NewAtomicBuilder(v+1, len(values))
	var wg sync.WaitGroup
	const workers = 8
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(values); i += workers {
				b.Set(i, values[i], bitfield.Relaxed)
			}
		}(w)
	}
	wg.Wait()

	ef := b.Build()
	for i, want := range values {
		if got := ef.Get(i); got != want {
			t.Fatalf("get(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestMemUpperbound(t *testing.T) {
	// u=1001, n=5: q = ceil(1001/5) = 201, ceil(log2(201)) = 8.
	if got, want := MemUpperbound(1001, 5), 2*5+5*8; got != want {
		t.Fatalf("mem upperbound = %d, want %d", got, want)
	}
}
