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
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/succinct-go/sux/bitfield"
	"github.com/succinct-go/sux/spooky"
)

// maxDuplicateRetries bounds the number of seed bumps the builder will
// attempt before concluding duplicate signatures reflect true duplicate
// keys rather than hash collisions.
const maxDuplicateRetries = 3

// peelBlockSize is the size of the atomic cursor's work unit during
// peeling, matching the teacher algorithm's 1024-vertex scan blocks.
const peelBlockSize = 1024

// Option configures a Build call. The pattern mirrors tenant.Manager's
// functional options: Build starts from default settings and applies
// each opt to them before the first build attempt.
type Option func(*config)

type config struct {
	logger    *log.Logger
	workers   int
	startSeed uint64
}

// WithLogger directs diagnostic output (attempt/seed/retry messages) to l.
// If unset, the builder logs nothing.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithWorkers overrides the number of concurrent peeling/assignment
// workers. If unset or <= 0, it defaults to min(numChunks,
// runtime.GOMAXPROCS(0)).
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithStartSeed overrides the first seed attempted (default 0), useful for
// deterministic tests that want to skip straight past a known collision.
func WithStartSeed(seed uint64) Option {
	return func(c *config) { c.startSeed = seed }
}

// Build constructs a retrieval function mapping each key[i] to value[i].
// keys and values are read fully on every attempt (they must be
// re-iterable across retries, which a plain slice trivially satisfies).
// Build panics if duplicate 128-bit signatures persist across three
// consecutive seeds, per spec's fatal-construction-failure contract.
func Build[K spooky.Remap](keys []K, values []uint64, bitWidth int, opts ...Option) *Function {
	if len(values) < len(keys) {
		panic("retrieval: not enough values for keys")
	}
	if bitWidth <= 0 || bitWidth >= 64 {
		panic("retrieval: bit width must be in (0, 64)")
	}
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	attemptID := uuid.New()
	logf := func(format string, args ...any) {
		if cfg.logger != nil {
			cfg.logger.Printf("[retrieval %s] "+format, append([]any{attemptID}, args...)...)
		}
	}

	n := len(keys)
	geo := selectParams(n)
	dupCount := 0

	for seed := cfg.startSeed; ; seed++ {
		logf("signing: seed=%d attempt high_bits=%d l=%d c=%.3f", seed, geo.highBits, geo.l, geo.c)

		sigs := make([]signature, n)
		for i, k := range keys {
			s0, s1 := k.Remap(seed)
			sigs[i] = signature{s0: s0, s1: s1, value: values[i]}
		}

		sortSignatures(sigs)

		counts, dup := duplicateScan(sigs, geo.highBits, geo.chunkMask, geo.numChunks)
		if dup {
			dupCount++
			logf("duplicate signature detected, retry %d/%d", dupCount, maxDuplicateRetries)
			if dupCount >= maxDuplicateRetries {
				panic("duplicate keys")
			}
			continue
		}

		cumul := make([]int, geo.numChunks+1)
		for i := 0; i < geo.numChunks; i++ {
			cumul[i+1] = cumul[i] + counts[i]
		}

		maxCount := 0
		for _, c := range counts {
			if c > maxCount {
				maxCount = c
			}
		}
		segmentSize := (ceilf(float64(maxCount)*geo.c) + geo.l + 1) / (geo.l + 2)
		if segmentSize < 1 {
			segmentSize = 1
		}
		numVertices := segmentSize * (geo.l + 2)

		data := bitfield.NewAtomicVector(bitWidth, geo.numChunks*numVertices)

		workers := cfg.workers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		if workers > geo.numChunks {
			workers = geo.numChunks
		}
		if workers < 1 {
			workers = 1
		}

		var chunkCursor atomic.Int64
		var fail atomic.Bool

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					c := int(chunkCursor.Add(1) - 1)
					if c >= geo.numChunks {
						return
					}
					peelAndAssignChunk(sigs[cumul[c]:cumul[c+1]], c, numVertices, segmentSize, geo.log2L, data, &fail)
				}
			}()
		}
		wg.Wait()

		if fail.Load() {
			logf("peeling failed for seed=%d, retrying", seed)
			continue
		}

		logf("build succeeded: seed=%d num_keys=%d bits/key=%.2f", seed, n, float64(data.Len())*float64(bitWidth)/float64(n))

		return &Function{
			seed:        seed,
			log2L:       geo.log2L,
			highBits:    geo.highBits,
			chunkMask:   geo.chunkMask,
			numKeys:     n,
			segmentSize: segmentSize,
			bitWidth:    bitWidth,
			values:      data.Freeze(),
		}
	}
}

func ceilf(x float64) int {
	i := int(x)
	if float64(i) < x {
		i++
	}
	return i
}

// peelAndAssignChunk runs the per-chunk peeling and value-assignment
// passes for one worker's claimed chunk. sigs is the chunk's slice of the
// globally sorted signatures; chunk is the chunk's index, used only to
// compute its offset into the shared data vector.
func peelAndAssignChunk(sigs []signature, chunk, numVertices, segmentSize int, log2L uint, data *bitfield.AtomicVector, fail *atomic.Bool) {
	edgeLists := make([]edgeList, numVertices)
	for i, s := range sigs {
		for _, v := range edge(s.s0, s.s1, log2L, segmentSize) {
			edgeLists[v].add(i)
		}
	}

	var cursor atomic.Int64
	var stack []int

	for {
		if fail.Load() {
			return
		}
		start := int(cursor.Add(peelBlockSize) - peelBlockSize)
		if start >= numVertices {
			break
		}
		end := start + peelBlockSize
		if end > numVertices {
			end = numVertices
		}

		for v := start; v < end; v++ {
			if edgeLists[v].degree() != 1 {
				continue
			}
			pos := len(stack)
			curr := len(stack)
			stack = append(stack, v)

			for pos < len(stack) {
				vv := stack[pos]
				pos++

				edgeLists[vv].dec()
				if edgeLists[vv].degree() != 0 {
					continue
				}
				edgeIndex := edgeLists[vv].edgeIndex()

				stack[curr] = vv
				curr++

				for _, x := range edge(sigs[edgeIndex].s0, sigs[edgeIndex].s1, log2L, segmentSize) {
					if x != vv {
						edgeLists[x].remove(edgeIndex)
						if edgeLists[x].degree() == 1 {
							stack = append(stack, x)
						}
					}
				}
			}
			stack = stack[:curr]
		}
	}

	if len(sigs) != len(stack) {
		fail.Store(true)
		return
	}

	chunkOffset := chunk * numVertices
	for i := len(stack) - 1; i >= 0; i-- {
		v := stack[i]
		edgeIndex := edgeLists[v].edgeIndex()
		e := edge(sigs[edgeIndex].s0, sigs[edgeIndex].s1, log2L, segmentSize)
		v += chunkOffset
		e[0] += chunkOffset
		e[1] += chunkOffset
		e[2] += chunkOffset

		var other1, other2 int
		switch v {
		case e[0]:
			other1, other2 = e[1], e[2]
		case e[1]:
			other1, other2 = e[0], e[2]
		default:
			other1, other2 = e[0], e[1]
		}

		value := data.GetAtomic(other1, bitfield.Relaxed) ^ data.GetAtomic(other2, bitfield.Relaxed)
		data.SetAtomic(v, sigs[edgeIndex].value^value, bitfield.Relaxed)
	}
}
