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

import "math"

// tableEntry is one row of the fixed segment-length/expansion table,
// (log2NThreshold, segmentLength, expansion).
type tableEntry struct {
	log2NThreshold int
	l              int
	c              float64
}

// params is sorted descending by log2NThreshold, matching the search order
// ("pick the first entry whose threshold is satisfied").
var params = []tableEntry{
	{26, 512, 1.10},
	{25, 256, 1.11},
	{24, 512, 1.11},
	{23, 256, 1.11},
	{22, 512, 1.12},
	{21, 256, 1.12},
	{20, 128, 1.13},
	{19, 128, 1.14},
	{18, 64, 1.15},
	{17, 64, 1.16},
	{16, 64, 1.18},
	{15, 32, 1.20},
	{14, 32, 1.21},
	{13, 32, 1.22},
	{0, 1, 1.23},
}

const epsilon = 0.001

// geometry holds the derived per-chunk layout constants for one build
// attempt.
type geometry struct {
	highBits  uint
	log2L     uint
	l         int
	c         float64
	numChunks int
	chunkMask uint64
}

// selectParams derives the chunk/segment geometry for n keys, walking the
// fixed parameter table and shrinking high_bits while the resulting
// expansion factor exceeds 1.11, per the teacher's PARAMS-table search.
func selectParams(n int) geometry {
	highBits := 0
	t := math.Log(float64(n) * epsilon * epsilon / 2)
	if t > 0 {
		highBits = int(math.Ceil((t - math.Log(t)) / math.Ln2))
		if highBits < 0 {
			highBits = 0
		}
	}

	var l int
	var c float64
	for {
		l, c = lookup(n, highBits)
		if highBits == 0 || c <= 1.11 {
			break
		}
		highBits--
	}

	log2L := 0
	for (1 << uint(log2L)) < l {
		log2L++
	}

	return geometry{
		highBits:  uint(highBits),
		log2L:     uint(log2L),
		l:         l,
		c:         c,
		numChunks: 1 << uint(highBits),
		chunkMask: uint64(1<<uint(highBits)) - 1,
	}
}

// lookup returns the (l, c) of the first table entry (scanned in
// descending threshold order) whose threshold is satisfied by
// n >> highBits.
func lookup(n, highBits int) (int, float64) {
	budget := n >> uint(highBits)
	for _, e := range params {
		if (1 << uint(e.log2NThreshold)) <= budget {
			return e.l, e.c
		}
	}
	// The table's last entry has threshold 0, which always matches.
	last := params[len(params)-1]
	return last.l, last.c
}
