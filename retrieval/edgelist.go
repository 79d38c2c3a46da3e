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

// edgeList packs a vertex's current degree and (once degree reaches one)
// the index of its sole remaining incident edge into a single word:
// the top 10 bits hold the degree, the rest the sum of the incident edge
// indices, which equals the remaining edge's index at degree one. Each
// edge touches three vertices, but a vertex's degree is not bounded by
// three; 10 bits hold degrees up to 1023, and add does not check for
// overflow.
type edgeList uint64

const (
	edgeListDegShift = 64 - 10
	edgeListDeg      = uint64(1) << edgeListDegShift
	edgeListEdgeMask = edgeListDeg - 1
)

func (e *edgeList) add(edge int) {
	*e += edgeList(edgeListDeg | uint64(edge))
}

func (e *edgeList) remove(edge int) {
	*e -= edgeList(edgeListDeg | uint64(edge))
}

func (e edgeList) degree() int {
	return int(uint64(e) >> edgeListDegShift)
}

func (e edgeList) edgeIndex() int {
	return int(uint64(e) & edgeListEdgeMask)
}

func (e *edgeList) dec() {
	*e -= edgeList(edgeListDeg)
}
