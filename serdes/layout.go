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

package serdes

import "encoding/binary"

// header is the persisted scalar prefix of a retrieval function:
// seed, log2_l, high_bits, chunk_mask, num_keys, segment_size, bit_width,
// value_len, native-endian, in that order. It is 52 bytes wide, padded to
// 56 (a multiple of 8) so the packed-vector backing words that follow
// start at a word-aligned offset.
type header struct {
	seed        uint64
	log2L       uint32
	highBits    uint32
	chunkMask   uint32
	numKeys     uint64
	segmentSize uint64
	bitWidth    uint64
	valueLen    uint64
}

const (
	headerUnpaddedSize = 8 + 4 + 4 + 4 + 8 + 8 + 8 + 8 // 52
	headerSize         = 56                            // headerUnpaddedSize rounded up to a multiple of 8
)

func (h header) marshal() []byte {
	buf := make([]byte, headerSize)
	e := binary.NativeEndian
	e.PutUint64(buf[0:8], h.seed)
	e.PutUint32(buf[8:12], h.log2L)
	e.PutUint32(buf[12:16], h.highBits)
	e.PutUint32(buf[16:20], h.chunkMask)
	e.PutUint64(buf[20:28], h.numKeys)
	e.PutUint64(buf[28:36], h.segmentSize)
	e.PutUint64(buf[36:44], h.bitWidth)
	e.PutUint64(buf[44:52], h.valueLen)
	// buf[52:56] is alignment padding, left zeroed.
	return buf
}

func unmarshalHeader(buf []byte) header {
	e := binary.NativeEndian
	return header{
		seed:        e.Uint64(buf[0:8]),
		log2L:       e.Uint32(buf[8:12]),
		highBits:    e.Uint32(buf[12:16]),
		chunkMask:   e.Uint32(buf[16:20]),
		numKeys:     e.Uint64(buf[20:28]),
		segmentSize: e.Uint64(buf[28:36]),
		bitWidth:    e.Uint64(buf[36:44]),
		valueLen:    e.Uint64(buf[44:52]),
	}
}

// wordsNeeded returns how many 8-byte words the packed vector backing
// store occupies: ceil(value_len * bit_width / 64).
func (h header) wordsNeeded() int {
	total := h.valueLen * h.bitWidth
	return int((total + 63) / 64)
}
