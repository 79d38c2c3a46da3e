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

import (
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/succinct-go/sux/bitfield"
	"github.com/succinct-go/sux/retrieval"
)

// Store writes f to path in the layout spec.md §6 describes: a fixed
// scalar header padded to word alignment, followed by the packed value
// vector's raw backing words.
func Store(f *retrieval.Function, path string) error {
	seed, log2L, highBits, chunkMask, numKeys, segmentSize, bitWidth, values := retrieval.RawParts(f)
	h := header{
		seed:        seed,
		log2L:       log2L,
		highBits:    highBits,
		chunkMask:   chunkMask,
		numKeys:     numKeys,
		segmentSize: segmentSize,
		bitWidth:    bitWidth,
		valueLen:    uint64(values.Len()),
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serdes: create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write(h.marshal()); err != nil {
		return fmt.Errorf("serdes: write header: %w", err)
	}
	if err := binaryWriteWords(file, values.Raw()); err != nil {
		return fmt.Errorf("serdes: write values: %w", err)
	}
	return nil
}

func binaryWriteWords(w io.Writer, words []uint64) error {
	if len(words) == 0 {
		return nil
	}
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
	_, err := w.Write(bytes)
	return err
}

// Load reads path fully into an owned buffer and reconstructs the
// retrieval function from it. The returned Cased keeps the buffer alive;
// the function's value vector borrows from it with no copy.
func Load(path string) (*Cased[*retrieval.Function], error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("serdes: stat %s: %w", path, err)
	}
	fileLen := info.Size()
	if fileLen < headerSize {
		return nil, fmt.Errorf("serdes: %s is too short to contain a header", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("serdes: open %s: %w", path, err)
	}
	defer file.Close()

	// Allocate as []uint64 so the buffer is word-aligned, then read into
	// its byte view; this mirrors the reference loader's trick of
	// allocating a Vec<u64> and casting it to bytes to guarantee the
	// alignment the zero-copy reinterpretation below needs.
	wordCount := (fileLen + 7) / 8
	words := make([]uint64, wordCount)
	byteView := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), fileLen)
	if _, err := io.ReadFull(file, byteView); err != nil {
		return nil, fmt.Errorf("serdes: read %s: %w", path, err)
	}
	// Zero-extend any tail byte beyond fileLen within the last word, so
	// the packed vector's unused high bits are deterministically zero.
	wordBytes := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), wordCount*8)
	for i := fileLen; i < int64(len(wordBytes)); i++ {
		wordBytes[i] = 0
	}

	h := unmarshalHeader(byteView[:headerSize])
	valueWords := words[headerSize/8:]
	needed := h.wordsNeeded()
	if len(valueWords) < needed {
		return nil, fmt.Errorf("serdes: %s: truncated value vector (have %d words, need %d)", path, len(valueWords), needed)
	}
	valueWords = valueWords[:max(needed, 1)]

	vec := bitfield.FromRawParts[uint64](valueWords, int(h.bitWidth), int(h.valueLen))
	fn := retrieval.FromRawParts(h.seed, h.log2L, h.highBits, h.chunkMask, h.numKeys, h.segmentSize, h.bitWidth, vec)

	return &Cased[*retrieval.Function]{
		Value:  fn,
		region: &Region{kind: KindOwned, bytes: byteView, words: words},
	}, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Map memory-maps path read-only and reconstructs the retrieval function
// from the mapping with no copy of the value vector's backing words: the
// OS guarantees the mapping's base address is page-aligned, which is a
// multiple of 8, so the bytes immediately following the fixed-size header
// can be reinterpreted in place as []uint64.
func Map(path string) (*Cased[*retrieval.Function], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("serdes: open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("serdes: stat %s: %w", path, err)
	}
	fileLen := info.Size()
	if fileLen < headerSize {
		return nil, fmt.Errorf("serdes: %s is too short to contain a header", path)
	}

	mapped, unmap, err := mmapFile(file, fileLen)
	if err != nil {
		return nil, err
	}

	h := unmarshalHeader(mapped[:headerSize])
	tail := mapped[headerSize:]
	needed := h.wordsNeeded()
	if int64(len(tail)) < int64(needed)*8 {
		unmap()
		return nil, fmt.Errorf("serdes: %s: truncated value vector (have %d bytes, need %d)", path, len(tail), needed*8)
	}

	var valueWords []uint64
	if needed > 0 {
		valueWords = unsafe.Slice((*uint64)(unsafe.Pointer(&tail[0])), needed)
	} else {
		valueWords = make([]uint64, 1)
	}

	vec := bitfield.FromRawParts[uint64](valueWords, int(h.bitWidth), int(h.valueLen))
	fn := retrieval.FromRawParts(h.seed, h.log2L, h.highBits, h.chunkMask, h.numKeys, h.segmentSize, h.bitWidth, vec)

	return &Cased[*retrieval.Function]{
		Value:  fn,
		region: &Region{kind: KindMmap, bytes: mapped, close: unmap},
	}, nil
}
