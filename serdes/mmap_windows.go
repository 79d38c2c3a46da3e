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

//go:build windows

package serdes

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mmapFile maps the whole of f read-only via CreateFileMapping/MapViewOfFile,
// the file-backed counterpart to the anonymous VirtualAlloc mapping
// vm/malloc_windows.go uses for the VM's working memory.
func mmapFile(f *os.File, size int64) ([]byte, func() error, error) {
	if size == 0 {
		return nil, func() error { return nil }, nil
	}
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("serdes: CreateFileMapping: %w", err)
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, nil, fmt.Errorf("serdes: MapViewOfFile: %w", err)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	unmap := func() error {
		err1 := windows.UnmapViewOfFile(addr)
		err2 := windows.CloseHandle(h)
		if err1 != nil {
			return err1
		}
		return err2
	}
	return b, unmap, nil
}
