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

package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSequentialKeys(t *testing.T) {
	got := sequentialKeys(3)
	want := []string{"0", "1", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sequentialKeys(3) = %v, want %v", got, want)
	}
}

func TestReadKeysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	got := readKeysFile(path)
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("readKeysFile(%q) = %v, want %v", path, got, want)
	}
}
