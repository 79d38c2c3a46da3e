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

// Package config holds the options file format for cmd/sux-build: a
// small JSON or YAML document overriding the driver's logging verbosity,
// worker count, and progress reporting interval. Nothing in the
// retrieval, bitfield, eliasfano, spooky, bitmap, or serdes packages
// reads this format; they take every parameter as a direct function
// argument or Option.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"sigs.k8s.io/yaml"
)

// Options is the root-level options document for cmd/sux-build.
type Options struct {
	// Verbose turns on per-attempt build logging (retrieval.WithLogger).
	Verbose bool `json:"verbose,omitempty"`
	// Workers overrides the number of peeling/assignment worker
	// goroutines. Zero means let retrieval.Build pick GOMAXPROCS.
	Workers int `json:"workers,omitempty"`
	// StartSeed overrides the first seed retrieval.Build tries.
	StartSeed uint64 `json:"start_seed,omitempty"`
	// ProgressEvery is a progress-log interval in chunks. It is decoded
	// from the options file, but cmd/sux-build does not read it and no
	// progress lines are logged.
	ProgressEvery int `json:"progress_every,omitempty"`
}

// Decode reads a root-level Options document from src. The format may
// be JSON or YAML; both are unmarshaled through
// sigs.k8s.io/yaml, which accepts strict JSON as a subset of YAML, so a
// single code path serves either extension.
func Decode(src io.Reader) (*Options, error) {
	body, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	opts := new(Options)
	if err := yaml.Unmarshal(body, opts); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}

// Load opens path and decodes it as an Options document. path's
// extension (.json or .yaml/.yml) is purely informational: both are
// accepted regardless, matching db.OpenDefinition's dual-extension
// handling of definition.json/definition.yaml.
func Load(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return opts, nil
}

// LooksLikeOptionsFile reports whether path has a recognized options
// file extension, for driver code deciding whether a bare positional
// argument is a keys file or an options file.
func LooksLikeOptionsFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".json") ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml")
}
