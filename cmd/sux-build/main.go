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

// Command sux-build constructs a retrieval function over a set of keys,
// stores it to disk, reloads it both into memory and via a memory
// mapping, and re-verifies every key against both reloaded copies.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/succinct-go/sux/config"
	"github.com/succinct-go/sux/retrieval"
	"github.com/succinct-go/sux/serdes"
	"github.com/succinct-go/sux/spooky"
)

var (
	dashKeys    string
	dashN       int
	dashW       int
	dashOut     string
	dashOptions string
	dashVerbose bool
	dashWorkers int
	dashSeed    uint64
)

func init() {
	flag.StringVar(&dashKeys, "keys", "", "UTF-8 keys file, one key per line (mutually exclusive with -n)")
	flag.IntVar(&dashN, "n", 0, "build over the keys \"0\"..\"n-1\" instead of a keys file")
	flag.IntVar(&dashW, "w", 8, "value bit width")
	flag.StringVar(&dashOut, "o", "", "output file (required)")
	flag.StringVar(&dashOptions, "options", "", "JSON or YAML options file for verbose/workers/start_seed; -v/-workers/-seed given on the command line take precedence")
	flag.BoolVar(&dashVerbose, "v", false, "log build progress")
	flag.IntVar(&dashWorkers, "workers", 0, "peeling/assignment worker count (0 = GOMAXPROCS)")
	flag.Uint64Var(&dashSeed, "seed", 0, "first seed to try")
}

func exitf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func readKeysFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		exitf("opening keys file: %s\n", err)
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		keys = append(keys, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		exitf("reading keys file: %s\n", err)
	}
	return keys
}

func sequentialKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

func main() {
	flag.Parse()

	if dashOut == "" {
		exitf("missing required -o output file\n")
	}
	if dashKeys == "" && dashN <= 0 {
		exitf("one of -keys or -n is required\n")
	}
	if dashKeys != "" && dashN > 0 {
		exitf("-keys and -n are mutually exclusive\n")
	}

	opts := &config.Options{}
	if dashOptions != "" {
		loaded, err := config.Load(dashOptions)
		if err != nil {
			exitf("loading options file: %s\n", err)
		}
		opts = loaded
	}
	if dashVerbose {
		opts.Verbose = true
	}
	if dashWorkers != 0 {
		opts.Workers = dashWorkers
	}
	if dashSeed != 0 {
		opts.StartSeed = dashSeed
	}

	var words []string
	if dashKeys != "" {
		words = readKeysFile(dashKeys)
	} else {
		words = sequentialKeys(dashN)
	}
	if len(words) == 0 {
		exitf("no keys to build over\n")
	}

	keys := make([]spooky.StringKey, len(words))
	values := make([]uint64, len(words))
	for i, w := range words {
		keys[i] = spooky.StringKey(w)
		values[i] = uint64(i)
	}

	var buildOpts []retrieval.Option
	if opts.Verbose {
		buildOpts = append(buildOpts, retrieval.WithLogger(log.New(os.Stderr, "", log.LstdFlags)))
	}
	if opts.Workers > 0 {
		buildOpts = append(buildOpts, retrieval.WithWorkers(opts.Workers))
	}
	if opts.StartSeed != 0 {
		buildOpts = append(buildOpts, retrieval.WithStartSeed(opts.StartSeed))
	}

	fn := retrieval.Build(keys, values, dashW, buildOpts...)

	if err := serdes.Store(fn, dashOut); err != nil {
		exitf("storing function: %s\n", err)
	}

	loaded, err := serdes.Load(dashOut)
	if err != nil {
		exitf("reloading function: %s\n", err)
	}
	defer loaded.Close()
	verify("in-memory reload", loaded.Value, keys, values)

	mapped, err := serdes.Map(dashOut)
	if err != nil {
		exitf("memory-mapping function: %s\n", err)
	}
	defer mapped.Close()
	verify("memory-mapped reload", mapped.Value, keys, values)

	fmt.Printf("ok: %d keys, %d bits/key budget, wrote %s\n", len(words), dashW, dashOut)
}

func verify(label string, fn *retrieval.Function, keys []spooky.StringKey, values []uint64) {
	for i, k := range keys {
		got := retrieval.Get(fn, k)
		if got != values[i] {
			exitf("%s: key %q: got %d, want %d\n", label, string(k), got, values[i])
		}
	}
}
