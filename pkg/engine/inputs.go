/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package engine

import (
	"io"
	"net/netip"
	"os"
	"strings"

	"lukechampine.com/uint128"

	"github.com/carverauto/cyclescan/pkg/addr"
	"github.com/carverauto/cyclescan/pkg/config"
	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/dedup"
	"github.com/carverauto/cyclescan/pkg/output"
	"github.com/carverauto/cyclescan/pkg/prefixtree"
	"github.com/carverauto/cyclescan/pkg/receiver"
	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/carverauto/cyclescan/pkg/spacetree"
)

const (
	bloomFalsePositive = 1e-6
	// bloomMaxExpected caps the responders a Bloom filter is sized for.
	bloomMaxExpected = 1 << 24
)

func configErr(err error) error {
	if err == nil || scanerr.IsFatal(err) {
		return err
	}

	return scanerr.Config("%v", err)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scanerr.Config("open %s: %v", path, err)
	}
	defer f.Close()

	lines, err := addr.ReadLines(f)
	if err != nil {
		return nil, scanerr.Config("read %s: %v", path, err)
	}

	return lines, nil
}

func readV6List(path string) ([]netip.Addr, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	out := make([]netip.Addr, 0, len(lines))

	for _, l := range lines {
		a, err := netip.ParseAddr(l)
		if err != nil || !a.Is6() || a.Is4In6() {
			return nil, scanerr.Config("%s: bad IPv6 address %q", path, l)
		}

		out = append(out, a)
	}

	return out, nil
}

func readSeeds(path string) ([]netip.Addr, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scanerr.Config("open %s: %v", path, err)
	}
	defer f.Close()

	seeds, err := spacetree.LoadSeeds(f)
	if err != nil {
		return nil, configErr(err)
	}

	return seeds, nil
}

func readPrefixes(path string) ([]netip.Prefix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scanerr.Config("open %s: %v", path, err)
	}
	defer f.Close()

	prefixes, err := prefixtree.LoadPrefixes(f)
	if err != nil {
		return nil, configErr(err)
	}

	if len(prefixes) == 0 {
		return nil, scanerr.Config("%s: no prefixes", path)
	}

	return prefixes, nil
}

// parsePattern reads "base,mask" into a pattern space.
func parsePattern(s string) (*cyclic.V6Pattern, error) {
	b, m, ok := strings.Cut(s, ",")
	if !ok {
		return nil, scanerr.Config("pattern %q: want base,mask", s)
	}

	base, err := netip.ParseAddr(strings.TrimSpace(b))
	if err != nil {
		return nil, scanerr.Config("pattern base: %v", err)
	}

	mask, err := netip.ParseAddr(strings.TrimSpace(m))
	if err != nil {
		return nil, scanerr.Config("pattern mask: %v", err)
	}

	p, err := cyclic.NewV6Pattern(addr.V6ToUint128(base), addr.V6ToUint128(mask))

	return p, configErr(err)
}

// targetSpace builds the address space of the cyclic strategies.
func targetSpace(c *config.ScanConfig) (cyclic.Space, error) {
	if !c.IPv6 {
		r, err := cyclic.ParseV4Ranges(c.Targets)
		if err != nil {
			return nil, configErr(err)
		}

		return r, nil
	}

	switch {
	case c.Pattern != "":
		return parsePattern(c.Pattern)
	case c.TargetFile != "":
		addrs, err := readV6List(c.TargetFile)
		if err != nil {
			return nil, err
		}

		return cyclic.NewV6List(addrs), nil
	}

	r, err := cyclic.ParseV6Range(c.Targets[0])
	if err != nil {
		return nil, configErr(err)
	}

	return r, nil
}

func blocklist(c *config.ScanConfig) (*cyclic.Blocklist, error) {
	if c.BlocklistFile == "" {
		return nil, nil
	}

	lines, err := readLines(c.BlocklistFile)
	if err != nil {
		return nil, err
	}

	b, err := cyclic.ParseBlocklist(lines)

	return b, configErr(err)
}

func bloomExpected(space cyclic.Space) uint {
	n := space.Size()
	if n.Cmp64(bloomMaxExpected) > 0 {
		return bloomMaxExpected
	}

	return uint(max(n.Lo, 1024))
}

// addrRecorder picks the address dedup backend. Auto prefers a bitmap over
// the scanned range and falls back to a hash set when the range is too
// large to map.
func addrRecorder(mode string, space cyclic.Space, sink output.Sink) (receiver.Recorder, io.Closer, error) {
	if r, ok := space.(*cyclic.V4Ranges); ok {
		if mode != config.DedupHash {
			bm, err := dedup.NewV4Bitmap(r)
			if err == nil {
				return receiver.NewAddrRecorder[uint32](bm, receiver.V4Key, nil, sink), bm, nil
			}

			if mode == config.DedupBitmap {
				return nil, nil, scanerr.Config("bitmap dedup: %v", err)
			}
		}

		return receiver.NewAddrRecorder[uint32](dedup.NewHashSet[uint32](0), receiver.V4Key, space, sink), nil, nil
	}

	idx, indexed := space.(dedup.V6Indexer)

	switch {
	case indexed && (mode == config.DedupAuto || mode == config.DedupBitmap):
		bm, err := dedup.NewV6Bitmap(idx)
		if err == nil {
			return receiver.NewAddrRecorder[uint128.Uint128](bm, receiver.V6Key, nil, sink), bm, nil
		}

		if mode == config.DedupBitmap {
			return nil, nil, scanerr.Config("bitmap dedup: %v", err)
		}
	case mode == config.DedupBitmap:
		return nil, nil, scanerr.Config("bitmap dedup needs a target range or pattern")
	case mode == config.DedupBloom:
		bf := dedup.NewV6Bloom(bloomExpected(space), bloomFalsePositive)
		return receiver.NewAddrRecorder[uint128.Uint128](bf, receiver.V6Key, space, sink), nil, nil
	}

	return receiver.NewAddrRecorder[uint128.Uint128](dedup.NewHashSet[uint128.Uint128](0), receiver.V6Key, space, sink), nil, nil
}

// addrPortRecorder is addrRecorder for (address, port) hits.
func addrPortRecorder(mode string, space cyclic.Space, ports []uint16, sink output.Sink) (receiver.Recorder, io.Closer, error) {
	if r, ok := space.(*cyclic.V4Ranges); ok {
		if mode != config.DedupHash {
			bm, err := dedup.NewV4PortBitmap(r, ports)
			if err == nil {
				return receiver.NewAddrPortRecorder[dedup.V4Port](bm, receiver.V4PortKey, nil, sink), bm, nil
			}

			if mode == config.DedupBitmap {
				return nil, nil, scanerr.Config("bitmap dedup: %v", err)
			}
		}

		return receiver.NewAddrPortRecorder[dedup.V4Port](dedup.NewHashSet[dedup.V4Port](0), receiver.V4PortKey, space, sink), nil, nil
	}

	idx, indexed := space.(dedup.V6Indexer)

	switch {
	case indexed && (mode == config.DedupAuto || mode == config.DedupBitmap):
		bm, err := dedup.NewV6PortBitmap(idx, ports)
		if err == nil {
			return receiver.NewAddrPortRecorder[dedup.V6Port](bm, receiver.V6PortKey, nil, sink), bm, nil
		}

		if mode == config.DedupBitmap {
			return nil, nil, scanerr.Config("bitmap dedup: %v", err)
		}
	case mode == config.DedupBitmap:
		return nil, nil, scanerr.Config("bitmap dedup needs a target range or pattern")
	case mode == config.DedupBloom:
		bf := dedup.NewV6PortBloom(bloomExpected(space), bloomFalsePositive)
		return receiver.NewAddrPortRecorder[dedup.V6Port](bf, receiver.V6PortKey, space, sink), nil, nil
	}

	return receiver.NewAddrPortRecorder[dedup.V6Port](dedup.NewHashSet[dedup.V6Port](0), receiver.V6PortKey, space, sink), nil, nil
}

// responderChecker dedups responders of the IPv6 generation strategies,
// whose responders are not confined to a range.
func responderChecker(mode string, expected uint) (dedup.Checker[uint128.Uint128], error) {
	switch mode {
	case config.DedupBitmap:
		return nil, scanerr.Config("bitmap dedup needs a target range or pattern")
	case config.DedupBloom:
		return dedup.NewV6Bloom(min(max(expected, 1024), bloomMaxExpected), bloomFalsePositive), nil
	}

	return dedup.NewHashSet[uint128.Uint128](0), nil
}
