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

package cyclic

import (
	"fmt"
	"math/rand/v2"
	"net/netip"
	"slices"
	"sort"
	"strconv"
	"strings"

	"lukechampine.com/uint128"

	"github.com/carverauto/cyclescan/pkg/addr"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

// Space is a dense, indexable set of addresses.
type Space interface {
	Size() uint128.Uint128
	At(i uint128.Uint128) netip.Addr
	IndexOf(a netip.Addr) (uint128.Uint128, bool)
}

// V4Range is a run of consecutive IPv4 addresses.
type V4Range struct {
	Start uint32
	Count uint64
}

// V4Ranges concatenates disjoint IPv4 runs into one index space.
type V4Ranges struct {
	ranges     []V4Range
	cumulative []uint64
	total      uint64
}

// NewV4Ranges sorts and merges runs, then indexes them.
func NewV4Ranges(ranges []V4Range) *V4Ranges {
	merged := mergeV4(ranges)

	r := &V4Ranges{ranges: merged, cumulative: make([]uint64, len(merged))}
	for i, rg := range merged {
		r.cumulative[i] = r.total
		r.total += rg.Count
	}

	return r
}

func mergeV4(in []V4Range) []V4Range {
	rs := slices.Clone(in)
	rs = slices.DeleteFunc(rs, func(r V4Range) bool { return r.Count == 0 })
	sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })

	out := rs[:0]

	for _, r := range rs {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			end := uint64(prev.Start) + prev.Count

			if uint64(r.Start) <= end {
				if e := uint64(r.Start) + r.Count; e > end {
					prev.Count = e - uint64(prev.Start)
				}

				continue
			}
		}

		out = append(out, r)
	}

	return out
}

// ParseV4Ranges accepts CIDR prefixes, a-b ranges and single addresses.
func ParseV4Ranges(specs []string) (*V4Ranges, error) {
	ranges := make([]V4Range, 0, len(specs))

	for _, s := range specs {
		lo, hi, err := parseSpan(s)
		if err != nil {
			return nil, err
		}

		if !lo.Is4() {
			return nil, fmt.Errorf("%w: %w: %q", scanerr.ErrConfigFatal, ErrMixedFamilies, s)
		}

		a, b := addr.V4ToUint32(lo), addr.V4ToUint32(hi)
		ranges = append(ranges, V4Range{Start: a, Count: uint64(b) - uint64(a) + 1})
	}

	return NewV4Ranges(ranges), nil
}

// Size returns the number of addresses.
func (r *V4Ranges) Size() uint128.Uint128 { return uint128.From64(r.total) }

// Ranges returns the merged runs.
func (r *V4Ranges) Ranges() []V4Range { return r.ranges }

// At returns the i-th address.
func (r *V4Ranges) At(i uint128.Uint128) netip.Addr {
	return addr.Uint32ToV4(r.AtUint32(i.Lo))
}

// AtUint32 returns the i-th address as an integer.
func (r *V4Ranges) AtUint32(i uint64) uint32 {
	j := sort.Search(len(r.cumulative), func(k int) bool { return r.cumulative[k] > i }) - 1
	return r.ranges[j].Start + uint32(i-r.cumulative[j])
}

// IndexOf returns the dense index of a.
func (r *V4Ranges) IndexOf(a netip.Addr) (uint128.Uint128, bool) {
	if !a.Unmap().Is4() {
		return uint128.Zero, false
	}

	idx, ok := r.IndexOfUint32(addr.V4ToUint32(a))

	return uint128.From64(idx), ok
}

// IndexOfUint32 returns the dense index of an integer address.
func (r *V4Ranges) IndexOfUint32(v uint32) (uint64, bool) {
	j := sort.Search(len(r.ranges), func(k int) bool { return r.ranges[k].Start > v }) - 1
	if j < 0 {
		return 0, false
	}

	rg := r.ranges[j]
	if off := uint64(v - rg.Start); off < rg.Count {
		return r.cumulative[j] + off, true
	}

	return 0, false
}

// V6Range is one contiguous run of IPv6 addresses.
type V6Range struct {
	start uint128.Uint128
	count uint128.Uint128
}

// ParseV6Range accepts a prefix or an a-b range. Runs wider than the prime
// table are rejected.
func ParseV6Range(s string) (*V6Range, error) {
	lo, hi, err := parseSpan(s)
	if err != nil {
		return nil, err
	}

	if lo.Is4() {
		return nil, fmt.Errorf("%w: %w: %q", scanerr.ErrConfigFatal, ErrMixedFamilies, s)
	}

	a, b := addr.V6ToUint128(lo), addr.V6ToUint128(hi)

	span := b.Sub(a)
	if span.Len() > MaxBits {
		return nil, fmt.Errorf("%w: %w: %q", scanerr.ErrConfigFatal, ErrRangeTooLarge, s)
	}

	return &V6Range{start: a, count: span.Add64(1)}, nil
}

// Size returns the number of addresses.
func (r *V6Range) Size() uint128.Uint128 { return r.count }

// At returns the i-th address.
func (r *V6Range) At(i uint128.Uint128) netip.Addr {
	return addr.Uint128ToV6(r.start.Add(i))
}

// IndexOf returns the dense index of a.
func (r *V6Range) IndexOf(a netip.Addr) (uint128.Uint128, bool) {
	if !a.Is6() || a.Is4In6() {
		return uint128.Zero, false
	}

	return r.IndexOfUint128(addr.V6ToUint128(a))
}

// IndexOfUint128 returns the dense index of an integer address.
func (r *V6Range) IndexOfUint128(v uint128.Uint128) (uint128.Uint128, bool) {
	if v.Cmp(r.start) < 0 {
		return uint128.Zero, false
	}

	off := v.Sub(r.start)
	if off.Cmp(r.count) >= 0 {
		return uint128.Zero, false
	}

	return off, true
}

// V6Pattern enumerates every address matching base on the fixed bits and
// taking any value on the free bits. Index bit j lands on the j-th free bit
// counted from the least significant end.
type V6Pattern struct {
	base uint128.Uint128
	mask uint128.Uint128
	free []uint
}

// NewV6Pattern builds a pattern from a base address and a free-bit mask.
func NewV6Pattern(base, mask uint128.Uint128) (*V6Pattern, error) {
	p := &V6Pattern{base: base.And(mask.Xor(uint128.Max)), mask: mask}

	for i := uint(0); i < 128; i++ {
		if !mask.Rsh(i).And64(1).IsZero() {
			p.free = append(p.free, i)
		}
	}

	if len(p.free) > MaxBits {
		return nil, fmt.Errorf("%w: %w: %d free bits", scanerr.ErrConfigFatal, ErrRangeTooLarge, len(p.free))
	}

	return p, nil
}

// Size returns 2^free.
func (p *V6Pattern) Size() uint128.Uint128 { return uint128.From64(1).Lsh(uint(len(p.free))) }

// Compose scatters i across the free bits.
func (p *V6Pattern) Compose(i uint128.Uint128) uint128.Uint128 {
	v := p.base
	for j, pos := range p.free {
		if !i.Rsh(uint(j)).And64(1).IsZero() {
			v = v.Or(uint128.From64(1).Lsh(pos))
		}
	}

	return v
}

// At returns the i-th address.
func (p *V6Pattern) At(i uint128.Uint128) netip.Addr { return addr.Uint128ToV6(p.Compose(i)) }

// IndexOf gathers the free bits of a back into an index.
func (p *V6Pattern) IndexOf(a netip.Addr) (uint128.Uint128, bool) {
	return p.IndexOfUint128(addr.V6ToUint128(a))
}

// IndexOfUint128 gathers the free bits of an integer address.
func (p *V6Pattern) IndexOfUint128(v uint128.Uint128) (uint128.Uint128, bool) {
	if !v.And(p.mask.Xor(uint128.Max)).Equals(p.base) {
		return uint128.Zero, false
	}

	idx := uint128.Zero
	for j, pos := range p.free {
		if !v.Rsh(pos).And64(1).IsZero() {
			idx = idx.Or(uint128.From64(1).Lsh(uint(j)))
		}
	}

	return idx, true
}

// V6List indexes an explicit address list.
type V6List struct {
	addrs []netip.Addr
}

// NewV6List copies addrs.
func NewV6List(addrs []netip.Addr) *V6List { return &V6List{addrs: slices.Clone(addrs)} }

// Size returns the list length.
func (l *V6List) Size() uint128.Uint128 { return uint128.From64(uint64(len(l.addrs))) }

// At returns the i-th address.
func (l *V6List) At(i uint128.Uint128) netip.Addr { return l.addrs[i.Lo] }

// IndexOf is a linear search; lists are only used for small seed sets.
func (l *V6List) IndexOf(a netip.Addr) (uint128.Uint128, bool) {
	if i := slices.Index(l.addrs, a); i >= 0 {
		return uint128.From64(uint64(i)), true
	}

	return uint128.Zero, false
}

func parseSpan(s string) (lo, hi netip.Addr, err error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.Contains(s, "/"):
		p, perr := netip.ParsePrefix(s)
		if perr != nil {
			return lo, hi, fmt.Errorf("%w: %w: %w", scanerr.ErrConfigFatal, ErrBadTarget, perr)
		}

		p = p.Masked()
		lo = p.Addr()
		hostBits := lo.BitLen() - p.Bits()

		if lo.Is4() {
			v := addr.V4ToUint32(lo)
			return lo, addr.Uint32ToV4(v | uint32(uint64(1)<<hostBits-1)), nil
		}

		v := addr.V6ToUint128(lo)

		return lo, addr.Uint128ToV6(v.Or(addr.Mask(p.Bits()).Xor(uint128.Max))), nil
	case strings.Contains(s, "-"):
		a, b, _ := strings.Cut(s, "-")

		lo, err = netip.ParseAddr(strings.TrimSpace(a))
		if err == nil {
			hi, err = netip.ParseAddr(strings.TrimSpace(b))
		}

		if err != nil {
			return lo, hi, fmt.Errorf("%w: %w: %w", scanerr.ErrConfigFatal, ErrBadTarget, err)
		}

		lo, hi = lo.Unmap(), hi.Unmap()
		if lo.Is4() != hi.Is4() {
			return lo, hi, fmt.Errorf("%w: %w: %q", scanerr.ErrConfigFatal, ErrMixedFamilies, s)
		}

		if hi.Less(lo) {
			return lo, hi, fmt.Errorf("%w: %w: reversed range %q", scanerr.ErrConfigFatal, ErrBadTarget, s)
		}

		return lo, hi, nil
	default:
		a, perr := netip.ParseAddr(s)
		if perr != nil {
			return lo, hi, fmt.Errorf("%w: %w: %w", scanerr.ErrConfigFatal, ErrBadTarget, perr)
		}

		a = a.Unmap()

		return a, a, nil
	}
}

// Blocklist answers membership for excluded IPv4 and IPv6 spans.
type Blocklist struct {
	v4 *V4Ranges
	v6 []v6Span
}

type v6Span struct{ lo, hi uint128.Uint128 }

// ParseBlocklist builds a Blocklist from prefix, range and address entries.
// Blank lines and # comments are skipped.
func ParseBlocklist(lines []string) (*Blocklist, error) {
	var v4 []V4Range

	b := &Blocklist{}

	for _, line := range lines {
		line, _, _ = strings.Cut(line, "#")
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		lo, hi, err := parseSpan(line)
		if err != nil {
			return nil, err
		}

		if lo.Is4() {
			a, z := addr.V4ToUint32(lo), addr.V4ToUint32(hi)
			v4 = append(v4, V4Range{Start: a, Count: uint64(z) - uint64(a) + 1})

			continue
		}

		b.v6 = append(b.v6, v6Span{lo: addr.V6ToUint128(lo), hi: addr.V6ToUint128(hi)})
	}

	b.v4 = NewV4Ranges(v4)

	return b, nil
}

// Contains reports whether a is excluded.
func (b *Blocklist) Contains(a netip.Addr) bool {
	if b == nil {
		return false
	}

	a = a.Unmap()
	if a.Is4() {
		_, ok := b.v4.IndexOfUint32(addr.V4ToUint32(a))
		return ok
	}

	v := addr.V6ToUint128(a)
	for _, s := range b.v6 {
		if v.Cmp(s.lo) >= 0 && v.Cmp(s.hi) <= 0 {
			return true
		}
	}

	return false
}

// Targets walks a Space crossed with a port list in permuted order.
type Targets struct {
	cyc     *Cyclic
	space   Space
	ports   []uint16
	exclude *Blocklist
	skipped uint64
}

// NewTargets builds a Targets over space x ports. An empty port list means
// a single port-less probe per address.
func NewTargets(space Space, ports []uint16, rng *rand.Rand) (*Targets, error) {
	portCount := uint64(len(ports))
	if portCount == 0 {
		portCount = 1
	}

	cyc, err := NewWithPorts(space.Size(), portCount, rng)
	if err != nil {
		return nil, err
	}

	return &Targets{cyc: cyc, space: space, ports: ports}, nil
}

// SetExclude installs a blocklist consulted on every target.
func (t *Targets) SetExclude(b *Blocklist) { t.exclude = b }

// Shard returns the k-th of n disjoint slices of this walk.
func (t *Targets) Shard(k, n int) (*Targets, error) {
	cyc, err := t.cyc.Split(k, n)
	if err != nil {
		return nil, err
	}

	return &Targets{cyc: cyc, space: t.space, ports: t.ports, exclude: t.exclude}, nil
}

// Next returns the next target, skipping holes and excluded addresses.
func (t *Targets) Next() (netip.Addr, uint16, bool) {
	size := t.space.Size()

	for {
		v, ok := t.cyc.Next()
		if !ok {
			return netip.Addr{}, 0, false
		}

		idx, ok := t.cyc.Index(v)
		if !ok {
			continue
		}

		ipIdx, portIdx := t.cyc.SplitIndex(idx)
		if ipIdx.Cmp(size) >= 0 {
			continue
		}

		var port uint16

		if len(t.ports) > 0 {
			if portIdx >= uint64(len(t.ports)) {
				continue
			}

			port = t.ports[portIdx]
		}

		a := t.space.At(ipIdx)
		if t.exclude.Contains(a) {
			t.skipped++
			continue
		}

		return a, port, true
	}
}

// Reset rewinds to the start of this shard.
func (t *Targets) Reset() {
	t.cyc.Reset()
	t.skipped = 0
}

// Cyclic exposes the underlying iterator.
func (t *Targets) Cyclic() *Cyclic { return t.cyc }

// Space returns the address space.
func (t *Targets) Space() Space { return t.space }

// Ports returns the port list.
func (t *Targets) Ports() []uint16 { return t.ports }

// Excluded returns how many targets the blocklist removed.
func (t *Targets) Excluded() uint64 { return t.skipped }

// parsePortRange parses "80" or "1000-2000". Any character that is not
// part of a decimal port is an error.
func parsePortRange(part string) (lo, hi int, err error) {
	a, b, isRange := strings.Cut(part, "-")
	if !isRange {
		b = a
	}

	l, errLo := strconv.ParseUint(strings.TrimSpace(a), 10, 16)
	h, errHi := strconv.ParseUint(strings.TrimSpace(b), 10, 16)

	if errLo != nil || errHi != nil {
		return 0, 0, fmt.Errorf("%w: invalid port %q", scanerr.ErrConfigFatal, part)
	}

	if l > h {
		return 0, 0, fmt.Errorf("%w: port range out of bounds %q", scanerr.ErrConfigFatal, part)
	}

	return int(l), int(h), nil
}

// ParsePorts parses "80,443,1000-2000" into a deduplicated list, preserving
// first-seen order.
func ParsePorts(s string) ([]uint16, error) {
	var out []uint16

	seen := make(map[uint16]struct{})

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parsePortRange(part)
		if err != nil {
			return nil, err
		}

		for p := lo; p <= hi; p++ {
			if _, dup := seen[uint16(p)]; dup {
				continue
			}

			seen[uint16(p)] = struct{}{}
			out = append(out, uint16(p))
		}
	}

	return out, nil
}
