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

package receiver

import (
	"net/netip"
	"strconv"

	"github.com/carverauto/cyclescan/pkg/addr"
	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/dedup"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/output"
	"lukechampine.com/uint128"
)

// Outcome says what a recorder did with a hit.
type Outcome int

const (
	// Recorded means the hit was novel and was kept.
	Recorded Outcome = iota
	// Repeated means the hit was a duplicate or fell outside the scanned range.
	Repeated
	// Ignored means the hit carried nothing this strategy records.
	Ignored
	// Queued means the hit was handed to another goroutine.
	Queued
)

// Recorder consumes validated hits. Recorders are not safe for concurrent
// use; several receivers share one through a Fanin.
type Recorder interface {
	Record(hit *models.Hit) (Outcome, error)
}

// RoundRecorder is reset by the round driver between rounds.
type RoundRecorder interface {
	Recorder
	ResetRound()
}

// V4Key keys IPv4 address checkers.
func V4Key(a netip.Addr) uint32 { return addr.V4ToUint32(a) }

// V6Key keys IPv6 address checkers.
func V6Key(a netip.Addr) uint128.Uint128 { return addr.V6ToUint128(a) }

// V4PortKey keys IPv4 (address, port) checkers.
func V4PortKey(a netip.Addr, p uint16) dedup.V4Port {
	return dedup.V4Port{IP: addr.V4ToUint32(a), Port: p}
}

// V6PortKey keys IPv6 (address, port) checkers.
func V6PortKey(a netip.Addr, p uint16) dedup.V6Port {
	return dedup.V6Port{IP: addr.V6ToUint128(a), Port: p}
}

// AddrRecorder emits each responding address once.
type AddrRecorder[K comparable] struct {
	checker dedup.Checker[K]
	key     func(netip.Addr) K
	scope   cyclic.Space
	sink    output.Sink
}

// NewAddrRecorder builds an address recorder. scope, when non-nil, is the
// range check for checkers that do not do their own.
func NewAddrRecorder[K comparable](checker dedup.Checker[K], key func(netip.Addr) K, scope cyclic.Space, sink output.Sink) *AddrRecorder[K] {
	return &AddrRecorder[K]{checker: checker, key: key, scope: scope, sink: sink}
}

// Record implements Recorder.
func (r *AddrRecorder[K]) Record(hit *models.Hit) (Outcome, error) {
	if !inScope(r.scope, hit.Addr) {
		return Repeated, nil
	}

	k := r.key(hit.Addr)
	if !r.checker.NotMarkedAndValid(k) {
		return Repeated, nil
	}

	r.checker.Set(k)

	return Recorded, r.sink.WriteRecord([]string{hit.Addr.String()})
}

// AddrPortRecorder emits each open (address, port) once.
type AddrPortRecorder[K comparable] struct {
	checker dedup.Checker[K]
	key     func(netip.Addr, uint16) K
	scope   cyclic.Space
	sink    output.Sink
}

// NewAddrPortRecorder builds an (address, port) recorder; scope is as for
// NewAddrRecorder.
func NewAddrPortRecorder[K comparable](checker dedup.Checker[K], key func(netip.Addr, uint16) K, scope cyclic.Space, sink output.Sink) *AddrPortRecorder[K] {
	return &AddrPortRecorder[K]{checker: checker, key: key, scope: scope, sink: sink}
}

// Record implements Recorder.
func (r *AddrPortRecorder[K]) Record(hit *models.Hit) (Outcome, error) {
	if !hit.Open {
		return Ignored, nil
	}

	if !inScope(r.scope, hit.Addr) {
		return Repeated, nil
	}

	k := r.key(hit.Addr, hit.Port)
	if !r.checker.NotMarkedAndValid(k) {
		return Repeated, nil
	}

	r.checker.Set(k)

	return Recorded, r.sink.WriteRecord([]string{hit.Addr.String(), strconv.Itoa(int(hit.Port))})
}

// AliasedRecorder counts distinct responders per probe code. A code is a
// prefix under test; a prefix whose count approaches the number of probes
// sent into it is aliased.
type AliasedRecorder struct {
	checker dedup.Checker[uint128.Uint128]
	counts  map[uint32]uint64
}

// NewAliasedRecorder counts distinct responders through checker.
func NewAliasedRecorder(checker dedup.Checker[uint128.Uint128]) *AliasedRecorder {
	return &AliasedRecorder{checker: checker, counts: make(map[uint32]uint64)}
}

// Record implements Recorder.
func (r *AliasedRecorder) Record(hit *models.Hit) (Outcome, error) {
	k := addr.V6ToUint128(hit.Addr)
	if !r.checker.NotMarkedAndValid(k) {
		return Repeated, nil
	}

	r.checker.Set(k)
	r.counts[hit.Code]++

	return Recorded, nil
}

// Counts returns the per-code responder counts of the current round.
func (r *AliasedRecorder) Counts() map[uint32]uint64 { return r.counts }

// ResetRound implements RoundRecorder.
func (r *AliasedRecorder) ResetRound() { r.counts = make(map[uint32]uint64) }

// RegionRecorder counts responders per region code for probes tagged with
// this scan's flag.
type RegionRecorder struct {
	flag    uint8
	checker dedup.Checker[uint128.Uint128]
	counts  map[uint32]uint64
}

// NewRegionRecorder ignores hits whose flag is not flag.
func NewRegionRecorder(flag uint8, checker dedup.Checker[uint128.Uint128]) *RegionRecorder {
	return &RegionRecorder{flag: flag, checker: checker, counts: make(map[uint32]uint64)}
}

// Record implements Recorder.
func (r *RegionRecorder) Record(hit *models.Hit) (Outcome, error) {
	if hit.Flag != r.flag {
		return Ignored, nil
	}

	k := addr.V6ToUint128(hit.Addr)
	if !r.checker.NotMarkedAndValid(k) {
		return Repeated, nil
	}

	r.checker.Set(k)
	r.counts[hit.Code]++

	return Recorded, nil
}

// Counts returns the per-code responder counts of the current round.
func (r *RegionRecorder) Counts() map[uint32]uint64 { return r.counts }

// ResetRound implements RoundRecorder.
func (r *RegionRecorder) ResetRound() { r.counts = make(map[uint32]uint64) }

// SpaceTreeRecorder emits novel addresses and counts them per 16-bit region
// code.
type SpaceTreeRecorder struct {
	checker dedup.Checker[uint128.Uint128]
	counts  []uint64
	sink    output.Sink
}

// NewSpaceTreeRecorder emits to sink the addresses checker has not seen.
func NewSpaceTreeRecorder(checker dedup.Checker[uint128.Uint128], sink output.Sink) *SpaceTreeRecorder {
	return &SpaceTreeRecorder{checker: checker, counts: make([]uint64, 1<<16), sink: sink}
}

// Record implements Recorder.
func (r *SpaceTreeRecorder) Record(hit *models.Hit) (Outcome, error) {
	k := addr.V6ToUint128(hit.Addr)
	if !r.checker.NotMarkedAndValid(k) {
		return Repeated, nil
	}

	r.checker.Set(k)
	r.counts[uint16(hit.Code)]++

	return Recorded, r.sink.WriteRecord([]string{hit.Addr.String()})
}

// Counts is indexed by region code.
func (r *SpaceTreeRecorder) Counts() []uint64 { return r.counts }

// ResetRound implements RoundRecorder.
func (r *SpaceTreeRecorder) ResetRound() { clear(r.counts) }

// TopologyRecorder emits interfaces seen for the first time and credits
// them to the prefix-tree node that carried the probe.
type TopologyRecorder struct {
	seen    dedup.Checker[uint128.Uint128]
	novel   map[uint32]uint64
	reached map[uint32]uint64
	sink    output.Sink
}

// NewTopologyRecorder dedups interfaces across rounds through seen.
func NewTopologyRecorder(seen dedup.Checker[uint128.Uint128], sink output.Sink) *TopologyRecorder {
	return &TopologyRecorder{
		seen:    seen,
		novel:   make(map[uint32]uint64),
		reached: make(map[uint32]uint64),
		sink:    sink,
	}
}

// Record implements Recorder.
func (r *TopologyRecorder) Record(hit *models.Hit) (Outcome, error) {
	if hit.Reached {
		r.reached[hit.Code]++
	}

	k := addr.V6ToUint128(hit.Addr)
	if !r.seen.NotMarkedAndValid(k) {
		return Repeated, nil
	}

	r.seen.Set(k)
	r.novel[hit.Code]++

	return Recorded, r.sink.WriteRecord([]string{
		hit.Addr.String(),
		hit.Target.String(),
		strconv.Itoa(int(hit.HopLimit)),
		strconv.FormatBool(hit.Reached),
	})
}

// Novel returns new interfaces per node id for the current round.
func (r *TopologyRecorder) Novel() map[uint32]uint64 { return r.novel }

// Reached returns per node id how many probes reached their target.
func (r *TopologyRecorder) Reached() map[uint32]uint64 { return r.reached }

// ResetRound implements RoundRecorder.
func (r *TopologyRecorder) ResetRound() {
	r.novel = make(map[uint32]uint64)
	r.reached = make(map[uint32]uint64)
}

// PortOutcome is one answered (address, port) probe.
type PortOutcome struct {
	Addr netip.Addr
	Port uint16
	Open bool
}

type portKey struct {
	addr netip.Addr
	port uint16
}

// PMAPRecorder collects per-round port outcomes for the port graph and emits
// open ports.
type PMAPRecorder struct {
	seen     map[portKey]struct{}
	outcomes []PortOutcome
	sink     output.Sink
}

// NewPMAPRecorder emits open ports to sink.
func NewPMAPRecorder(sink output.Sink) *PMAPRecorder {
	return &PMAPRecorder{seen: make(map[portKey]struct{}), sink: sink}
}

// Record implements Recorder.
func (r *PMAPRecorder) Record(hit *models.Hit) (Outcome, error) {
	k := portKey{hit.Addr.Unmap(), hit.Port}
	if _, dup := r.seen[k]; dup {
		return Repeated, nil
	}

	r.seen[k] = struct{}{}
	r.outcomes = append(r.outcomes, PortOutcome{Addr: hit.Addr, Port: hit.Port, Open: hit.Open})

	if !hit.Open {
		return Recorded, nil
	}

	return Recorded, r.sink.WriteRecord([]string{hit.Addr.String(), strconv.Itoa(int(hit.Port))})
}

// Outcomes returns the answers gathered this round.
func (r *PMAPRecorder) Outcomes() []PortOutcome { return r.outcomes }

// ResetRound implements RoundRecorder.
func (r *PMAPRecorder) ResetRound() {
	r.outcomes = nil
	clear(r.seen)
}

func inScope(s cyclic.Space, a netip.Addr) bool {
	if s == nil {
		return true
	}

	_, ok := s.IndexOf(a)

	return ok
}

var (
	_ RoundRecorder = (*AliasedRecorder)(nil)
	_ RoundRecorder = (*RegionRecorder)(nil)
	_ RoundRecorder = (*SpaceTreeRecorder)(nil)
	_ RoundRecorder = (*TopologyRecorder)(nil)
	_ RoundRecorder = (*PMAPRecorder)(nil)
)
