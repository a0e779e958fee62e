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
	"errors"
	"io"
	"maps"
	"math/rand/v2"
	"net/netip"
	"slices"
	"strconv"
	"time"

	"lukechampine.com/uint128"

	"github.com/carverauto/cyclescan/pkg/addr"
	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/config"
	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/pmap"
	"github.com/carverauto/cyclescan/pkg/prefixtree"
	"github.com/carverauto/cyclescan/pkg/probe"
	"github.com/carverauto/cyclescan/pkg/receiver"
	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/carverauto/cyclescan/pkg/spacetree"
)

const (
	// maxRegions is the widest region code the probe payload carries.
	maxRegions = 1 << 24
	// maxPMAPAddrs bounds the per-address state the port graph keeps.
	maxPMAPAddrs = 1 << 24
)

// strategy is one scanning mode. run executes on its own goroutine while
// the receivers feed recorder(); finish runs after they have stopped.
type strategy interface {
	recorder() receiver.Recorder
	run(s *session) error
	finish() error
	close() error
}

// Header returns the CSV header of a strategy's records.
func Header(s models.Strategy) []string {
	switch s {
	case models.StrategyAddrPort, models.StrategyPMAP:
		return []string{"saddr", "sport"}
	case models.StrategyAliased:
		return []string{"prefix", "responders", "aliased"}
	case models.StrategyRegion:
		return []string{"region", "responders"}
	case models.StrategyTopology:
		return []string{"responder", "target", "hop_limit", "reached"}
	case models.StrategyAddr, models.StrategySpaceTree:
	}

	return []string{"saddr"}
}

type closers []io.Closer

func (c closers) close() error {
	var errs []error

	for _, cl := range c {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (e *Engine) newStrategy() (strategy, error) {
	switch e.cfg.Strategy {
	case models.StrategyAddr, models.StrategyAddrPort:
		return e.newCyclic()
	case models.StrategyAliased:
		return e.newAliased()
	case models.StrategyRegion:
		return e.newRegion()
	case models.StrategySpaceTree:
		return e.newSpaceTree()
	case models.StrategyTopology:
		return e.newTopology()
	case models.StrategyPMAP:
		return e.newPMAP()
	}

	return nil, scanerr.Config("unknown strategy %q", e.cfg.Strategy)
}

// cyclicStrategy walks the whole target space once in permuted order.
type cyclicStrategy struct {
	closers
	rec     receiver.Recorder
	targets *cyclic.Targets
	total   uint64
}

func (e *Engine) newCyclic() (*cyclicStrategy, error) {
	space, err := targetSpace(e.cfg)
	if err != nil {
		return nil, err
	}

	var ports []uint16

	if e.cfg.Strategy.UsesPorts() {
		if ports, err = cyclic.ParsePorts(e.cfg.Ports); err != nil {
			return nil, configErr(err)
		}
	}

	block, err := blocklist(e.cfg)
	if err != nil {
		return nil, err
	}

	targets, err := cyclic.NewTargets(space, ports, e.key.Rand(aeskey.DomainCyclic))
	if err != nil {
		return nil, configErr(err)
	}

	targets.SetExclude(block)

	s := &cyclicStrategy{targets: targets}

	total := space.Size().Mul64(uint64(max(len(ports), 1)))
	if total.Hi == 0 {
		s.total = total.Lo
	}

	var c io.Closer
	if ports == nil {
		s.rec, c, err = addrRecorder(e.cfg.Dedup, space, e.sink)
	} else {
		s.rec, c, err = addrPortRecorder(e.cfg.Dedup, space, ports, e.sink)
	}

	if err != nil {
		return nil, err
	}

	if c != nil {
		s.closers = append(s.closers, c)
	}

	e.log.Info().Str("targets", space.Size().String()).Int("ports", len(ports)).Msg("target space ready")

	return s, nil
}

func (c *cyclicStrategy) recorder() receiver.Recorder { return c.rec }

func (c *cyclicStrategy) run(s *session) error {
	s.e.expected.Store(c.total)

	err := s.sendAll(s.send, func(k, n int) (Source, error) {
		sh, err := c.targets.Shard(k, n)
		if err != nil {
			return nil, configErr(err)
		}

		return newTargetSource(sh, &s.e.counters), nil
	})
	if err != nil {
		return err
	}

	s.cooldown()

	return nil
}

func (*cyclicStrategy) finish() error { return nil }

// randomIn draws an address inside p.
func randomIn(p netip.Prefix, rng *rand.Rand) netip.Addr {
	host := addr.Mask(p.Bits()).Xor(uint128.Max)
	r := uint128.New(rng.Uint64(), rng.Uint64())

	return addr.Uint128ToV6(addr.V6ToUint128(p.Addr()).Or(r.And(host)))
}

// listStrategy sends a precomputed probe list once and reports per-code
// responder counts at the end.
type listStrategy struct {
	probes []probe.Probe
	counts func() map[uint32]uint64
	rec    receiver.Recorder
	report func(counts map[uint32]uint64) error
}

func (l *listStrategy) recorder() receiver.Recorder { return l.rec }

func (l *listStrategy) run(s *session) error {
	s.e.expected.Store(uint64(len(l.probes)))

	err := s.sendAll(s.send, func(k, n int) (Source, error) {
		return newListSource(l.probes, k, n), nil
	})
	if err != nil {
		return err
	}

	s.cooldown()

	return nil
}

func (l *listStrategy) finish() error { return l.report(l.counts()) }

func (*listStrategy) close() error { return nil }

// newAliased probes random addresses inside each prefix. A prefix where
// most of them answer is aliased: one host owns the whole prefix.
func (e *Engine) newAliased() (*listStrategy, error) {
	var (
		prefixes []netip.Prefix
		err      error
	)

	if e.cfg.Aliased.PrefixFile != "" {
		if prefixes, err = readPrefixes(e.cfg.Aliased.PrefixFile); err != nil {
			return nil, err
		}
	}

	for _, t := range e.cfg.Targets {
		p, err := netip.ParsePrefix(t)
		if err != nil || !p.Addr().Is6() {
			return nil, scanerr.Config("aliased: bad prefix %q", t)
		}

		prefixes = append(prefixes, p.Masked())
	}

	per := e.cfg.Aliased.ProbesPerPrefix
	rng := e.key.Rand(aeskey.DomainProbe)
	probes := make([]probe.Probe, 0, len(prefixes)*per)

	for i, p := range prefixes {
		for range per {
			probes = append(probes, probe.Probe{Dst: randomIn(p, rng), Code: uint32(i)})
		}
	}

	seen, err := responderChecker(e.cfg.Dedup, uint(len(probes)))
	if err != nil {
		return nil, err
	}

	rec := receiver.NewAliasedRecorder(seen)
	threshold := uint64(e.cfg.Aliased.Threshold)

	e.log.Info().Int("prefixes", len(prefixes)).Int("probes", len(probes)).Msg("aliased probes ready")

	return &listStrategy{
		probes: probes,
		rec:    rec,
		counts: rec.Counts,
		report: func(counts map[uint32]uint64) error {
			for i, p := range prefixes {
				n := counts[uint32(i)]

				err := e.sink.WriteRecord([]string{
					p.String(),
					strconv.FormatUint(n, 10),
					strconv.FormatBool(n >= threshold),
				})
				if err != nil {
					return err
				}
			}

			return nil
		},
	}, nil
}

// regionIndex maps addresses to the index of their longest matching prefix.
type regionIndex struct {
	lens  []int
	index map[netip.Prefix]int
}

func newRegionIndex(prefixes []netip.Prefix) *regionIndex {
	ri := &regionIndex{index: make(map[netip.Prefix]int, len(prefixes))}

	for i, p := range prefixes {
		if _, dup := ri.index[p]; dup {
			continue
		}

		ri.index[p] = i

		if !slices.Contains(ri.lens, p.Bits()) {
			ri.lens = append(ri.lens, p.Bits())
		}
	}

	slices.Sort(ri.lens)
	slices.Reverse(ri.lens)

	return ri
}

func (ri *regionIndex) lookup(a netip.Addr) (int, bool) {
	for _, bits := range ri.lens {
		p, err := a.Prefix(bits)
		if err != nil {
			continue
		}

		if i, ok := ri.index[p]; ok {
			return i, true
		}
	}

	return 0, false
}

// newRegion tags every target with the region containing it and counts
// responders per region.
func (e *Engine) newRegion() (*listStrategy, error) {
	regions, err := readPrefixes(e.cfg.Region.PrefixFile)
	if err != nil {
		return nil, err
	}

	if len(regions) > maxRegions {
		return nil, scanerr.Config("region: %d prefixes exceed %d", len(regions), maxRegions)
	}

	targets, err := readV6List(e.cfg.TargetFile)
	if err != nil {
		return nil, err
	}

	block, err := blocklist(e.cfg)
	if err != nil {
		return nil, err
	}

	idx := newRegionIndex(regions)
	probes := make([]probe.Probe, 0, len(targets))

	for _, a := range targets {
		code, ok := idx.lookup(a)
		if !ok || (block != nil && block.Contains(a)) {
			e.counters.Excluded.Add(1)
			continue
		}

		probes = append(probes, probe.Probe{Dst: a, Code: uint32(code)})
	}

	seen, err := responderChecker(e.cfg.Dedup, uint(len(probes)))
	if err != nil {
		return nil, err
	}

	rec := receiver.NewRegionRecorder(e.cfg.Flag, seen)

	e.log.Info().Int("regions", len(regions)).Int("probes", len(probes)).Msg("region probes ready")

	return &listStrategy{
		probes: probes,
		rec:    rec,
		counts: rec.Counts,
		report: func(counts map[uint32]uint64) error {
			for i, p := range regions {
				if err := e.sink.WriteRecord([]string{p.String(), strconv.FormatUint(counts[uint32(i)], 10)}); err != nil {
					return err
				}
			}

			return nil
		},
	}, nil
}

// spaceTreeStrategy generates candidates from the seed tree each round and
// feeds the per-region hit counts back into it.
type spaceTreeStrategy struct {
	tree *spacetree.Tree
	rec  *receiver.SpaceTreeRecorder
	cfg  config.SpaceTreeConfig
}

func (e *Engine) newSpaceTree() (*spaceTreeStrategy, error) {
	seeds, err := readSeeds(e.cfg.SpaceTree.SeedFile)
	if err != nil {
		return nil, err
	}

	tree, err := spacetree.New(seeds, e.cfg.SpaceTree.Tree, e.key.Rand(aeskey.DomainSpaceTree))
	if err != nil {
		return nil, configErr(err)
	}

	cfg := e.cfg.SpaceTree

	seen, err := responderChecker(e.cfg.Dedup, uint(cfg.Budget*cfg.Rounds))
	if err != nil {
		return nil, err
	}

	e.log.Info().Int("seeds", len(seeds)).Int("nodes", tree.Len()).Int("leaves", len(tree.Leaves())).Msg("space tree built")

	return &spaceTreeStrategy{
		tree: tree,
		rec:  receiver.NewSpaceTreeRecorder(seen, e.sink),
		cfg:  cfg,
	}, nil
}

func (t *spaceTreeStrategy) recorder() receiver.Recorder { return t.rec }

func (t *spaceTreeStrategy) run(s *session) error {
	for round := 1; round <= t.cfg.Rounds && !s.interrupted(); round++ {
		queue := t.tree.Select()

		cands := t.tree.Generate(t.cfg.Budget)
		if len(cands) == 0 {
			s.e.log.Info().Int("round", round).Msg("space tree exhausted")
			break
		}

		probes := make([]probe.Probe, len(cands))
		for i, c := range cands {
			probes[i] = probe.Probe{Dst: c.Addr, Code: uint32(c.Code)}
		}

		if err := s.round(probes, time.Duration(t.cfg.RoundTimeout)); err != nil {
			return err
		}

		var counts []uint64

		err := s.sync(func() {
			counts = slices.Clone(t.rec.Counts())
			t.rec.ResetRound()
		})
		if err != nil {
			return err
		}

		if err := t.tree.Update(counts); err != nil {
			return err
		}

		var hits uint64
		for code := range queue {
			hits += counts[code]
		}

		s.e.log.Info().
			Int("round", round).
			Int("regions", len(queue)).
			Int("probes", len(probes)).
			Uint64("hits", hits).
			Msg("space tree round done")
	}

	return nil
}

func (*spaceTreeStrategy) finish() error { return nil }

func (*spaceTreeStrategy) close() error { return nil }

// topologyStrategy traces hop-limited probes into prefix-tree nodes and
// grows the tree toward nodes that reveal new interfaces.
type topologyStrategy struct {
	tree *prefixtree.Tree
	rec  *receiver.TopologyRecorder
	cfg  config.PrefixTreeConfig
}

func (e *Engine) newTopology() (*topologyStrategy, error) {
	roots, err := readPrefixes(e.cfg.PrefixTree.PrefixFile)
	if err != nil {
		return nil, err
	}

	cfg := e.cfg.PrefixTree

	tree, err := prefixtree.New(roots, cfg.Tree, e.key.Rand(aeskey.DomainPrefixTree))
	if err != nil {
		return nil, configErr(err)
	}

	hops := int(cfg.MaxHop-cfg.MinHop) + 1

	seen, err := responderChecker(e.cfg.Dedup, uint(len(tree.Queue())*cfg.TargetsPerNode*hops))
	if err != nil {
		return nil, err
	}

	e.log.Info().Int("roots", len(roots)).Int("queued", len(tree.Queue())).Msg("prefix tree built")

	return &topologyStrategy{
		tree: tree,
		rec:  receiver.NewTopologyRecorder(seen, e.sink),
		cfg:  cfg,
	}, nil
}

func (t *topologyStrategy) recorder() receiver.Recorder { return t.rec }

func (t *topologyStrategy) run(s *session) error {
	for round := 1; round <= t.cfg.Rounds && !s.interrupted(); round++ {
		targets := t.tree.Targets(t.cfg.TargetsPerNode)
		if len(targets) == 0 {
			break
		}

		probes := make([]probe.Probe, 0, len(targets)*int(t.cfg.MaxHop-t.cfg.MinHop+1))

		for _, tg := range targets {
			for hop := int(t.cfg.MinHop); hop <= int(t.cfg.MaxHop); hop++ {
				probes = append(probes, probe.Probe{Dst: tg.Addr, Code: tg.Code, HopLimit: uint8(hop)})
			}
		}

		if err := s.round(probes, time.Duration(t.cfg.RoundTimeout)); err != nil {
			return err
		}

		var novel map[uint32]uint64

		err := s.sync(func() {
			novel = maps.Clone(t.rec.Novel())
			t.rec.ResetRound()
		})
		if err != nil {
			return err
		}

		var found uint64
		for _, n := range novel {
			found += n
		}

		t.tree.Update(novel)
		queued := t.tree.Advance()

		s.e.log.Info().
			Int("round", round).
			Int("probes", len(probes)).
			Uint64("new_interfaces", found).
			Int("nodes", t.tree.Len()).
			Int("queued", queued).
			Msg("topology round done")

		if queued == 0 {
			s.e.log.Info().Int("round", round).Msg("prefix tree exhausted")
			break
		}
	}

	return nil
}

func (*topologyStrategy) finish() error { return nil }

func (*topologyStrategy) close() error { return nil }

// pmapStrategy probes every port on a training sample, then asks the port
// graph for one port per address per round.
type pmapStrategy struct {
	graph *pmap.Graph
	rec   *receiver.PMAPRecorder
	ports []uint16
	addrs []netip.Addr
	cfg   config.PMAPConfig
}

func (e *Engine) newPMAP() (*pmapStrategy, error) {
	space, err := targetSpace(e.cfg)
	if err != nil {
		return nil, err
	}

	if space.Size().Cmp64(maxPMAPAddrs) > 0 {
		return nil, scanerr.Config("pmap: %s addresses exceed %d", space.Size(), maxPMAPAddrs)
	}

	ports := pmap.Preset[:]
	if e.cfg.Ports != "" {
		if ports, err = cyclic.ParsePorts(e.cfg.Ports); err != nil {
			return nil, configErr(err)
		}
	}

	block, err := blocklist(e.cfg)
	if err != nil {
		return nil, err
	}

	targets, err := cyclic.NewTargets(space, nil, e.key.Rand(aeskey.DomainCyclic))
	if err != nil {
		return nil, configErr(err)
	}

	targets.SetExclude(block)

	addrs := make([]netip.Addr, 0, space.Size().Lo)
	for {
		a, _, ok := targets.Next()
		if !ok {
			break
		}

		addrs = append(addrs, a)
	}

	e.counters.Excluded.Add(targets.Excluded())

	ordered := pmap.OrderPorts(ports)

	graph, err := pmap.NewGraph(ordered)
	if err != nil {
		return nil, configErr(err)
	}

	e.log.Info().Int("addresses", len(addrs)).Int("ports", len(ordered)).Msg("port graph ready")

	return &pmapStrategy{
		graph: graph,
		rec:   receiver.NewPMAPRecorder(e.sink),
		ports: ordered,
		addrs: addrs,
		cfg:   e.cfg.PMAP,
	}, nil
}

func (p *pmapStrategy) recorder() receiver.Recorder { return p.rec }

func (p *pmapStrategy) outcomes(s *session) ([]receiver.PortOutcome, error) {
	var out []receiver.PortOutcome

	err := s.sync(func() {
		out = slices.Clone(p.rec.Outcomes())
		p.rec.ResetRound()
	})

	return out, err
}

func (p *pmapStrategy) train(s *session, sample []netip.Addr) error {
	probes := make([]probe.Probe, 0, len(sample)*len(p.ports))

	for _, a := range sample {
		for _, port := range p.ports {
			probes = append(probes, probe.Probe{Dst: a, DstPort: port})
		}
	}

	if err := s.round(probes, 0); err != nil {
		return err
	}

	outcomes, err := p.outcomes(s)
	if err != nil {
		return err
	}

	open := make(map[netip.Addr][]uint16)

	for _, o := range outcomes {
		if o.Open {
			a := o.Addr.Unmap()
			open[a] = append(open[a], o.Port)
		}
	}

	sets := make([][]uint16, len(sample))
	for i, a := range sample {
		sets[i] = slices.Sorted(slices.Values(open[a]))
	}

	p.graph.Train(sets)

	s.e.log.Info().Int("addresses", len(sample)).Int("states", p.graph.States()).Msg("port graph trained")

	return nil
}

func (p *pmapStrategy) run(s *session) error {
	n := min(p.cfg.TrainingNum, len(p.addrs))

	if n > 0 {
		if err := p.train(s, p.addrs[:n]); err != nil {
			return err
		}
	}

	records := make([]*pmap.Record, 0, len(p.addrs)-n)
	byAddr := make(map[netip.Addr]*pmap.Record, len(p.addrs)-n)

	for _, a := range p.addrs[n:] {
		r := p.graph.NewRecord(a)
		records = append(records, r)
		byAddr[a] = r
	}

	for round := 1; round <= p.cfg.Rounds && !s.interrupted(); round++ {
		var probes []probe.Probe

		for _, r := range records {
			if p.graph.Done(r) {
				continue
			}

			if port, ok := p.graph.Next(r); ok {
				probes = append(probes, probe.Probe{Dst: r.Addr, DstPort: port})
			}
		}

		if len(probes) == 0 {
			break
		}

		if err := s.round(probes, time.Duration(p.cfg.RoundTimeout)); err != nil {
			return err
		}

		outcomes, err := p.outcomes(s)
		if err != nil {
			return err
		}

		var open int

		for _, o := range outcomes {
			if r, ok := byAddr[o.Addr.Unmap()]; ok {
				p.graph.Report(r, o.Port, o.Open)

				if o.Open {
					open++
				}
			}
		}

		for _, r := range records {
			if r.Pending() {
				p.graph.Report(r, r.Sent, false)
			}
		}

		p.graph.EndRound(records)

		s.e.log.Info().
			Int("round", round).
			Int("probes", len(probes)).
			Int("open", open).
			Int("states", p.graph.States()).
			Msg("pmap round done")
	}

	return nil
}

func (*pmapStrategy) finish() error { return nil }

func (*pmapStrategy) close() error { return nil }
