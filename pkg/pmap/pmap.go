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

// Package pmap recommends the next port to probe on an address from the
// ports already found open or closed on it.
//
// The graph's states are sets of open ports. Each state ranks the remaining
// target ports twice: an absolute table of P(open | address reached this
// state) and a relative table built greedily, where each entry is
// conditioned on the entries before it having been closed.
package pmap

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

var ErrNoTargetPorts = errors.New("pmap needs at least one target port")

// Preset is the popularity order applied to the target ports before any
// training data exists.
var Preset = [30]uint16{
	80, 443, 22, 21, 23, 25, 3389, 110, 445, 139,
	143, 53, 135, 3306, 8080, 1723, 111, 995, 993, 5900,
	1025, 587, 8888, 199, 1720, 465, 548, 113, 81, 6001,
}

// OrderPorts deduplicates ports and puts the preset ports first, in preset
// order, followed by the rest ascending.
func OrderPorts(ports []uint16) []uint16 {
	rest := slices.Clone(ports)
	slices.Sort(rest)
	rest = slices.Compact(rest)

	out := make([]uint16, 0, len(rest))

	for _, p := range Preset {
		if i, ok := slices.BinarySearch(rest, p); ok {
			out = append(out, p)
			rest = slices.Delete(rest, i, i+1)
		}
	}

	return append(out, rest...)
}

// PortProb is one row of a state's probability table.
type PortProb struct {
	Port uint16
	Prob float64
}

// State is a node of the graph, keyed by its sorted open ports.
type State struct {
	ID    int
	Label string
	Open  []uint16
	Abs   []PortProb
	Rel   []PortProb
	Next  map[uint16]int

	tried  map[uint16]uint64
	opened map[uint16]uint64
}

// Record tracks one address. Open and NotOpen are disjoint, sorted and
// together hold every port probed on the address.
type Record struct {
	Addr  netip.Addr
	State int
	// StateIndex walks the state's relative table, AbIndex its absolute
	// table and TarIndex the ordered target ports.
	StateIndex  int
	AbIndex     int
	TarIndex    int
	Open        []uint16
	NotOpen     []uint16
	RemainState bool
	// Sent is the port probed in the current round.
	Sent    uint16
	pending bool
	folded  bool
}

func (r *Record) tried(p uint16) bool {
	_, open := slices.BinarySearch(r.Open, p)
	_, closed := slices.BinarySearch(r.NotOpen, p)

	return open || closed
}

// Pending reports whether a probe was handed out and not yet reported.
func (r *Record) Pending() bool { return r.pending }

// Graph is the port graph. It is updated single-threaded between rounds.
type Graph struct {
	targets []uint16
	rank    map[uint16]int
	states  []*State
	byLabel map[string]int
	samples [][]uint16
}

// NewGraph builds an empty graph over the target ports.
func NewGraph(ports []uint16) (*Graph, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, ErrNoTargetPorts)
	}

	g := &Graph{
		targets: OrderPorts(ports),
		rank:    make(map[uint16]int),
		byLabel: make(map[string]int),
	}

	for i, p := range g.targets {
		g.rank[p] = i
	}

	g.state(nil)

	return g, nil
}

// Targets returns the ordered target ports.
func (g *Graph) Targets() []uint16 { return g.targets }

// States is the number of states created so far.
func (g *Graph) States() int { return len(g.states) }

// State returns a state by id.
func (g *Graph) State(id int) *State { return g.states[id] }

// Lookup finds the state for a set of open ports.
func (g *Graph) Lookup(open []uint16) (*State, bool) {
	id, ok := g.byLabel[Label(open)]
	if !ok {
		return nil, false
	}

	return g.states[id], true
}

// Samples is the number of complete open-port sets the tables are built
// from.
func (g *Graph) Samples() int { return len(g.samples) }

// Label joins sorted ports with commas; the empty set is the root.
func Label(open []uint16) string {
	var b strings.Builder

	for i, p := range open {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(strconv.Itoa(int(p)))
	}

	return b.String()
}

func (g *Graph) state(open []uint16) int {
	label := Label(open)
	if id, ok := g.byLabel[label]; ok {
		return id
	}

	st := &State{
		ID:     len(g.states),
		Label:  label,
		Open:   slices.Clone(open),
		Next:   make(map[uint16]int),
		tried:  make(map[uint16]uint64),
		opened: make(map[uint16]uint64),
	}

	g.states = append(g.states, st)
	g.byLabel[label] = st.ID
	g.tables(st)

	return st.ID
}

// Train adds complete open-port sets and rebuilds every table.
func (g *Graph) Train(openSets [][]uint16) {
	for _, set := range openSets {
		g.addSample(set)
	}

	g.Rebuild()
}

func (g *Graph) addSample(set []uint16) {
	s := make([]uint16, 0, len(set))

	for _, p := range set {
		if _, ok := g.rank[p]; ok {
			s = append(s, p)
		}
	}

	slices.Sort(s)
	g.samples = append(g.samples, slices.Compact(s))
}

// Rebuild recomputes the tables of every state.
func (g *Graph) Rebuild() {
	for _, st := range g.states {
		g.tables(st)
	}
}

func subset(small, big []uint16) bool {
	for _, p := range small {
		if _, ok := slices.BinarySearch(big, p); !ok {
			return false
		}
	}

	return true
}

func contains(set []uint16, p uint16) bool {
	_, ok := slices.BinarySearch(set, p)
	return ok
}

func (g *Graph) tables(st *State) {
	var members [][]uint16

	for _, s := range g.samples {
		if subset(st.Open, s) {
			members = append(members, s)
		}
	}

	st.Abs = st.Abs[:0]

	for _, p := range g.targets {
		if contains(st.Open, p) {
			continue
		}

		open, trials := st.opened[p], st.tried[p]+uint64(len(members))

		for _, m := range members {
			if contains(m, p) {
				open++
			}
		}

		if open > 0 && trials > 0 {
			st.Abs = append(st.Abs, PortProb{Port: p, Prob: float64(open) / float64(trials)})
		}
	}

	slices.SortStableFunc(st.Abs, func(a, b PortProb) int {
		switch {
		case a.Prob > b.Prob:
			return -1
		case a.Prob < b.Prob:
			return 1
		}

		return g.rank[a.Port] - g.rank[b.Port]
	})

	st.Rel = g.relative(st, members)
}

// relative orders ports greedily: after choosing a port, members with it
// open leave the state, and the next port is ranked among those left.
func (g *Graph) relative(st *State, members [][]uint16) []PortProb {
	var rel []PortProb

	used := make(map[uint16]bool, len(g.targets))

	for len(members) > 0 {
		best, bestCount := uint16(0), 0

		for _, p := range g.targets {
			if used[p] || contains(st.Open, p) {
				continue
			}

			n := 0

			for _, m := range members {
				if contains(m, p) {
					n++
				}
			}

			if n > bestCount {
				best, bestCount = p, n
			}
		}

		if bestCount == 0 {
			break
		}

		rel = append(rel, PortProb{Port: best, Prob: float64(bestCount) / float64(len(members))})
		used[best] = true

		left := members[:0:0]

		for _, m := range members {
			if !contains(m, best) {
				left = append(left, m)
			}
		}

		members = left
	}

	return rel
}

// NewRecord starts an address at the root state.
func (g *Graph) NewRecord(a netip.Addr) *Record {
	return &Record{Addr: a, State: 0, RemainState: true}
}

// Next picks the port to probe next: the relative table while the address
// stays in its state, then the absolute table, then the target ports in
// order. It reports false once every target port has been probed.
func (g *Graph) Next(r *Record) (uint16, bool) {
	st := g.states[r.State]

	pick := func(p uint16) (uint16, bool) {
		r.Sent, r.pending = p, true
		return p, true
	}

	if r.RemainState {
		for r.StateIndex < len(st.Rel) {
			p := st.Rel[r.StateIndex].Port
			r.StateIndex++

			if !r.tried(p) {
				return pick(p)
			}
		}

		r.RemainState = false
	}

	for r.AbIndex < len(st.Abs) {
		p := st.Abs[r.AbIndex].Port
		r.AbIndex++

		if !r.tried(p) {
			return pick(p)
		}
	}

	for r.TarIndex < len(g.targets) {
		p := g.targets[r.TarIndex]
		r.TarIndex++

		if !r.tried(p) {
			return pick(p)
		}
	}

	r.pending = false

	return 0, false
}

// Report records the outcome of probing port on r. An open port moves the
// address to the state of its new open set. Ports already reported are
// ignored.
func (g *Graph) Report(r *Record, port uint16, open bool) {
	if port == r.Sent {
		r.pending = false
	}

	if _, ok := g.rank[port]; !ok || r.tried(port) {
		return
	}

	st := g.states[r.State]
	st.tried[port]++

	if !open {
		r.NotOpen = insert(r.NotOpen, port)
		return
	}

	st.opened[port]++
	r.Open = insert(r.Open, port)

	next, ok := st.Next[port]
	if !ok {
		next = g.state(r.Open)
		st.Next[port] = next
	}

	r.State = next
	r.StateIndex, r.AbIndex = 0, 0
	r.RemainState = true
}

func insert(s []uint16, p uint16) []uint16 {
	i, _ := slices.BinarySearch(s, p)
	return slices.Insert(s, i, p)
}

// Done reports whether every target port has been probed on r.
func (g *Graph) Done(r *Record) bool {
	return len(r.Open)+len(r.NotOpen) >= len(g.targets)
}

// EndRound folds every newly completed record into the samples and rebuilds
// the tables.
func (g *Graph) EndRound(records []*Record) {
	for _, r := range records {
		if !r.folded && g.Done(r) {
			g.addSample(r.Open)
			r.folded = true
		}
	}

	g.Rebuild()
}
