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

// Package spacetree learns where live IPv6 addresses cluster and generates
// new candidates in the regions that look dense but under-explored.
//
// Seeds are split recursively on their leftmost varying dim-bit group until a
// node holds at most MaxLeafSize seeds. Each leaf is a region: its common bits
// are fixed and its varying groups are free. A leaf's reward starts as the
// normalized Shannon entropy of its seeds over the next group and is then
// blended with the hit ratio observed for the candidates it produced.
package spacetree

import (
	"io"
	"math"
	"math/rand/v2"
	"net/netip"
	"slices"

	"github.com/carverauto/cyclescan/pkg/addr"
	"lukechampine.com/uint128"
)

// MaxRegions is the number of distinct 16-bit region codes.
const MaxRegions = 1 << 16

type Config struct {
	// Dim is the number of address bits per split.
	Dim uint `json:"dim"`
	// MaxLeafSize stops splitting once a node holds this many seeds or fewer.
	MaxLeafSize int `json:"max_leaf_size"`
	// LearningRate weights new feedback against the current reward and
	// sharpens sampling: weights are reward^(1/LearningRate).
	LearningRate float64 `json:"learning_rate"`
	// RegionExtractionNum is the number of leaves selected per round.
	RegionExtractionNum int `json:"region_extraction_num"`
	// ForbidSeeds keeps seed addresses out of the candidates.
	ForbidSeeds bool `json:"forbid_seeds"`
	// RewardFloor prunes leaves whose normalized reward falls below it.
	RewardFloor float64 `json:"reward_floor"`
}

// DefaultConfig returns the settings used when a scan does not override them.
func DefaultConfig() Config {
	return Config{
		Dim:                 4,
		MaxLeafSize:         16,
		LearningRate:        0.1,
		RegionExtractionNum: 1000,
		RewardFloor:         0,
	}
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Dim == 0 || c.Dim > 16 || 128%c.Dim != 0:
		return configErr(ErrBadDim, "")
	case c.MaxLeafSize <= 0:
		return configErr(ErrBadLeafSize, "")
	case c.LearningRate <= 0 || c.LearningRate > 1:
		return configErr(ErrLearningRate, "")
	case c.RegionExtractionNum <= 0 || c.RegionExtractionNum > MaxRegions:
		return configErr(ErrRegionCount, "")
	}

	return nil
}

// Node is one split of the address space. Nodes live in the tree's arena and
// refer to each other by id.
type Node struct {
	ID     int
	Parent int
	// Offsets are the free group offsets below this node, ascending, counted
	// from the least significant bit.
	Offsets []uint
	// Split is the group the histogram was taken over, or -1.
	Split    int
	Counts   []uint64
	Reward   float64
	Children []int

	lo, hi int

	// leaf region
	base   uint128.Uint128
	free   []uint
	sent   uint64
	pruned bool
}

// Leaf reports whether the node has no children.
func (n *Node) Leaf() bool { return len(n.Children) == 0 }

// Seeds is the number of seeds under the node.
func (n *Node) Seeds() int { return n.hi - n.lo }

// FreeBits is the number of bits a leaf's candidates vary in.
func (n *Node) FreeBits(dim uint) uint { return uint(len(n.free)) * dim }

// Candidate is a generated address and the region code it is probed with.
type Candidate struct {
	Addr netip.Addr
	Code uint16
}

// Tree is the space tree plus the round state. It is not safe for concurrent
// use; the round driver owns it between rounds.
type Tree struct {
	cfg    Config
	rng    *rand.Rand
	seeds  []uint128.Uint128
	seedOK map[uint128.Uint128]struct{}
	nodes  []*Node
	leaves []int

	used map[uint128.Uint128]struct{}

	// region queue of the current round and the rewards it was drawn from
	queue     []int
	allReward []float64
}

// LoadSeeds reads one IPv6 address per line.
func LoadSeeds(r io.Reader) ([]netip.Addr, error) {
	lines, err := addr.ReadLines(r)
	if err != nil {
		return nil, err
	}

	out := make([]netip.Addr, 0, len(lines))

	for _, l := range lines {
		a, err := netip.ParseAddr(l)
		if err != nil || !a.Is6() || a.Is4In6() {
			return nil, configErr(ErrBadSeed, l)
		}

		out = append(out, a)
	}

	return out, nil
}

// New builds the tree over seeds.
func New(seeds []netip.Addr, cfg Config, rng *rand.Rand) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(seeds) == 0 {
		return nil, configErr(ErrNoSeeds, "")
	}

	vals := make([]uint128.Uint128, 0, len(seeds))
	for _, s := range seeds {
		vals = append(vals, addr.V6ToUint128(s))
	}

	slices.SortFunc(vals, func(a, b uint128.Uint128) int { return a.Cmp(b) })
	vals = slices.Compact(vals)

	t := &Tree{
		cfg:   cfg,
		rng:   rng,
		seeds: vals,
		used:  make(map[uint128.Uint128]struct{}),
	}

	if cfg.ForbidSeeds {
		t.seedOK = make(map[uint128.Uint128]struct{}, len(vals))
		for _, v := range vals {
			t.seedOK[v] = struct{}{}
		}
	}

	offsets := make([]uint, 0, 128/cfg.Dim)
	for o := uint(0); o < 128; o += cfg.Dim {
		offsets = append(offsets, o)
	}

	t.build(offsets)
	t.normalize()

	return t, nil
}

func (t *Tree) newNode(parent, lo, hi int, offsets []uint) *Node {
	n := &Node{ID: len(t.nodes), Parent: parent, Offsets: offsets, Split: -1, lo: lo, hi: hi}
	t.nodes = append(t.nodes, n)

	return n
}

func (t *Tree) build(offsets []uint) {
	stack := []int{t.newNode(-1, 0, len(t.seeds), offsets).ID}

	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		varying := t.varying(n)

		if len(varying) > 0 {
			n.Split = int(varying[len(varying)-1])
		}

		n.Counts = t.histogram(n)
		n.Reward = Entropy(n.Counts, t.cfg.Dim)

		if n.Seeds() <= t.cfg.MaxLeafSize || n.Split < 0 {
			t.makeLeaf(n, varying)
			continue
		}

		split := uint(n.Split)
		below := make([]uint, 0, len(n.Offsets))

		for _, o := range n.Offsets {
			if o < split {
				below = append(below, o)
			}
		}

		// seeds are sorted and agree above split, so each bucket is a run
		lo := n.lo
		for lo < n.hi {
			b := addr.BitsAt(t.seeds[lo], split, t.cfg.Dim)
			hi := lo + 1

			for hi < n.hi && addr.BitsAt(t.seeds[hi], split, t.cfg.Dim) == b {
				hi++
			}

			c := t.newNode(n.ID, lo, hi, below)
			n.Children = append(n.Children, c.ID)
			stack = append(stack, c.ID)
			lo = hi
		}
	}
}

// varying returns the node's offsets whose group differs among its seeds.
func (t *Tree) varying(n *Node) []uint {
	first := t.seeds[n.lo]
	diff := uint128.Zero

	for _, s := range t.seeds[n.lo+1 : n.hi] {
		diff = diff.Or(s.Xor(first))
	}

	var out []uint

	for _, o := range n.Offsets {
		if addr.BitsAt(diff, o, t.cfg.Dim) != 0 {
			out = append(out, o)
		}
	}

	return out
}

func (t *Tree) histogram(n *Node) []uint64 {
	if n.Split < 0 {
		return []uint64{uint64(n.Seeds())}
	}

	counts := make([]uint64, 1<<t.cfg.Dim)
	for _, s := range t.seeds[n.lo:n.hi] {
		counts[addr.BitsAt(s, uint(n.Split), t.cfg.Dim)]++
	}

	return counts
}

func (t *Tree) makeLeaf(n *Node, varying []uint) {
	n.free = slices.Clone(varying)
	n.base = t.seeds[n.lo]

	for _, o := range n.free {
		n.base = addr.SetBitsAt(n.base, o, t.cfg.Dim, 0)
	}

	if len(n.free) == 0 {
		t.expand(n)
	}

	t.leaves = append(t.leaves, n.ID)
}

// expand frees the lowest fixed group of a leaf. It reports false when the
// leaf already covers every group.
func (t *Tree) expand(n *Node) bool {
	for o := uint(0); o < 128; o += t.cfg.Dim {
		if !slices.Contains(n.free, o) {
			n.free = append(n.free, o)
			slices.Sort(n.free)
			n.base = addr.SetBitsAt(n.base, o, t.cfg.Dim, 0)

			return true
		}
	}

	return false
}

// Entropy is the Shannon entropy of the non-zero buckets divided by the
// maximum entropy of 2^dim buckets.
func Entropy(counts []uint64, dim uint) float64 {
	if dim == 0 {
		return 0
	}

	var total uint64
	for _, c := range counts {
		total += c
	}

	if total == 0 {
		return 0
	}

	h := 0.0

	for _, c := range counts {
		if c == 0 {
			continue
		}

		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}

	return h / float64(dim)
}

// Node returns the node with the given id.
func (t *Tree) Node(id int) *Node { return t.nodes[id] }

// Len is the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Leaves returns the ids of the leaves still in play.
func (t *Tree) Leaves() []int {
	out := make([]int, 0, len(t.leaves))

	for _, id := range t.leaves {
		if !t.nodes[id].pruned {
			out = append(out, id)
		}
	}

	return out
}

// Used is the number of candidates handed out so far.
func (t *Tree) Used() int { return len(t.used) }

// Queue returns the regions selected for the current round; a candidate's
// code is its region's index in this slice.
func (t *Tree) Queue() []int { return t.queue }

// AllReward returns the normalized rewards the current queue was drawn from,
// parallel to Leaves at selection time.
func (t *Tree) AllReward() []float64 { return t.allReward }

// normalize scales active leaf rewards to sum to one.
func (t *Tree) normalize() {
	active := t.Leaves()
	if len(active) == 0 {
		return
	}

	sum := 0.0
	for _, id := range active {
		sum += t.nodes[id].Reward
	}

	for _, id := range active {
		if sum > 0 {
			t.nodes[id].Reward /= sum
		} else {
			t.nodes[id].Reward = 1 / float64(len(active))
		}
	}
}
