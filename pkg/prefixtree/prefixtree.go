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

// Package prefixtree chooses which IPv6 prefixes to trace next.
//
// Every node is a prefix. Expanding a node at length L releases children at
// L+dim, one per value of the next dim bits. Each node id carries a q-value
// learned from how many new router interfaces probes into it uncovered; a
// node's score is the product of the q-values on its path from the root.
package prefixtree

import (
	"io"
	"math"
	"math/rand/v2"
	"net/netip"

	"github.com/carverauto/cyclescan/pkg/addr"
	"lukechampine.com/uint128"
)

const maxStartExpansion = 1 << 16

type Config struct {
	StartPrefixLen  int     `json:"start_prefix_len"`
	DefaultDim      int     `json:"default_dim"`
	MaxPrefixLen    int     `json:"max_prefix_len"`
	ExtraNodeNum    int     `json:"extra_node_num"`
	Threshold       float64 `json:"threshold"`
	ChildMaxSize    int     `json:"child_max_size"`
	AllowLeafExpand bool    `json:"allow_leaf_expand"`
	RandOrd         bool    `json:"rand_ord"`
	LearningRate    float64 `json:"learning_rate"`
	// Cascade applies feedback to every q-value on the node's path instead
	// of the node's own.
	Cascade  bool    `json:"cascade"`
	InitialQ float64 `json:"initial_q"`
}

func DefaultConfig() Config {
	return Config{
		StartPrefixLen: 32,
		DefaultDim:     4,
		MaxPrefixLen:   64,
		ExtraNodeNum:   64,
		Threshold:      1e-4,
		ChildMaxSize:   16,
		LearningRate:   0.1,
		RandOrd:        true,
		InitialQ:       1,
	}
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.DefaultDim < 1 || c.DefaultDim > 16:
		return configErr(ErrBadDim, "")
	case c.StartPrefixLen < 0 || c.StartPrefixLen > c.MaxPrefixLen || c.MaxPrefixLen > 128:
		return configErr(ErrPrefixLens, "")
	case c.LearningRate <= 0 || c.LearningRate > 1:
		return configErr(ErrLearningRate, "")
	case c.ExtraNodeNum <= 0:
		return configErr(ErrExtraNodeNum, "")
	case c.ChildMaxSize <= 0:
		return configErr(ErrChildMaxSize, "")
	case c.InitialQ <= 0 || c.InitialQ > 1:
		return configErr(ErrInitialQ, "")
	}

	return nil
}

// Node is a prefix. Nodes live in the tree's arena and refer to each other
// by id.
type Node struct {
	ID int
	// Mode is the prefix value, left-aligned with trailing bits zero.
	Mode      uint128.Uint128
	PrefixLen int
	// Zero marks the child whose split bits are all zero.
	Zero     bool
	Parent   int
	Children []int
	// Branches lists the ids on the path from the root, this node last.
	Branches []int

	probed  bool
	pending []uint64 // child values not yet released
	dim     int
}

// Prefix returns the node as a netip.Prefix.
func (n *Node) Prefix() netip.Prefix {
	return netip.PrefixFrom(addr.Uint128ToV6(n.Mode), n.PrefixLen)
}

// Target is a probe destination and the node id it is credited to.
type Target struct {
	Addr netip.Addr
	Code uint32
}

// Tree is the prefix tree plus the round state. The round driver owns it
// between rounds.
type Tree struct {
	cfg   Config
	rng   *rand.Rand
	nodes []*Node
	q     []float64

	frontier  []int // unexpanded nodes still in play
	releasing []int // expanded nodes with children left to release
	queue     []int // nodes probed this round
	zeroChild map[int]int
	sent      map[int]uint64
}

// LoadPrefixes reads one prefix/len per line.
func LoadPrefixes(r io.Reader) ([]netip.Prefix, error) {
	lines, err := addr.ReadLines(r)
	if err != nil {
		return nil, err
	}

	out := make([]netip.Prefix, 0, len(lines))

	for _, l := range lines {
		p, err := netip.ParsePrefix(l)
		if err != nil || !p.Addr().Is6() || p.Addr().Is4In6() {
			return nil, configErr(ErrBadPrefix, l)
		}

		out = append(out, p.Masked())
	}

	return out, nil
}

// New seeds the tree with roots. Roots shorter than StartPrefixLen are split
// down to it up front.
func New(roots []netip.Prefix, cfg Config, rng *rand.Rand) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(roots) == 0 {
		return nil, configErr(ErrNoRoots, "")
	}

	t := &Tree{
		cfg:       cfg,
		rng:       rng,
		zeroChild: make(map[int]int),
		sent:      make(map[int]uint64),
	}

	var expansion uint64

	for _, p := range roots {
		if !p.IsValid() || !p.Addr().Is6() || p.Bits() > cfg.MaxPrefixLen {
			return nil, configErr(ErrBadPrefix, p.String())
		}

		if p.Bits() < cfg.StartPrefixLen {
			shift := cfg.StartPrefixLen - p.Bits()
			if shift > 16 {
				return nil, configErr(ErrTooManyStarts, p.String())
			}

			expansion += 1 << shift
		} else {
			expansion++
		}

		if expansion > maxStartExpansion {
			return nil, configErr(ErrTooManyStarts, p.String())
		}

		p = p.Masked()
		root := t.add(-1, addr.V6ToUint128(p.Addr()), p.Bits(), false)
		t.frontier = append(t.frontier, root.ID)
	}

	for i := 0; i < len(t.frontier); {
		n := t.nodes[t.frontier[i]]
		if n.PrefixLen >= cfg.StartPrefixLen {
			i++
			continue
		}

		t.frontier = append(t.frontier[:i], t.frontier[i+1:]...)
		dim := cfg.StartPrefixLen - n.PrefixLen

		for v := uint64(0); v < 1<<dim; v++ {
			c := t.child(n, dim, v)
			t.frontier = append(t.frontier, c.ID)
		}
	}

	t.queue = append(t.queue, t.frontier...)
	t.order()

	return t, nil
}

func (t *Tree) add(parent int, mode uint128.Uint128, plen int, zero bool) *Node {
	n := &Node{ID: len(t.nodes), Mode: mode, PrefixLen: plen, Zero: zero, Parent: parent}

	if parent >= 0 {
		p := t.nodes[parent]
		n.Branches = make([]int, 0, len(p.Branches)+1)
		n.Branches = append(n.Branches, p.Branches...)
		p.Children = append(p.Children, n.ID)
	}

	n.Branches = append(n.Branches, n.ID)
	t.nodes = append(t.nodes, n)
	t.q = append(t.q, t.cfg.InitialQ)

	return n
}

func (t *Tree) child(p *Node, dim int, v uint64) *Node {
	plen := p.PrefixLen + dim
	mode := addr.SetBitsAt(p.Mode, uint(128-plen), uint(dim), v)

	return t.add(p.ID, mode, plen, v == 0)
}

// Node returns the node with the given id.
func (t *Tree) Node(id int) *Node { return t.nodes[id] }

// Len is the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Q returns the q-value of a node id.
func (t *Tree) Q(id int) float64 { return t.q[id] }

// Product is the path score of a node.
func (t *Tree) Product(id int) float64 {
	p := 1.0
	for _, b := range t.nodes[id].Branches {
		p *= t.q[b]
	}

	return p
}

// Queue returns the node ids to probe this round.
func (t *Tree) Queue() []int { return t.queue }

// Frontier returns the unexpanded nodes still in play.
func (t *Tree) Frontier() []int { return t.frontier }

// ZeroChild returns the all-zero child released for parent this round.
func (t *Tree) ZeroChild(parent int) (int, bool) {
	id, ok := t.zeroChild[parent]
	return id, ok
}

// Targets draws perNode random addresses inside each queued prefix.
func (t *Tree) Targets(perNode int) []Target {
	out := make([]Target, 0, len(t.queue)*perNode)

	for _, id := range t.queue {
		n := t.nodes[id]
		host := addr.Mask(n.PrefixLen).Xor(uint128.Max)

		for range perNode {
			r := uint128.New(t.rng.Uint64(), t.rng.Uint64())
			v := n.Mode.Or(r.And(host))
			out = append(out, Target{Addr: addr.Uint128ToV6(v), Code: uint32(id)})
		}

		t.sent[id] += uint64(perNode)
	}

	return out
}

// Update folds per-node feedback into the q-values. novel counts new
// interfaces per node id; the reward is novel / probes sent, capped at one.
func (t *Tree) Update(novel map[uint32]uint64) {
	lr := t.cfg.LearningRate

	for _, id := range t.queue {
		sent := t.sent[id]
		if sent == 0 {
			continue
		}

		r := math.Min(1, float64(novel[uint32(id)])/float64(sent))

		if t.cfg.Cascade {
			for _, b := range t.nodes[id].Branches {
				t.q[b] = (1-lr)*t.q[b] + lr*r
			}
		} else {
			t.q[id] = (1-lr)*t.q[id] + lr*r
		}

		t.nodes[id].probed = true
	}

	clear(t.sent)
}

// Advance prunes the frontier, expands ExtraNodeNum sampled nodes and
// queues the children released this round. It returns the new queue length;
// zero means the tree is exhausted.
func (t *Tree) Advance() int {
	clear(t.zeroChild)
	t.queue = t.queue[:0]

	kept := t.frontier[:0]
	for _, id := range t.frontier {
		if t.Product(id) > t.cfg.Threshold {
			kept = append(kept, id)
		}
	}

	t.frontier = kept

	var eligible []int

	for _, id := range t.frontier {
		n := t.nodes[id]
		if n.PrefixLen < t.cfg.MaxPrefixLen && (t.cfg.AllowLeafExpand || n.probed) {
			eligible = append(eligible, id)
		}
	}

	chosen := t.Sample(eligible, t.cfg.ExtraNodeNum)

	for _, id := range chosen {
		t.expand(t.nodes[id])
	}

	if len(chosen) > 0 {
		t.dropFrontier(chosen)
	}

	t.release()
	t.order()

	return len(t.queue)
}

// Sample draws k of ids without replacement, each draw proportional to the
// node's path product.
func (t *Tree) Sample(ids []int, k int) []int {
	pool := append([]int(nil), ids...)
	weights := make([]float64, len(pool))

	for i, id := range pool {
		weights[i] = t.Product(id)
	}

	k = min(k, len(pool))
	out := make([]int, 0, k)

	for range k {
		total := 0.0
		for _, w := range weights {
			total += w
		}

		i := len(pool) - 1

		if total <= 0 {
			i = t.rng.IntN(len(pool))
		} else {
			x := t.rng.Float64() * total
			for j, w := range weights {
				if x < w {
					i = j
					break
				}

				x -= w
			}
		}

		out = append(out, pool[i])

		last := len(pool) - 1
		pool[i], pool[last] = pool[last], pool[i]
		weights[i], weights[last] = weights[last], weights[i]
		pool, weights = pool[:last], weights[:last]
	}

	return out
}

func (t *Tree) expand(n *Node) {
	n.dim = min(t.cfg.DefaultDim, t.cfg.MaxPrefixLen-n.PrefixLen)
	n.pending = make([]uint64, 0, 1<<n.dim)

	for v := uint64(1); v < 1<<n.dim; v++ {
		n.pending = append(n.pending, v)
	}

	t.rng.Shuffle(len(n.pending), func(i, j int) {
		n.pending[i], n.pending[j] = n.pending[j], n.pending[i]
	})

	// the all-zero child goes first and does not count against the cap
	z := t.child(n, n.dim, 0)
	t.zeroChild[n.ID] = z.ID
	t.frontier = append(t.frontier, z.ID)
	t.queue = append(t.queue, z.ID)

	t.releasing = append(t.releasing, n.ID)
}

func (t *Tree) dropFrontier(ids []int) {
	drop := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := t.frontier[:0]
	for _, id := range t.frontier {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}

	t.frontier = kept
}

// release lets every expanding parent hand out up to ChildMaxSize more
// children.
func (t *Tree) release() {
	kept := t.releasing[:0]

	for _, id := range t.releasing {
		n := t.nodes[id]

		if t.Product(id) <= t.cfg.Threshold {
			n.pending = nil
			continue
		}

		k := min(t.cfg.ChildMaxSize, len(n.pending))
		for _, v := range n.pending[:k] {
			c := t.child(n, n.dim, v)
			t.frontier = append(t.frontier, c.ID)
			t.queue = append(t.queue, c.ID)
		}

		n.pending = n.pending[k:]
		if len(n.pending) > 0 {
			kept = append(kept, id)
		}
	}

	t.releasing = kept
}

func (t *Tree) order() {
	if !t.cfg.RandOrd {
		return
	}

	t.rng.Shuffle(len(t.queue), func(i, j int) {
		t.queue[i], t.queue[j] = t.queue[j], t.queue[i]
	})
}
