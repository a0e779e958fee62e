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

package spacetree

import (
	"math"

	"github.com/carverauto/cyclescan/pkg/addr"
	"lukechampine.com/uint128"
)

// attemptFactor bounds candidate draws per requested address before a
// region is treated as exhausted.
const attemptFactor = 4

// Select draws up to RegionExtractionNum leaves without replacement with
// probability proportional to reward^(1/LearningRate) and makes them the
// round's region queue.
func (t *Tree) Select() []int {
	active := t.Leaves()

	t.allReward = t.allReward[:0]
	for _, id := range active {
		t.allReward = append(t.allReward, t.nodes[id].Reward)
	}

	k := min(t.cfg.RegionExtractionNum, len(active))

	weights := make([]float64, len(active))
	for i, r := range t.allReward {
		weights[i] = math.Pow(r, 1/t.cfg.LearningRate)
	}

	t.queue = t.queue[:0]

	for range k {
		i := t.draw(weights)
		t.queue = append(t.queue, active[i])

		last := len(active) - 1
		active[i], active[last] = active[last], active[i]
		weights[i], weights[last] = weights[last], weights[i]
		active, weights = active[:last], weights[:last]
	}

	return t.queue
}

// draw picks an index with probability proportional to weights, uniformly
// when every weight is zero.
func (t *Tree) draw(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return t.rng.IntN(len(weights))
	}

	x := t.rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}

		x -= w
	}

	return len(weights) - 1
}

// Generate produces up to budget unused addresses spread evenly over the
// region queue. A region that cannot fill its share frees one more group
// for the next round.
func (t *Tree) Generate(budget int) []Candidate {
	if len(t.queue) == 0 || budget <= 0 {
		return nil
	}

	out := make([]Candidate, 0, budget)
	share, extra := budget/len(t.queue), budget%len(t.queue)

	for code, id := range t.queue {
		n := t.nodes[id]
		n.sent = 0

		quota := share
		if code < extra {
			quota++
		}

		if quota == 0 {
			continue
		}

		for tries := 0; tries < quota*attemptFactor && int(n.sent) < quota; tries++ {
			v := t.complete(n)

			if _, seen := t.used[v]; seen {
				continue
			}

			if _, seed := t.seedOK[v]; seed {
				continue
			}

			t.used[v] = struct{}{}
			n.sent++
			out = append(out, Candidate{Addr: addr.Uint128ToV6(v), Code: uint16(code)})
		}

		if int(n.sent) < quota {
			t.expand(n)
		}
	}

	return out
}

func (t *Tree) complete(n *Node) uint128.Uint128 {
	v := n.base
	for _, o := range n.free {
		v = addr.SetBitsAt(v, o, t.cfg.Dim, t.rng.Uint64())
	}

	return v
}

// Update folds the per-code hit counts of the finished round into the
// queued regions' rewards, prunes leaves below the floor and renormalizes.
func (t *Tree) Update(hits []uint64) error {
	if len(hits) < len(t.queue) {
		return ErrFeedbackWidth
	}

	lr := t.cfg.LearningRate

	for code, id := range t.queue {
		n := t.nodes[id]
		if n.sent == 0 {
			continue
		}

		ratio := float64(hits[code]) / float64(n.sent)
		n.Reward = (1-lr)*n.Reward + lr*ratio
	}

	t.normalize()
	t.prune()
	t.normalize()

	return nil
}

func (t *Tree) prune() {
	if t.cfg.RewardFloor <= 0 {
		return
	}

	active := t.Leaves()
	keep := 0

	for _, id := range active {
		if t.nodes[id].Reward >= t.cfg.RewardFloor {
			keep++
		}
	}

	if keep == 0 {
		return
	}

	for _, id := range active {
		if t.nodes[id].Reward < t.cfg.RewardFloor {
			t.nodes[id].pruned = true
		}
	}
}
