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
	"math/rand/v2"
	"net/netip"
	"strings"
	"testing"

	"github.com/carverauto/cyclescan/pkg/addr"
	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func fourSeeds() []netip.Addr {
	return []netip.Addr{
		netip.MustParseAddr("2001:db8::1"),
		netip.MustParseAddr("2001:db8::2"),
		netip.MustParseAddr("2001:db8:0:1::1"),
		netip.MustParseAddr("2001:db8:0:1::2"),
	}
}

func smallConfig() Config {
	return Config{Dim: 4, MaxLeafSize: 2, LearningRate: 0.1, RegionExtractionNum: 2}
}

func TestEntropyReward(t *testing.T) {
	assert.InDelta(t, 0.4056, Entropy([]uint64{3, 1, 0, 0}, 2), 1e-4)
	assert.InDelta(t, 1.0, Entropy([]uint64{1, 1, 1, 1}, 2), 1e-12)
	assert.Zero(t, Entropy([]uint64{4, 0, 0, 0}, 2))
	assert.Zero(t, Entropy(nil, 2))
}

func TestBuildSplitsOnLeftmostVaryingGroup(t *testing.T) {
	tree, err := New(fourSeeds(), smallConfig(), testRand(1))
	require.NoError(t, err)

	root := tree.Node(0)
	assert.Equal(t, 64, root.Split)
	assert.Len(t, root.Children, 2)

	leaves := tree.Leaves()
	require.Len(t, leaves, 2)

	for _, id := range leaves {
		n := tree.Node(id)
		assert.True(t, n.Leaf())
		assert.Equal(t, 2, n.Seeds())
		assert.Equal(t, 0, n.Split)
		assert.Equal(t, uint(4), n.FreeBits(4))
		assert.InDelta(t, 0.5, n.Reward, 1e-12)
	}
}

func TestSingleSeedLeafExpands(t *testing.T) {
	tree, err := New([]netip.Addr{netip.MustParseAddr("2001:db8::5")}, smallConfig(), testRand(2))
	require.NoError(t, err)

	leaves := tree.Leaves()
	require.Len(t, leaves, 1)
	assert.Equal(t, uint(4), tree.Node(leaves[0]).FreeBits(4))
	assert.InDelta(t, 1.0, tree.Node(leaves[0]).Reward, 1e-12)
}

func rewardSum(tree *Tree) float64 {
	sum := 0.0
	for _, id := range tree.Leaves() {
		sum += tree.Node(id).Reward
	}

	return sum
}

func TestRoundKeepsRewardsNormalizedAndUsedGrowing(t *testing.T) {
	tree, err := New(fourSeeds(), smallConfig(), testRand(3))
	require.NoError(t, err)

	prevUsed := tree.Used()

	for round := 0; round < 4; round++ {
		queue := tree.Select()
		require.Len(t, queue, 2)
		assert.NotEqual(t, queue[0], queue[1])

		cands := tree.Generate(20)
		assert.GreaterOrEqual(t, tree.Used(), prevUsed)
		assert.Equal(t, prevUsed+len(cands), tree.Used())
		prevUsed = tree.Used()

		hits := make([]uint64, MaxRegions)
		if len(cands) > 0 {
			hits[cands[0].Code] = 1
		}

		require.NoError(t, tree.Update(hits))
		assert.InDelta(t, 1.0, rewardSum(tree), 1e-9)
	}
}

func TestGenerateStaysInRegionAndExpandsWhenExhausted(t *testing.T) {
	cfg := smallConfig()
	cfg.ForbidSeeds = true

	tree, err := New(fourSeeds(), cfg, testRand(4))
	require.NoError(t, err)

	queue := tree.Select()
	cands := tree.Generate(40)

	assert.LessOrEqual(t, len(cands), 28)

	seen := make(map[netip.Addr]bool)
	seeds := make(map[netip.Addr]bool)

	for _, s := range fourSeeds() {
		seeds[s] = true
	}

	for _, c := range cands {
		assert.False(t, seen[c.Addr], "duplicate candidate %s", c.Addr)
		assert.False(t, seeds[c.Addr], "seed %s generated", c.Addr)
		seen[c.Addr] = true

		region := tree.Node(queue[c.Code])
		want := region.base
		got := addr.SetBitsAt(addr.V6ToUint128(c.Addr), 0, 4, 0)
		assert.Equal(t, want, got, "candidate %s outside region", c.Addr)
	}

	for _, id := range queue {
		assert.Equal(t, uint(8), tree.Node(id).FreeBits(4), "exhausted region frees one more group")
	}
}

func TestUpdatePrunesBelowFloor(t *testing.T) {
	cfg := smallConfig()
	cfg.RewardFloor = 0.5

	tree, err := New(fourSeeds(), cfg, testRand(5))
	require.NoError(t, err)

	queue := append([]int(nil), tree.Select()...)
	tree.Generate(20)

	hits := make([]uint64, MaxRegions)
	hits[0] = 10

	require.NoError(t, tree.Update(hits))

	assert.Equal(t, []int{queue[0]}, tree.Leaves())
	assert.InDelta(t, 1.0, tree.Node(queue[0]).Reward, 1e-12)
	assert.ErrorIs(t, tree.Update(nil), ErrFeedbackWidth)
}

func TestSelectIsReproducible(t *testing.T) {
	build := func() []int {
		cfg := smallConfig()
		cfg.RegionExtractionNum = 1

		tree, err := New(fourSeeds(), cfg, testRand(6))
		require.NoError(t, err)

		var picks []int
		for i := 0; i < 10; i++ {
			picks = append(picks, tree.Select()...)
		}

		return picks
	}

	assert.Equal(t, build(), build())
}

func TestConfigAndSeedErrors(t *testing.T) {
	bad := smallConfig()
	bad.Dim = 3

	_, err := New(fourSeeds(), bad, testRand(7))
	assert.ErrorIs(t, err, scanerr.ErrConfigFatal)
	assert.ErrorIs(t, err, ErrBadDim)

	_, err = New(nil, smallConfig(), testRand(7))
	assert.ErrorIs(t, err, ErrNoSeeds)

	seeds, err := LoadSeeds(strings.NewReader("# live\n2001:db8::1\n\n2001:db8::2\n"))
	require.NoError(t, err)
	assert.Len(t, seeds, 2)

	_, err = LoadSeeds(strings.NewReader("10.0.0.1\n"))
	assert.ErrorIs(t, err, ErrBadSeed)
}
