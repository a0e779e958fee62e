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

package prefixtree

import (
	"math/rand/v2"
	"net/netip"
	"strings"
	"testing"

	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

func testConfig() Config {
	return Config{
		StartPrefixLen: 32,
		DefaultDim:     4,
		MaxPrefixLen:   40,
		ExtraNodeNum:   1,
		Threshold:      0.01,
		ChildMaxSize:   3,
		LearningRate:   0.1,
		InitialQ:       1,
	}
}

func TestSamplingFollowsPathProduct(t *testing.T) {
	roots := []netip.Prefix{
		netip.MustParsePrefix("2001:db8::/32"),
		netip.MustParsePrefix("2001:db9::/32"),
	}

	tree, err := New(roots, testConfig(), testRand(1))
	require.NoError(t, err)

	tree.q[0], tree.q[1] = 0.8, 0.2

	const trials = 20000

	first := 0

	for range trials {
		picked := tree.Sample([]int{0, 1}, 1)
		require.Len(t, picked, 1)

		if picked[0] == 0 {
			first++
		}
	}

	assert.InDelta(t, 0.8, float64(first)/trials, 0.02)
}

func TestSampleWithoutReplacement(t *testing.T) {
	roots := []netip.Prefix{
		netip.MustParsePrefix("2001:db8::/32"),
		netip.MustParsePrefix("2001:db9::/32"),
		netip.MustParsePrefix("2001:dba::/32"),
	}

	tree, err := New(roots, testConfig(), testRand(2))
	require.NoError(t, err)

	picked := tree.Sample([]int{0, 1, 2}, 5)
	assert.ElementsMatch(t, []int{0, 1, 2}, picked)
}

func TestShortRootsSplitToStartLength(t *testing.T) {
	tree, err := New([]netip.Prefix{netip.MustParsePrefix("2001:db8::/30")}, testConfig(), testRand(3))
	require.NoError(t, err)

	require.Len(t, tree.Frontier(), 4)

	for i, id := range tree.Frontier() {
		n := tree.Node(id)
		assert.Equal(t, 32, n.PrefixLen)
		assert.Equal(t, i == 0, n.Zero)
		assert.Equal(t, []int{0, id}, n.Branches)
	}

	assert.Equal(t, "2001:dbb::/32", tree.Node(tree.Frontier()[3]).Prefix().String())
}

func TestTargetsStayInsidePrefix(t *testing.T) {
	p := netip.MustParsePrefix("2001:db8::/32")

	tree, err := New([]netip.Prefix{p}, testConfig(), testRand(4))
	require.NoError(t, err)

	targets := tree.Targets(8)
	require.Len(t, targets, 8)

	for _, tg := range targets {
		assert.True(t, p.Contains(tg.Addr), tg.Addr.String())
		assert.Equal(t, uint32(0), tg.Code)
	}
}

func TestAdvanceReleasesZeroChildAndCapsSiblings(t *testing.T) {
	cfg := testConfig()

	tree, err := New([]netip.Prefix{netip.MustParsePrefix("2001:db8::/32")}, cfg, testRand(5))
	require.NoError(t, err)

	tree.Targets(2)
	tree.Update(map[uint32]uint64{0: 1})
	assert.InDelta(t, 0.95, tree.Q(0), 1e-12)

	require.Equal(t, 4, tree.Advance())

	zero, ok := tree.ZeroChild(0)
	require.True(t, ok)

	z := tree.Node(zero)
	assert.True(t, z.Zero)
	assert.Equal(t, 36, z.PrefixLen)
	assert.Equal(t, tree.Node(0).Mode, z.Mode)
	assert.Contains(t, tree.Queue(), zero)

	// children are unprobed, so only the remaining siblings trickle out
	for range 4 {
		assert.Equal(t, 3, tree.Advance())
	}

	assert.Equal(t, 0, tree.Advance())
	assert.Equal(t, 17, tree.Len())

	seen := make(map[netip.Prefix]bool)
	for _, c := range tree.Node(0).Children {
		pfx := tree.Node(c).Prefix()
		assert.False(t, seen[pfx])
		seen[pfx] = true
	}

	assert.Len(t, seen, 16)
}

func TestUpdateIndependentAndCascade(t *testing.T) {
	for _, cascade := range []bool{false, true} {
		cfg := testConfig()
		cfg.Cascade = cascade
		cfg.AllowLeafExpand = true

		tree, err := New([]netip.Prefix{netip.MustParsePrefix("2001:db8::/32")}, cfg, testRand(6))
		require.NoError(t, err)

		require.Positive(t, tree.Advance())

		child := tree.Queue()[0]
		tree.Targets(4)
		tree.Update(map[uint32]uint64{uint32(child): 0})

		assert.InDelta(t, 0.9, tree.Q(child), 1e-12)

		if cascade {
			// four queued children each fold a zero reward into the root
			assert.InDelta(t, 0.6561, tree.Q(0), 1e-12, "cascade reaches ancestors")
		} else {
			assert.InDelta(t, 1.0, tree.Q(0), 1e-12)
		}

		assert.InDelta(t, tree.Q(0)*tree.Q(child), tree.Product(child), 1e-12)
	}
}

func TestThresholdPrunesFrontier(t *testing.T) {
	cfg := testConfig()
	cfg.Threshold = 0.95
	cfg.LearningRate = 1

	roots := []netip.Prefix{
		netip.MustParsePrefix("2001:db8::/32"),
		netip.MustParsePrefix("2001:db9::/32"),
	}

	tree, err := New(roots, cfg, testRand(7))
	require.NoError(t, err)

	tree.Targets(1)
	tree.Update(map[uint32]uint64{0: 1, 1: 0})
	tree.Advance()

	assert.NotContains(t, tree.Frontier(), 1)
}

func TestLoadPrefixesAndConfigErrors(t *testing.T) {
	roots, err := LoadPrefixes(strings.NewReader("# roots\n2001:db8::/32\n2001:db9:1::/48\n"))
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	_, err = LoadPrefixes(strings.NewReader("10.0.0.0/8\n"))
	assert.ErrorIs(t, err, ErrBadPrefix)

	cfg := testConfig()
	cfg.DefaultDim = 0
	_, err = New(roots, cfg, testRand(8))
	assert.ErrorIs(t, err, scanerr.ErrConfigFatal)

	_, err = New(nil, testConfig(), testRand(8))
	assert.ErrorIs(t, err, ErrNoRoots)

	_, err = New([]netip.Prefix{netip.MustParsePrefix("2001::/8")}, testConfig(), testRand(8))
	assert.ErrorIs(t, err, ErrTooManyStarts)
}
