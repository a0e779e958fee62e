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
	"math/big"
	"math/rand/v2"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func drain(c *Cyclic) []uint128.Uint128 {
	var out []uint128.Uint128

	for {
		v, ok := c.Next()
		if !ok {
			return out
		}

		out = append(out, v)
	}
}

func TestPrimeTable(t *testing.T) {
	for i, e := range groups {
		require.Equal(t, uint(i), e.bits)

		limit := new(big.Int).Lsh(big.NewInt(1), e.bits)
		assert.Equal(t, 1, e.prime.Big().Cmp(limit), "prime for %d bits must exceed 2^%d", i, i)
		assert.True(t, e.prime.Big().ProbablyPrime(20), "entry %d", i)

		one := big.NewInt(1)
		for c := new(big.Int).Add(limit, one); c.Cmp(e.prime.Big()) < 0; c.Add(c, one) {
			assert.False(t, c.ProbablyPrime(20), "entry %d skips the smaller prime %s", i, c)
		}

		for _, q := range e.factors {
			assert.True(t, q.Big().ProbablyPrime(20), "entry %d lists composite factor %s", i, q)
		}

		if i > 0 {
			// p-1 must be fully described by its distinct factors.
			rest := new(big.Int).Sub(e.prime.Big(), big.NewInt(1))
			for _, q := range e.factors {
				qb := q.Big()
				m := new(big.Int)

				for {
					quo, rem := new(big.Int).QuoRem(rest, qb, m)
					if rem.Sign() != 0 {
						break
					}

					rest = quo
				}
			}

			assert.Equal(t, 0, rest.Cmp(big.NewInt(1)), "entry %d has unlisted factors", i)
		}
	}
}

func TestEightElementsUseElevenAndVisitAll(t *testing.T) {
	c, err := New(uint128.From64(8), testRand(1))
	require.NoError(t, err)

	assert.Equal(t, uint64(11), c.Prime().Lo)
	assert.Equal(t, uint(3), c.Bits())

	start, _ := c.State()
	vals := drain(c)
	require.Len(t, vals, 10)
	assert.Equal(t, start, vals[len(vals)-1])

	seen := map[uint64]bool{}

	var kept []uint64

	for _, v := range vals {
		assert.False(t, seen[v.Lo], "duplicate raw value %d", v.Lo)
		seen[v.Lo] = true

		if idx, ok := c.Index(v); ok {
			kept = append(kept, idx.Lo)
		}
	}

	assert.ElementsMatch(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7}, kept)
}

func TestFullCycleIsPermutation(t *testing.T) {
	for _, n := range []uint64{1, 2, 3, 5, 100, 1000, 4096, 70000} {
		c, err := New(uint128.From64(n), testRand(n))
		require.NoError(t, err)

		p := c.Prime().Lo
		seen := make([]bool, p)
		count := uint64(0)

		for _, v := range drain(c) {
			require.NotZero(t, v.Lo)
			require.Less(t, v.Lo, p)
			require.False(t, seen[v.Lo], "n=%d value %d repeated", n, v.Lo)
			seen[v.Lo] = true
			count++
		}

		assert.Equal(t, p-1, count, "n=%d", n)
	}
}

func TestResetReplaysSequence(t *testing.T) {
	c, err := New(uint128.From64(5000), testRand(7))
	require.NoError(t, err)

	first := make([]uint128.Uint128, 0, 100)
	for i := 0; i < 100; i++ {
		v, ok := c.Next()
		require.True(t, ok)

		first = append(first, v)
	}

	c.Reset()
	assert.Zero(t, c.Steps())

	for i := 0; i < 100; i++ {
		v, _ := c.Next()
		assert.Equal(t, first[i], v)
	}
}

func TestSplitPartitionsCycle(t *testing.T) {
	for _, shards := range []int{1, 2, 3, 4, 7, 16} {
		root, err := New(uint128.From64(3000), testRand(uint64(shards)))
		require.NoError(t, err)

		p := root.Prime().Lo
		seen := make([]int, p)
		total := uint64(0)

		for k := 0; k < shards; k++ {
			shard, err := root.Split(k, shards)
			require.NoError(t, err)

			vals := drain(shard)
			assert.Equal(t, shard.Span().Lo, uint64(len(vals)), "shard %d/%d", k, shards)

			for _, v := range vals {
				seen[v.Lo]++
			}

			total += uint64(len(vals))
		}

		assert.Equal(t, p-1, total)

		for v := uint64(1); v < p; v++ {
			assert.Equal(t, 1, seen[v], "value %d with %d shards", v, shards)
		}
	}
}

func TestSplitErrors(t *testing.T) {
	c, err := New(uint128.From64(2), testRand(3))
	require.NoError(t, err)

	_, err = c.Split(0, 8)
	require.ErrorIs(t, err, ErrTooManyShards)
	assert.True(t, scanerr.IsFatal(err))

	_, err = c.Split(3, 2)
	require.ErrorIs(t, err, ErrShardIndex)
}

func TestRangeErrors(t *testing.T) {
	_, err := New(uint128.Zero, testRand(1))
	require.ErrorIs(t, err, ErrEmptyRange)
	assert.ErrorIs(t, err, scanerr.ErrConfigFatal)

	_, err = New(uint128.From64(1).Lsh(121), testRand(1))
	require.ErrorIs(t, err, ErrRangeTooLarge)
	assert.ErrorIs(t, err, scanerr.ErrConfigFatal)
}

func TestLargeGroupStepsMatchBigInt(t *testing.T) {
	c, err := New(uint128.From64(1).Lsh(100), testRand(11))
	require.NoError(t, err)

	p := c.Prime().Big()
	g := c.Generator().Big()
	cur, _ := c.State()
	x := cur.Big()

	seen := map[uint128.Uint128]bool{}

	for i := 0; i < 2000; i++ {
		v, ok := c.Next()
		require.True(t, ok)

		x.Mul(x, g).Mod(x, p)
		require.Equal(t, 0, x.Cmp(v.Big()), "step %d", i)
		require.False(t, seen[v])
		seen[v] = true
	}
}

func TestPortWidening(t *testing.T) {
	c, err := NewWithPorts(uint128.From64(5), 3, testRand(5))
	require.NoError(t, err)
	assert.Equal(t, uint(2), c.PortBits())
	assert.Equal(t, uint(5), c.Bits())

	type pair struct{ ip, port uint64 }

	got := map[pair]int{}

	for _, v := range drain(c) {
		idx, ok := c.Index(v)
		if !ok {
			continue
		}

		ip, port := c.SplitIndex(idx)
		if ip.Lo < 5 && port < 3 {
			got[pair{ip.Lo, port}]++
		}
	}

	assert.Len(t, got, 15)

	for k, n := range got {
		assert.Equal(t, 1, n, "%v", k)
	}
}

func TestTargetsCoverRangesOnce(t *testing.T) {
	space, err := ParseV4Ranges([]string{"10.0.0.0/30", "192.168.1.10-192.168.1.12", "10.0.0.2"})
	require.NoError(t, err)
	require.Equal(t, uint64(7), space.Size().Lo)

	ports := []uint16{22, 80}

	tg, err := NewTargets(space, ports, testRand(9))
	require.NoError(t, err)

	block, err := ParseBlocklist([]string{"# mgmt", "192.168.1.11", ""})
	require.NoError(t, err)
	tg.SetExclude(block)

	type target struct {
		a    netip.Addr
		port uint16
	}

	got := map[target]int{}

	for {
		a, port, ok := tg.Next()
		if !ok {
			break
		}

		got[target{a, port}]++
	}

	assert.Len(t, got, 12)
	assert.Equal(t, uint64(2), tg.Excluded())
	assert.NotContains(t, got, target{netip.MustParseAddr("192.168.1.11"), 22})
	assert.Contains(t, got, target{netip.MustParseAddr("10.0.0.3"), 80})
}

func TestV4RangesIndexRoundTrip(t *testing.T) {
	space, err := ParseV4Ranges([]string{"1.1.1.0/29", "8.8.8.8"})
	require.NoError(t, err)

	for i := uint64(0); i < space.Size().Lo; i++ {
		a := space.At(uint128.From64(i))
		idx, ok := space.IndexOf(a)
		require.True(t, ok)
		assert.Equal(t, i, idx.Lo)
	}

	_, ok := space.IndexOf(netip.MustParseAddr("8.8.8.9"))
	assert.False(t, ok)
}

func TestV6PatternScattersFreeBits(t *testing.T) {
	base := uint128.New(0x0000_0000_0000_0000, 0x2001_0db8_0000_0000)
	mask := uint128.From64(0xf0f)

	p, err := NewV6Pattern(base, mask)
	require.NoError(t, err)
	assert.Equal(t, uint64(256), p.Size().Lo)

	v := p.Compose(uint128.From64(0x1f))
	assert.Equal(t, uint64(0x10f), v.Lo)

	idx, ok := p.IndexOf(p.At(uint128.From64(0xa5)))
	require.True(t, ok)
	assert.Equal(t, uint64(0xa5), idx.Lo)

	_, ok = p.IndexOf(netip.MustParseAddr("2001:db9::1"))
	assert.False(t, ok)
}

func TestParseV6Range(t *testing.T) {
	r, err := ParseV6Range("2001:db8::/120")
	require.NoError(t, err)
	assert.Equal(t, uint64(256), r.Size().Lo)
	assert.Equal(t, netip.MustParseAddr("2001:db8::ff"), r.At(uint128.From64(255)))

	_, err = ParseV6Range("2001:db8::/4")
	require.ErrorIs(t, err, ErrRangeTooLarge)

	_, err = ParseV6Range("10.0.0.0/8")
	require.ErrorIs(t, err, ErrMixedFamilies)
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		in      string
		want    []uint16
		wantErr bool
	}{
		{in: "80", want: []uint16{80}},
		{in: "80,443,80", want: []uint16{80, 443}},
		{in: "20-22, 80", want: []uint16{20, 21, 22, 80}},
		{in: "22-20", wantErr: true},
		{in: "70000", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "80abc", wantErr: true},
		{in: "80-90x", wantErr: true},
		{in: "+80", wantErr: true},
		{in: "-80", wantErr: true},
		{in: "0-2", want: []uint16{0, 1, 2}},
		{in: "65535", want: []uint16{65535}},
		{in: "443 - 444", want: []uint16{443, 444}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePorts(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, scanerr.IsFatal(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
