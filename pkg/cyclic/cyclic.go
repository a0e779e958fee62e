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

// Package cyclic permutes large address and address-by-port spaces by
// walking the multiplicative group of integers modulo a prime.
//
// An iterator of N elements uses the smallest tabled prime p > 2^bits where
// bits = ceil(log2 N), and a primitive root g of Z*_p. Starting from a random
// element, x <- x*g mod p visits every element of {1..p-1} once before
// returning to the start. Raw value v maps to index v-1; values above 2^bits
// are holes and are skipped by callers.
package cyclic

import (
	"fmt"
	"math/big"
	"math/bits"
	"math/rand/v2"

	"lukechampine.com/uint128"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

// MaxBits is the widest space the prime table covers.
const MaxBits = 120

const (
	maxRootAttempts = 4096
	maxLinearScan   = 1 << 16
)

// Cyclic is a resumable, shardable walk over Z*_p. It is owned by a single
// sender and is not safe for concurrent use.
type Cyclic struct {
	prime    uint128.Uint128
	subOne   uint128.Uint128
	g        uint128.Uint128
	bits     uint
	portBits uint
	limit    uint128.Uint128

	current uint128.Uint128
	last    uint128.Uint128

	initCurrent uint128.Uint128
	initLast    uint128.Uint128

	span  uint128.Uint128
	steps uint64
	done  bool
}

// BitsFor returns ceil(log2 n).
func BitsFor(n uint128.Uint128) (uint, error) {
	if n.IsZero() {
		return 0, fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, ErrEmptyRange)
	}

	return uint(n.Sub64(1).Len()), nil
}

// New builds an iterator over count elements.
func New(count uint128.Uint128, rng *rand.Rand) (*Cyclic, error) {
	return NewWithPorts(count, 1, rng)
}

// NewWithPorts builds an iterator over ipCount x portCount elements. Each
// index splits into (index >> portBits, index & (2^portBits-1)).
func NewWithPorts(ipCount uint128.Uint128, portCount uint64, rng *rand.Rand) (*Cyclic, error) {
	ipBits, err := BitsFor(ipCount)
	if err != nil {
		return nil, err
	}

	portBits, err := BitsFor(uint128.From64(portCount))
	if err != nil {
		return nil, err
	}

	total := ipBits + portBits
	if total > MaxBits {
		return nil, fmt.Errorf("%w: %w: need %d bits, table reaches %d",
			scanerr.ErrConfigFatal, ErrRangeTooLarge, total, MaxBits)
	}

	entry := &groups[total]

	g, err := primitiveRoot(entry, rng)
	if err != nil {
		return nil, err
	}

	c := &Cyclic{
		prime:    entry.prime,
		subOne:   entry.prime.Sub64(1),
		g:        g,
		bits:     total,
		portBits: portBits,
		limit:    uint128.From64(1).Lsh(total),
	}

	start := randomElement(c.subOne, rng)
	c.current, c.last = start, start
	c.initCurrent, c.initLast = start, start
	c.span = c.subOne

	return c, nil
}

// maxGenerator bounds g so that x*g never overflows 128 bits for x < p.
func maxGenerator(p uint128.Uint128) uint64 {
	if p.Hi == 0 {
		return p.Lo - 1
	}

	return uint128.Max.Div(p).Lo
}

func primitiveRoot(entry *groupEntry, rng *rand.Rand) (uint128.Uint128, error) {
	p := entry.prime
	if p.Equals64(2) {
		return uint128.From64(1), nil
	}

	limit := maxGenerator(p)
	if limit < 2 {
		return uint128.Zero, fmt.Errorf("%w: %w: p=%s", scanerr.ErrConfigFatal, ErrNoPrimitiveRoot, p)
	}

	pBig := p.Big()
	subOne := p.Sub64(1).Big()
	one := big.NewInt(1)

	exps := make([]*big.Int, len(entry.factors))
	for i, q := range entry.factors {
		exps[i] = new(big.Int).Quo(subOne, q.Big())
	}

	isRoot := func(g uint64) bool {
		gb := new(big.Int).SetUint64(g)
		r := new(big.Int)

		for _, e := range exps {
			if r.Exp(gb, e, pBig).Cmp(one) == 0 {
				return false
			}
		}

		return true
	}

	span := limit - 1
	for i := 0; i < maxRootAttempts; i++ {
		g := 2 + rng.Uint64N(span)
		if isRoot(g) {
			return uint128.From64(g), nil
		}
	}

	for g := uint64(2); g <= limit && g-2 < maxLinearScan; g++ {
		if isRoot(g) {
			return uint128.From64(g), nil
		}
	}

	return uint128.Zero, fmt.Errorf("%w: %w: p=%s", scanerr.ErrConfigFatal, ErrNoPrimitiveRoot, p)
}

func randomElement(subOne uint128.Uint128, rng *rand.Rand) uint128.Uint128 {
	if subOne.Hi == 0 {
		return uint128.From64(1 + rng.Uint64N(subOne.Lo))
	}

	return uint128.New(rng.Uint64(), rng.Uint64()).Mod(subOne).Add64(1)
}

func (c *Cyclic) mul(x uint128.Uint128) uint128.Uint128 {
	if c.prime.Hi == 0 {
		hi, lo := bits.Mul64(x.Lo, c.g.Lo)
		_, rem := bits.Div64(hi, lo, c.prime.Lo)

		return uint128.From64(rem)
	}

	return x.Mul64(c.g.Lo).Mod(c.prime)
}

// Next advances the walk and returns the new group element. The element
// equal to the saved end is returned and then the iterator is exhausted.
func (c *Cyclic) Next() (uint128.Uint128, bool) {
	if c.done {
		return uint128.Zero, false
	}

	c.current = c.mul(c.current)
	c.steps++

	if c.current.Equals(c.last) {
		c.done = true
	}

	return c.current, true
}

// Reset restores the iterator to its initial (current, last) pair.
func (c *Cyclic) Reset() {
	c.current = c.initCurrent
	c.last = c.initLast
	c.steps = 0
	c.done = false
}

// Resume moves the cursor to a previously observed element of this walk.
func (c *Cyclic) Resume(current uint128.Uint128) error {
	if current.IsZero() || current.Cmp(c.subOne) > 0 {
		return ErrNotInGroup
	}

	c.current = current
	c.done = current.Equals(c.last) && !c.initCurrent.Equals(c.initLast)

	return nil
}

// Split returns shard shardIndex of shardCount. Shard k starts at
// s*g^(k*step) and ends at the start of shard k+1; the last shard ends at the
// global start s. The shards partition the cycle.
func (c *Cyclic) Split(shardIndex, shardCount int) (*Cyclic, error) {
	if shardCount < 1 || shardIndex < 0 || shardIndex >= shardCount {
		return nil, fmt.Errorf("%w: %w: %d of %d", scanerr.ErrConfigFatal, ErrShardIndex, shardIndex, shardCount)
	}

	step, _ := c.subOne.QuoRem64(uint64(shardCount))
	if step.IsZero() {
		return nil, fmt.Errorf("%w: %w: %d shards over %s elements",
			scanerr.ErrConfigFatal, ErrTooManyShards, shardCount, c.subOne)
	}

	start := c.advance(c.initCurrent, step.Mul64(uint64(shardIndex)))

	last := c.initLast
	span := c.subOne.Sub(step.Mul64(uint64(shardCount - 1)))

	if shardIndex < shardCount-1 {
		last = c.advance(c.initCurrent, step.Mul64(uint64(shardIndex+1)))
		span = step
	}

	shard := *c
	shard.current, shard.last = start, last
	shard.initCurrent, shard.initLast = start, last
	shard.span = span
	shard.steps = 0
	shard.done = false

	return &shard, nil
}

// advance returns x*g^e mod p.
func (c *Cyclic) advance(x, e uint128.Uint128) uint128.Uint128 {
	p := c.prime.Big()
	r := new(big.Int).Exp(c.g.Big(), e.Big(), p)
	r.Mul(r, x.Big())
	r.Mod(r, p)

	return uint128.FromBig(r)
}

// Index maps a raw value to its dense index, reporting false for holes.
func (c *Cyclic) Index(v uint128.Uint128) (uint128.Uint128, bool) {
	if v.IsZero() || v.Cmp(c.limit) > 0 {
		return uint128.Zero, false
	}

	return v.Sub64(1), true
}

// SplitIndex separates a dense index into its address and port parts.
func (c *Cyclic) SplitIndex(idx uint128.Uint128) (uint128.Uint128, uint64) {
	if c.portBits == 0 {
		return idx, 0
	}

	return idx.Rsh(c.portBits), idx.Lo & (1<<c.portBits - 1)
}

// Prime returns p.
func (c *Cyclic) Prime() uint128.Uint128 { return c.prime }

// Generator returns the primitive root g.
func (c *Cyclic) Generator() uint128.Uint128 { return c.g }

// Bits returns bits_num, the width of [ip_bits | port_bits].
func (c *Cyclic) Bits() uint { return c.bits }

// PortBits returns the width of the port part of an index.
func (c *Cyclic) PortBits() uint { return c.portBits }

// State returns the cursor pair for checkpointing.
func (c *Cyclic) State() (current, last uint128.Uint128) { return c.current, c.last }

// Steps returns how many elements have been produced since the last reset.
func (c *Cyclic) Steps() uint64 { return c.steps }

// Span returns how many elements this iterator produces in total.
func (c *Cyclic) Span() uint128.Uint128 { return c.span }

// Done reports whether the walk is exhausted.
func (c *Cyclic) Done() bool { return c.done }
