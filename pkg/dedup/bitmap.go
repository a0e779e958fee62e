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

package dedup

import (
	"fmt"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"github.com/willf/bitset"
	"lukechampine.com/uint128"

	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

// bitmap is a 2^bits bit array living in an anonymous mapping.
type bitmap struct {
	region mmap.MMap
	set    *bitset.BitSet
	bits   uint
}

func newBitmap(bits uint) (*bitmap, error) {
	if bits > MaxBitmapBits {
		return nil, fmt.Errorf("%w: %w: 2^%d bits", scanerr.ErrConfigFatal, ErrBitmapTooLarge, bits)
	}

	words := (uint64(1)<<bits + 63) / 64

	region, err := mmap.MapRegion(nil, int(words*8), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, scanerr.Resource("bitmap mapping", err)
	}

	buf := unsafe.Slice((*uint64)(unsafe.Pointer(&region[0])), words)

	return &bitmap{region: region, set: bitset.From(buf), bits: bits}, nil
}

func (b *bitmap) mark(i uint64) { b.set.Set(uint(i)) }

func (b *bitmap) marked(i uint64) bool { return b.set.Test(uint(i)) }

func (b *bitmap) count() uint { return b.set.Count() }

func (b *bitmap) close() error {
	if b.region == nil {
		return nil
	}

	err := b.region.Unmap()
	b.region = nil
	b.set = nil

	return err
}

func rangeBits(n uint128.Uint128) (uint, error) {
	if n.IsZero() {
		return 0, fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, ErrEmptyBitmap)
	}

	return cyclic.BitsFor(n)
}

// portIndex maps a port to its position in the scanned port list.
type portIndex struct {
	pos  [1 << 16]int32
	bits uint
}

func newPortIndex(ports []uint16) (*portIndex, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: %w: no ports", scanerr.ErrConfigFatal, ErrEmptyBitmap)
	}

	bits, err := cyclic.BitsFor(uint128.From64(uint64(len(ports))))
	if err != nil {
		return nil, err
	}

	pi := &portIndex{bits: bits}
	for i := range pi.pos {
		pi.pos[i] = -1
	}

	for i, p := range ports {
		if pi.pos[p] < 0 {
			pi.pos[p] = int32(i)
		}
	}

	return pi, nil
}

func (pi *portIndex) lookup(p uint16) (uint64, bool) {
	i := pi.pos[p]
	return uint64(i), i >= 0
}

// V4Bitmap checks IPv4 addresses over a set of scanned ranges.
type V4Bitmap struct {
	bm     *bitmap
	ranges *cyclic.V4Ranges
}

// NewV4Bitmap sizes a bitmap to ranges.
func NewV4Bitmap(ranges *cyclic.V4Ranges) (*V4Bitmap, error) {
	bits, err := rangeBits(ranges.Size())
	if err != nil {
		return nil, err
	}

	bm, err := newBitmap(bits)
	if err != nil {
		return nil, err
	}

	return &V4Bitmap{bm: bm, ranges: ranges}, nil
}

// Set marks ip. Out-of-range addresses are ignored.
func (c *V4Bitmap) Set(ip uint32) {
	if idx, ok := c.ranges.IndexOfUint32(ip); ok {
		c.bm.mark(idx)
	}
}

// NotMarkedAndValid reports whether ip is in range and unseen.
func (c *V4Bitmap) NotMarkedAndValid(ip uint32) bool {
	idx, ok := c.ranges.IndexOfUint32(ip)
	return ok && !c.bm.marked(idx)
}

// Count returns the number of marked addresses.
func (c *V4Bitmap) Count() uint { return c.bm.count() }

// Close releases the mapping.
func (c *V4Bitmap) Close() error { return c.bm.close() }

// V4PortBitmap checks (IPv4, port) pairs. Index layout matches the cyclic
// iterator: ip_index << port_bits | port_index.
type V4PortBitmap struct {
	bm     *bitmap
	ranges *cyclic.V4Ranges
	ports  *portIndex
}

// NewV4PortBitmap sizes a bitmap to ranges x ports.
func NewV4PortBitmap(ranges *cyclic.V4Ranges, ports []uint16) (*V4PortBitmap, error) {
	ipBits, err := rangeBits(ranges.Size())
	if err != nil {
		return nil, err
	}

	pi, err := newPortIndex(ports)
	if err != nil {
		return nil, err
	}

	bm, err := newBitmap(ipBits + pi.bits)
	if err != nil {
		return nil, err
	}

	return &V4PortBitmap{bm: bm, ranges: ranges, ports: pi}, nil
}

func (c *V4PortBitmap) index(k V4Port) (uint64, bool) {
	ipIdx, ok := c.ranges.IndexOfUint32(k.IP)
	if !ok {
		return 0, false
	}

	portIdx, ok := c.ports.lookup(k.Port)
	if !ok {
		return 0, false
	}

	return ipIdx<<c.ports.bits | portIdx, true
}

// Set marks k. Out-of-range pairs are ignored.
func (c *V4PortBitmap) Set(k V4Port) {
	if idx, ok := c.index(k); ok {
		c.bm.mark(idx)
	}
}

// NotMarkedAndValid reports whether k is in range and unseen.
func (c *V4PortBitmap) NotMarkedAndValid(k V4Port) bool {
	idx, ok := c.index(k)
	return ok && !c.bm.marked(idx)
}

// Close releases the mapping.
func (c *V4PortBitmap) Close() error { return c.bm.close() }

// V6Indexer is implemented by cyclic.V6Range and cyclic.V6Pattern.
type V6Indexer interface {
	Size() uint128.Uint128
	IndexOfUint128(v uint128.Uint128) (uint128.Uint128, bool)
}

// V6Bitmap checks IPv6 addresses inside a range or pattern small enough to
// map densely.
type V6Bitmap struct {
	bm    *bitmap
	space V6Indexer
}

// NewV6Bitmap sizes a bitmap to space.
func NewV6Bitmap(space V6Indexer) (*V6Bitmap, error) {
	bits, err := rangeBits(space.Size())
	if err != nil {
		return nil, err
	}

	bm, err := newBitmap(bits)
	if err != nil {
		return nil, err
	}

	return &V6Bitmap{bm: bm, space: space}, nil
}

// Set marks ip. Out-of-range addresses are ignored.
func (c *V6Bitmap) Set(ip uint128.Uint128) {
	if idx, ok := c.space.IndexOfUint128(ip); ok {
		c.bm.mark(idx.Lo)
	}
}

// NotMarkedAndValid reports whether ip is in range and unseen.
func (c *V6Bitmap) NotMarkedAndValid(ip uint128.Uint128) bool {
	idx, ok := c.space.IndexOfUint128(ip)
	return ok && !c.bm.marked(idx.Lo)
}

// Close releases the mapping.
func (c *V6Bitmap) Close() error { return c.bm.close() }

// V6PortBitmap checks (IPv6, port) pairs.
type V6PortBitmap struct {
	bm    *bitmap
	space V6Indexer
	ports *portIndex
}

// NewV6PortBitmap sizes a bitmap to space x ports.
func NewV6PortBitmap(space V6Indexer, ports []uint16) (*V6PortBitmap, error) {
	ipBits, err := rangeBits(space.Size())
	if err != nil {
		return nil, err
	}

	pi, err := newPortIndex(ports)
	if err != nil {
		return nil, err
	}

	bm, err := newBitmap(ipBits + pi.bits)
	if err != nil {
		return nil, err
	}

	return &V6PortBitmap{bm: bm, space: space, ports: pi}, nil
}

func (c *V6PortBitmap) index(k V6Port) (uint64, bool) {
	ipIdx, ok := c.space.IndexOfUint128(k.IP)
	if !ok {
		return 0, false
	}

	portIdx, ok := c.ports.lookup(k.Port)
	if !ok {
		return 0, false
	}

	return ipIdx.Lo<<c.ports.bits | portIdx, true
}

// Set marks k. Out-of-range pairs are ignored.
func (c *V6PortBitmap) Set(k V6Port) {
	if idx, ok := c.index(k); ok {
		c.bm.mark(idx)
	}
}

// NotMarkedAndValid reports whether k is in range and unseen.
func (c *V6PortBitmap) NotMarkedAndValid(k V6Port) bool {
	idx, ok := c.index(k)
	return ok && !c.bm.marked(idx)
}

// Close releases the mapping.
func (c *V6PortBitmap) Close() error { return c.bm.close() }
