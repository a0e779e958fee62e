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
	"encoding/binary"

	"github.com/willf/bloom"
	"lukechampine.com/uint128"
)

// HashSet is an exact checker for sparse scans. It does not range-check:
// callers only feed it keys they already know are in scope.
type HashSet[K comparable] struct {
	seen map[K]struct{}
}

// NewHashSet pre-sizes the set for the expected number of responses.
func NewHashSet[K comparable](capacity int) *HashSet[K] {
	return &HashSet[K]{seen: make(map[K]struct{}, capacity)}
}

// Set marks k.
func (h *HashSet[K]) Set(k K) { h.seen[k] = struct{}{} }

// NotMarkedAndValid reports whether k is unseen.
func (h *HashSet[K]) NotMarkedAndValid(k K) bool {
	_, ok := h.seen[k]
	return !ok
}

// Len returns the number of marked keys.
func (h *HashSet[K]) Len() int { return len(h.seen) }

// Bloom is an approximate checker for very sparse IPv6 scans where even a
// hash set is too large. A false positive reports a new key as seen; a
// marked key is never reported unseen.
type Bloom[K comparable] struct {
	filter *bloom.BloomFilter
	encode func(K, []byte) []byte
	buf    [18]byte
}

// NewV6Bloom sizes a filter for expected keys at false-positive rate fp.
func NewV6Bloom(expected uint, fp float64) *Bloom[uint128.Uint128] {
	return &Bloom[uint128.Uint128]{
		filter: bloom.NewWithEstimates(expected, fp),
		encode: func(k uint128.Uint128, b []byte) []byte {
			k.PutBytesBE(b[:16])
			return b[:16]
		},
	}
}

// NewV6PortBloom sizes a filter for (IPv6, port) keys.
func NewV6PortBloom(expected uint, fp float64) *Bloom[V6Port] {
	return &Bloom[V6Port]{
		filter: bloom.NewWithEstimates(expected, fp),
		encode: func(k V6Port, b []byte) []byte {
			k.IP.PutBytesBE(b[:16])
			binary.BigEndian.PutUint16(b[16:18], k.Port)

			return b[:18]
		},
	}
}

// Set marks k.
func (f *Bloom[K]) Set(k K) { f.filter.Add(f.encode(k, f.buf[:])) }

// NotMarkedAndValid reports whether k is probably unseen.
func (f *Bloom[K]) NotMarkedAndValid(k K) bool { return !f.filter.Test(f.encode(k, f.buf[:])) }

var (
	_ Checker[uint32]          = (*V4Bitmap)(nil)
	_ Checker[V4Port]          = (*V4PortBitmap)(nil)
	_ Checker[uint128.Uint128] = (*V6Bitmap)(nil)
	_ Checker[V6Port]          = (*V6PortBitmap)(nil)
	_ Checker[uint32]          = (*HashSet[uint32])(nil)
	_ Checker[uint128.Uint128] = (*Bloom[uint128.Uint128])(nil)
)
