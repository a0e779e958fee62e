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

// Package addr converts between netip addresses and the dense integers the
// iterators, checkers and trees operate on.
package addr

import (
	"bufio"
	"encoding/binary"
	"io"
	"net/netip"
	"strings"

	"lukechampine.com/uint128"
)

// V4ToUint32 returns the big-endian integer of an IPv4 (or 4in6) address.
func V4ToUint32(a netip.Addr) uint32 {
	b := a.Unmap().As4()
	return binary.BigEndian.Uint32(b[:])
}

// Uint32ToV4 is the inverse of V4ToUint32.
func Uint32ToV4(v uint32) netip.Addr {
	var b [4]byte

	binary.BigEndian.PutUint32(b[:], v)

	return netip.AddrFrom4(b)
}

// V6ToUint128 returns the big-endian integer of a 16-byte address.
func V6ToUint128(a netip.Addr) uint128.Uint128 {
	b := a.As16()
	return uint128.FromBytesBE(b[:])
}

// Uint128ToV6 is the inverse of V6ToUint128.
func Uint128ToV6(v uint128.Uint128) netip.Addr {
	var b [16]byte

	v.PutBytesBE(b[:])

	return netip.AddrFrom16(b)
}

// Bytes16ToUint128 reads a raw 16-byte address slice.
func Bytes16ToUint128(b []byte) uint128.Uint128 {
	return uint128.FromBytesBE(b[:16])
}

// Mask returns a value with the top n bits set (n in [0,128]).
func Mask(n int) uint128.Uint128 {
	switch {
	case n <= 0:
		return uint128.Zero
	case n >= 128:
		return uint128.Max
	}

	return uint128.Max.Lsh(uint(128 - n))
}

// PrefixBits returns the top n bits of v with the rest cleared.
func PrefixBits(v uint128.Uint128, n int) uint128.Uint128 {
	return v.And(Mask(n))
}

// BitsAt extracts width bits whose lowest bit is at offset (counted from
// the least significant end of the address).
func BitsAt(v uint128.Uint128, offset, width uint) uint64 {
	if width == 0 {
		return 0
	}

	return v.Rsh(offset).Lo & (1<<width - 1)
}

// SetBitsAt writes width bits of val at offset, replacing what was there.
func SetBitsAt(v uint128.Uint128, offset, width uint, val uint64) uint128.Uint128 {
	if width == 0 {
		return v
	}

	m := uint128.From64(1<<width - 1).Lsh(offset)
	cleared := v.And(m.Xor(uint128.Max))

	return cleared.Or(uint128.From64(val & (1<<width - 1)).Lsh(offset))
}

// ReadLines returns the trimmed non-empty lines of r, skipping lines that
// start with '#'.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lines = append(lines, line)
	}

	return lines, sc.Err()
}
