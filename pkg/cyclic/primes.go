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

import "lukechampine.com/uint128"

// groupEntry is a prime just above a power of two together with the
// distinct prime factors of p-1.
type groupEntry struct {
	bits    uint
	prime   uint128.Uint128
	factors []uint128.Uint128
}

// groups is indexed by bit width. Entry k holds the smallest prime p > 2^k
// whose p-1 has a known factorization.
var groups = [...]groupEntry{
	{bits: 0, prime: uint128.Uint128{Lo: 0x2, Hi: 0x0}, factors: []uint128.Uint128{}},
	{bits: 1, prime: uint128.Uint128{Lo: 0x3, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}}},
	{bits: 2, prime: uint128.Uint128{Lo: 0x5, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}}},
	{bits: 3, prime: uint128.Uint128{Lo: 0xb, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}}},
	{bits: 4, prime: uint128.Uint128{Lo: 0x11, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}}},
	{bits: 5, prime: uint128.Uint128{Lo: 0x25, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}}},
	{bits: 6, prime: uint128.Uint128{Lo: 0x43, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}}},
	{bits: 7, prime: uint128.Uint128{Lo: 0x83, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}}},
	{bits: 8, prime: uint128.Uint128{Lo: 0x101, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}}},
	{bits: 9, prime: uint128.Uint128{Lo: 0x209, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}}},
	{bits: 10, prime: uint128.Uint128{Lo: 0x407, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x67, Hi: 0x0}}},
	{bits: 11, prime: uint128.Uint128{Lo: 0x805, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}}},
	{bits: 12, prime: uint128.Uint128{Lo: 0x1003, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x2ab, Hi: 0x0}}},
	{bits: 13, prime: uint128.Uint128{Lo: 0x2011, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}}},
	{bits: 14, prime: uint128.Uint128{Lo: 0x401b, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x223, Hi: 0x0}}},
	{bits: 15, prime: uint128.Uint128{Lo: 0x8003, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x1d, Hi: 0x0}, {Lo: 0x71, Hi: 0x0}}},
	{bits: 16, prime: uint128.Uint128{Lo: 0x10001, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}}},
	{bits: 17, prime: uint128.Uint128{Lo: 0x2001d, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x17, Hi: 0x0}}},
	{bits: 18, prime: uint128.Uint128{Lo: 0x40003, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xaaab, Hi: 0x0}}},
	{bits: 19, prime: uint128.Uint128{Lo: 0x80015, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x17, Hi: 0x0}, {Lo: 0x29, Hi: 0x0}, {Lo: 0x8b, Hi: 0x0}}},
	{bits: 20, prime: uint128.Uint128{Lo: 0x100007, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x1d, Hi: 0x0}, {Lo: 0x65, Hi: 0x0}, {Lo: 0xb3, Hi: 0x0}}},
	{bits: 21, prime: uint128.Uint128{Lo: 0x200011, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xaaab, Hi: 0x0}}},
	{bits: 22, prime: uint128.Uint128{Lo: 0x40000f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xaaaad, Hi: 0x0}}},
	{bits: 23, prime: uint128.Uint128{Lo: 0x800009, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x11, Hi: 0x0}, {Lo: 0xf0f1, Hi: 0x0}}},
	{bits: 24, prime: uint128.Uint128{Lo: 0x100002b, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x17, Hi: 0x0}, {Lo: 0x67, Hi: 0x0}, {Lo: 0xdd5, Hi: 0x0}}},
	{bits: 25, prime: uint128.Uint128{Lo: 0x2000023, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0xdca9, Hi: 0x0}}},
	{bits: 26, prime: uint128.Uint128{Lo: 0x400000f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x12f685, Hi: 0x0}}},
	{bits: 27, prime: uint128.Uint128{Lo: 0x800001d, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x12f685, Hi: 0x0}}},
	{bits: 28, prime: uint128.Uint128{Lo: 0x10000003, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x154ab, Hi: 0x0}}},
	{bits: 29, prime: uint128.Uint128{Lo: 0x2000000b, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x17, Hi: 0x0}, {Lo: 0x87af7, Hi: 0x0}}},
	{bits: 30, prime: uint128.Uint128{Lo: 0x40000003, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x3b, Hi: 0x0}, {Lo: 0x2e4851, Hi: 0x0}}},
	{bits: 31, prime: uint128.Uint128{Lo: 0x8000000b, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x95, Hi: 0x0}, {Lo: 0x24a73b, Hi: 0x0}}},
	{bits: 32, prime: uint128.Uint128{Lo: 0x10000000f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x83, Hi: 0x0}, {Lo: 0x58f01, Hi: 0x0}}},
	{bits: 33, prime: uint128.Uint128{Lo: 0x200000011, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x3b, Hi: 0x0}, {Lo: 0x2e4851, Hi: 0x0}}},
	{bits: 34, prime: uint128.Uint128{Lo: 0x400000019, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x53, Hi: 0x0}, {Lo: 0x4fd, Hi: 0x0}, {Lo: 0x4f25, Hi: 0x0}}},
	{bits: 35, prime: uint128.Uint128{Lo: 0x800000035, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x4e04e05, Hi: 0x0}}},
	{bits: 36, prime: uint128.Uint128{Lo: 0x100000001f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0xa3, Hi: 0x0}, {Lo: 0x373, Hi: 0x0}, {Lo: 0x3a487, Hi: 0x0}}},
	{bits: 37, prime: uint128.Uint128{Lo: 0x2000000009, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x89, Hi: 0x0}, {Lo: 0x3b9, Hi: 0x0}, {Lo: 0x66cd, Hi: 0x0}}},
	{bits: 38, prime: uint128.Uint128{Lo: 0x4000000007, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x8af5, Hi: 0x0}, {Lo: 0x25baf, Hi: 0x0}}},
	{bits: 39, prime: uint128.Uint128{Lo: 0x8000000017, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x17f, Hi: 0x0}, {Lo: 0x2da143b, Hi: 0x0}}},
	{bits: 40, prime: uint128.Uint128{Lo: 0x1000000000f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x888888889, Hi: 0x0}}},
	{bits: 41, prime: uint128.Uint128{Lo: 0x2000000001b, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x115, Hi: 0x0}, {Lo: 0xec979119, Hi: 0x0}}},
	{bits: 42, prime: uint128.Uint128{Lo: 0x4000000000f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x47, Hi: 0x0}, {Lo: 0xe3, Hi: 0x0}, {Lo: 0x3561fd, Hi: 0x0}}},
	{bits: 43, prime: uint128.Uint128{Lo: 0x8000000001d, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x47, Hi: 0x0}, {Lo: 0xe3, Hi: 0x0}, {Lo: 0x3561fd, Hi: 0x0}}},
	{bits: 44, prime: uint128.Uint128{Lo: 0x100000000007, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0x35, Hi: 0x0}, {Lo: 0x61, Hi: 0x0}, {Lo: 0x9456485, Hi: 0x0}}},
	{bits: 45, prime: uint128.Uint128{Lo: 0x20000000003b, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x1d7a3, Hi: 0x0}, {Lo: 0x7cd0b, Hi: 0x0}}},
	{bits: 46, prime: uint128.Uint128{Lo: 0x40000000000f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x1db945, Hi: 0x0}, {Lo: 0x5bde49, Hi: 0x0}}},
	{bits: 47, prime: uint128.Uint128{Lo: 0x800000000005, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x14b, Hi: 0x0}, {Lo: 0x11f6e09, Hi: 0x0}}},
	{bits: 48, prime: uint128.Uint128{Lo: 0x1000000000015, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x551, Hi: 0x0}, {Lo: 0x92c060e1, Hi: 0x0}}},
	{bits: 49, prime: uint128.Uint128{Lo: 0x2000000000045, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x85bf37612d, Hi: 0x0}}},
	{bits: 50, prime: uint128.Uint128{Lo: 0x4000000000037, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0x2e8ba2e8ba31, Hi: 0x0}}},
	{bits: 51, prime: uint128.Uint128{Lo: 0x8000000000015, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0xb3, Hi: 0x0}, {Lo: 0xdbd, Hi: 0x0}, {Lo: 0xb1343f, Hi: 0x0}}},
	{bits: 52, prime: uint128.Uint128{Lo: 0x10000000000015, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x17, Hi: 0x0}, {Lo: 0x95785, Hi: 0x0}, {Lo: 0xf0ff7, Hi: 0x0}}},
	{bits: 53, prime: uint128.Uint128{Lo: 0x20000000000005, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x133, Hi: 0x0}, {Lo: 0xb29, Hi: 0x0}, {Lo: 0x1981, Hi: 0x0}, {Lo: 0xaaab, Hi: 0x0}}},
	{bits: 54, prime: uint128.Uint128{Lo: 0x4000000000009f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x75df45, Hi: 0x0}, {Lo: 0x172a9581, Hi: 0x0}}},
	{bits: 55, prime: uint128.Uint128{Lo: 0x80000000000003, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x25, Hi: 0x0}, {Lo: 0x6d, Hi: 0x0}, {Lo: 0x3c1e1, Hi: 0x0}, {Lo: 0x44221, Hi: 0x0}}},
	{bits: 56, prime: uint128.Uint128{Lo: 0x100000000000051, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x3d, Hi: 0x0}, {Lo: 0x86c5, Hi: 0x0}, {Lo: 0xde2077, Hi: 0x0}}},
	{bits: 57, prime: uint128.Uint128{Lo: 0x200000000000009, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x25, Hi: 0x0}, {Lo: 0x6d, Hi: 0x0}, {Lo: 0x3c1e1, Hi: 0x0}, {Lo: 0x44221, Hi: 0x0}}},
	{bits: 58, prime: uint128.Uint128{Lo: 0x400000000000045, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x68bd, Hi: 0x0}, {Lo: 0x8425, Hi: 0x0}, {Lo: 0x470b1, Hi: 0x0}}},
	{bits: 59, prime: uint128.Uint128{Lo: 0x800000000000083, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x551, Hi: 0x0}, {Lo: 0x260bf330da1, Hi: 0x0}}},
	{bits: 60, prime: uint128.Uint128{Lo: 0x1000000000000021, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0x2ab, Hi: 0x0}, {Lo: 0xb9b, Hi: 0x0}, {Lo: 0x2ea586b, Hi: 0x0}}},
	{bits: 61, prime: uint128.Uint128{Lo: 0x200000000000000f, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x6bb, Hi: 0x0}, {Lo: 0x98f, Hi: 0x0}, {Lo: 0x3faafc840b, Hi: 0x0}}},
	{bits: 62, prime: uint128.Uint128{Lo: 0x4000000000000087, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x3b9, Hi: 0x0}, {Lo: 0x1e0b, Hi: 0x0}, {Lo: 0x3c6b, Hi: 0x0}, {Lo: 0x677431, Hi: 0x0}}},
	{bits: 63, prime: uint128.Uint128{Lo: 0x800000000000001d, Hi: 0x0}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x167, Hi: 0x0}, {Lo: 0x6ae65b, Hi: 0x0}, {Lo: 0x2062009, Hi: 0x0}}},
	{bits: 64, prime: uint128.Uint128{Lo: 0xd, Hi: 0x1}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x924924924924925, Hi: 0x0}}},
	{bits: 65, prime: uint128.Uint128{Lo: 0x83, Hi: 0x2}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xd99c1, Hi: 0x0}, {Lo: 0x16e1af, Hi: 0x0}, {Lo: 0x176617, Hi: 0x0}}},
	{bits: 66, prime: uint128.Uint128{Lo: 0x9, Hi: 0x4}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x2b, Hi: 0x0}, {Lo: 0x152b, Hi: 0x0}, {Lo: 0x11f703ee09, Hi: 0x0}}},
	{bits: 67, prime: uint128.Uint128{Lo: 0x3, Hi: 0x8}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x18d, Hi: 0x0}, {Lo: 0x841, Hi: 0x0}, {Lo: 0x4c585, Hi: 0x0}, {Lo: 0x420841, Hi: 0x0}}},
	{bits: 68, prime: uint128.Uint128{Lo: 0x21, Hi: 0x10}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x2b, Hi: 0x0}, {Lo: 0x152b, Hi: 0x0}, {Lo: 0x11f703ee09, Hi: 0x0}}},
	{bits: 69, prime: uint128.Uint128{Lo: 0x1d, Hi: 0x20}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x125, Hi: 0x0}, {Lo: 0x27c393d0645787, Hi: 0x0}}},
	{bits: 70, prime: uint128.Uint128{Lo: 0x19, Hi: 0x40}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x8}}},
	{bits: 71, prime: uint128.Uint128{Lo: 0xb, Hi: 0x80}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0xae5, Hi: 0x0}, {Lo: 0x12b3, Hi: 0x0}, {Lo: 0x3d46975f1af, Hi: 0x0}}},
	{bits: 72, prime: uint128.Uint128{Lo: 0xf, Hi: 0x100}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x12bf, Hi: 0x0}, {Lo: 0x39c9af3, Hi: 0x0}, {Lo: 0x2043d62d, Hi: 0x0}}},
	{bits: 73, prime: uint128.Uint128{Lo: 0x1d, Hi: 0x200}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x12bf, Hi: 0x0}, {Lo: 0x39c9af3, Hi: 0x0}, {Lo: 0x2043d62d, Hi: 0x0}}},
	{bits: 74, prime: uint128.Uint128{Lo: 0x25, Hi: 0x400}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x4561, Hi: 0x0}, {Lo: 0x17cc89, Hi: 0x0}, {Lo: 0x7f030b46d, Hi: 0x0}}},
	{bits: 75, prime: uint128.Uint128{Lo: 0x21, Hi: 0x800}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x1d, Hi: 0x0}, {Lo: 0x29, Hi: 0x0}, {Lo: 0x71, Hi: 0x0}, {Lo: 0x712a29, Hi: 0x0}, {Lo: 0x2d3267d, Hi: 0x0}}},
	{bits: 76, prime: uint128.Uint128{Lo: 0xf, Hi: 0x1000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x3cb, Hi: 0x0}, {Lo: 0x73304679691e07f, Hi: 0x0}}},
	{bits: 77, prime: uint128.Uint128{Lo: 0xb, Hi: 0x2000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x7e6a25, Hi: 0x0}, {Lo: 0x9e1fd9, Hi: 0x0}, {Lo: 0x27f79e5, Hi: 0x0}}},
	{bits: 78, prime: uint128.Uint128{Lo: 0x7, Hi: 0x4000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x185, Hi: 0x0}, {Lo: 0x1ece76508f058449, Hi: 0x0}}},
	{bits: 79, prime: uint128.Uint128{Lo: 0x17, Hi: 0x8000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x1a3, Hi: 0x0}, {Lo: 0xe5d, Hi: 0x0}, {Lo: 0x2e765b11b9df63, Hi: 0x0}}},
	{bits: 80, prime: uint128.Uint128{Lo: 0xd, Hi: 0x10000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x445, Hi: 0x0}, {Lo: 0x793f, Hi: 0x0}, {Lo: 0x1fa65e267ceb99, Hi: 0x0}}},
	{bits: 81, prime: uint128.Uint128{Lo: 0x11, Hi: 0x20000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x2b, Hi: 0x0}, {Lo: 0x269, Hi: 0x0}, {Lo: 0x2ab, Hi: 0x0}, {Lo: 0x13199, Hi: 0x0}, {Lo: 0x845e4d943, Hi: 0x0}}},
	{bits: 82, prime: uint128.Uint128{Lo: 0x9, Hi: 0x40000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xaaaaaaaaaaaaaaab, Hi: 0x2aaa}}},
	{bits: 83, prime: uint128.Uint128{Lo: 0x4b, Hi: 0x80000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x17, Hi: 0x0}, {Lo: 0x29, Hi: 0x0}, {Lo: 0x3260ed5, Hi: 0x0}, {Lo: 0x5849bdc9b43f, Hi: 0x0}}},
	{bits: 84, prime: uint128.Uint128{Lo: 0x3, Hi: 0x100000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x1f3, Hi: 0x0}, {Lo: 0x48b, Hi: 0x0}, {Lo: 0xa61, Hi: 0x0}, {Lo: 0x25ef1, Hi: 0x0}, {Lo: 0x322075ceb, Hi: 0x0}}},
	{bits: 85, prime: uint128.Uint128{Lo: 0xab, Hi: 0x200000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x25, Hi: 0x0}, {Lo: 0x2b, Hi: 0x0}, {Lo: 0x2f, Hi: 0x0}, {Lo: 0x36b9, Hi: 0x0}, {Lo: 0x4199a1d52ef405, Hi: 0x0}}},
	{bits: 86, prime: uint128.Uint128{Lo: 0x1b, Hi: 0x400000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x271a3, Hi: 0x0}, {Lo: 0xa9b10409, Hi: 0x0}, {Lo: 0x1512113b9, Hi: 0x0}}},
	{bits: 87, prime: uint128.Uint128{Lo: 0x27, Hi: 0x800000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x786a79f, Hi: 0x0}, {Lo: 0x880fce2e149630d, Hi: 0x0}}},
	{bits: 88, prime: uint128.Uint128{Lo: 0x7, Hi: 0x1000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x9d797fd6b1, Hi: 0x0}, {Lo: 0xd015977416f3, Hi: 0x0}}},
	{bits: 89, prime: uint128.Uint128{Lo: 0x1d, Hi: 0x2000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x191, Hi: 0x0}, {Lo: 0x32b80acfd, Hi: 0x0}, {Lo: 0x1727c2bbbf, Hi: 0x0}}},
	{bits: 90, prime: uint128.Uint128{Lo: 0x85, Hi: 0x4000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x11, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x1cdf11, Hi: 0x0}, {Lo: 0x24b7451745580b, Hi: 0x0}}},
	{bits: 91, prime: uint128.Uint128{Lo: 0x3b, Hi: 0x8000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x10f, Hi: 0x0}, {Lo: 0x839468fb7, Hi: 0x0}, {Lo: 0x273561258cd7, Hi: 0x0}}},
	{bits: 92, prime: uint128.Uint128{Lo: 0x19, Hi: 0x10000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x2c93, Hi: 0x0}, {Lo: 0x11a69a9d, Hi: 0x0}, {Lo: 0x4c285eeebf7, Hi: 0x0}}},
	{bits: 93, prime: uint128.Uint128{Lo: 0x69, Hi: 0x20000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x11, Hi: 0x0}, {Lo: 0xda3, Hi: 0x0}, {Lo: 0x8a8688c14dd958a9, Hi: 0xa1}}},
	{bits: 94, prime: uint128.Uint128{Lo: 0x81, Hi: 0x40000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x3b, Hi: 0x0}, {Lo: 0x2e4851, Hi: 0x0}, {Lo: 0x15555554aaaaaab, Hi: 0x0}}},
	{bits: 95, prime: uint128.Uint128{Lo: 0x9, Hi: 0x80000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x11, Hi: 0x0}, {Lo: 0xf0f0f0f0f0f0f0f1, Hi: 0xf0f0f0}}},
	{bits: 96, prime: uint128.Uint128{Lo: 0x3d, Hi: 0x100000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x1f, Hi: 0x0}, {Lo: 0x26b, Hi: 0x0}, {Lo: 0x1c8cb87aa1588473, Hi: 0xda94}}},
	{bits: 97, prime: uint128.Uint128{Lo: 0x69, Hi: 0x200000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x47, Hi: 0x0}, {Lo: 0x5551, Hi: 0x0}, {Lo: 0x13537, Hi: 0x0}, {Lo: 0x3f604d, Hi: 0x0}, {Lo: 0x90b984831, Hi: 0x0}}},
	{bits: 98, prime: uint128.Uint128{Lo: 0x7, Hi: 0x400000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x1bb, Hi: 0x0}, {Lo: 0x1e7, Hi: 0x0}, {Lo: 0x5ab, Hi: 0x0}, {Lo: 0x97558f, Hi: 0x0}, {Lo: 0x1db53bb656b, Hi: 0x0}}},
	{bits: 99, prime: uint128.Uint128{Lo: 0xff, Hi: 0x800000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x125c9, Hi: 0x0}, {Lo: 0x3d3f3, Hi: 0x0}, {Lo: 0x57e1b029, Hi: 0x0}, {Lo: 0x2a7077f55, Hi: 0x0}}},
	{bits: 100, prime: uint128.Uint128{Lo: 0x115, Hi: 0x1000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x31c91d5, Hi: 0x0}, {Lo: 0x17539c0e2a2c7cb1, Hi: 0x149}}},
	{bits: 101, prime: uint128.Uint128{Lo: 0x51, Hi: 0x2000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x13, Hi: 0x0}, {Lo: 0x29, Hi: 0x0}, {Lo: 0x641, Hi: 0x0}, {Lo: 0x244f1, Hi: 0x0}, {Lo: 0xe99e7, Hi: 0x0}, {Lo: 0x1db1e896af, Hi: 0x0}}},
	{bits: 102, prime: uint128.Uint128{Lo: 0x10b, Hi: 0x4000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x61f, Hi: 0x0}, {Lo: 0xe7afab, Hi: 0x0}, {Lo: 0x6295add19c2d2e5f, Hi: 0x0}}},
	{bits: 103, prime: uint128.Uint128{Lo: 0x51, Hi: 0x8000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x5c09, Hi: 0x0}, {Lo: 0x1e8f9cea7b288793, Hi: 0x27d6}}},
	{bits: 104, prime: uint128.Uint128{Lo: 0x6f, Hi: 0x10000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x36145d, Hi: 0x0}, {Lo: 0x5debcc71ef6189e1, Hi: 0xc9f9}}},
	{bits: 105, prime: uint128.Uint128{Lo: 0x27, Hi: 0x20000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x2dd, Hi: 0x0}, {Lo: 0xa75c45920e639b23, Hi: 0x11e1af64}}},
	{bits: 106, prime: uint128.Uint128{Lo: 0x63, Hi: 0x40000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x11, Hi: 0x0}, {Lo: 0xa0a0a0a0a0a0a0b, Hi: 0xa0a0a0a0a}}},
	{bits: 107, prime: uint128.Uint128{Lo: 0x27, Hi: 0x80000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x7, Hi: 0x0}, {Lo: 0x2f, Hi: 0x0}, {Lo: 0x1ba7, Hi: 0x0}, {Lo: 0x2fb7d5, Hi: 0x0}, {Lo: 0x1bdac33, Hi: 0x0}, {Lo: 0x58cbc06143, Hi: 0x0}}},
	{bits: 108, prime: uint128.Uint128{Lo: 0x21, Hi: 0x100000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x60a85e90f1, Hi: 0x0}, {Lo: 0x7100eb84c5bf755b, Hi: 0x0}}},
	{bits: 109, prime: uint128.Uint128{Lo: 0x93, Hi: 0x200000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x25, Hi: 0x0}, {Lo: 0x92f, Hi: 0x0}, {Lo: 0xbcb, Hi: 0x0}, {Lo: 0xd28509dd6f6d03d1, Hi: 0x105ac}}},
	{bits: 110, prime: uint128.Uint128{Lo: 0x1b, Hi: 0x400000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x6d3a06d3a06d3a07, Hi: 0x6d3a06d3a0}}},
	{bits: 111, prime: uint128.Uint128{Lo: 0x33, Hi: 0x800000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0xc31, Hi: 0x0}, {Lo: 0x3d6fccd0ffeb0069, Hi: 0x53fe5c083}}},
	{bits: 112, prime: uint128.Uint128{Lo: 0x19, Hi: 0x1000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0x4b1, Hi: 0x0}, {Lo: 0x1ba252d, Hi: 0x0}, {Lo: 0x347c199575402953, Hi: 0xca}}},
	{bits: 113, prime: uint128.Uint128{Lo: 0x119, Hi: 0x2000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0xd, Hi: 0x0}, {Lo: 0x17b, Hi: 0x0}, {Lo: 0x110f4b0ba7f28f5f, Hi: 0x11bc361b3}}},
	{bits: 114, prime: uint128.Uint128{Lo: 0x2b, Hi: 0x4000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x425, Hi: 0x0}, {Lo: 0x8a5, Hi: 0x0}, {Lo: 0xdcb5, Hi: 0x0}, {Lo: 0x58dc55d3, Hi: 0x0}, {Lo: 0x2fc0f3bc7ef3, Hi: 0x0}}},
	{bits: 115, prime: uint128.Uint128{Lo: 0x47, Hi: 0x8000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x407, Hi: 0x0}, {Lo: 0x1a71453, Hi: 0x0}, {Lo: 0x3248c84ec7ef64cf, Hi: 0x1118}}},
	{bits: 116, prime: uint128.Uint128{Lo: 0x21, Hi: 0x10000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x6f1, Hi: 0x0}, {Lo: 0xd03, Hi: 0x0}, {Lo: 0x4483, Hi: 0x0}, {Lo: 0x189635b, Hi: 0x0}, {Lo: 0x62056060c093, Hi: 0x0}}},
	{bits: 117, prime: uint128.Uint128{Lo: 0x1d, Hi: 0x20000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x3, Hi: 0x0}, {Lo: 0x5, Hi: 0x0}, {Lo: 0xad52b92d51dd, Hi: 0x0}, {Lo: 0x47b3a40839a4c31, Hi: 0x0}}},
	{bits: 118, prime: uint128.Uint128{Lo: 0x19, Hi: 0x40000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x699640237, Hi: 0x0}, {Lo: 0x6b560c3de9e7fa95, Hi: 0x13657}}},
	{bits: 119, prime: uint128.Uint128{Lo: 0x9, Hi: 0x80000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0x11, Hi: 0x0}, {Lo: 0xe801, Hi: 0x0}, {Lo: 0xa32fc88e84d688f1, Hi: 0x109dc950d}}},
	{bits: 120, prime: uint128.Uint128{Lo: 0x1c3, Hi: 0x100000000000000}, factors: []uint128.Uint128{{Lo: 0x2, Hi: 0x0}, {Lo: 0xb, Hi: 0x0}, {Lo: 0x29, Hi: 0x0}, {Lo: 0xe9, Hi: 0x0}, {Lo: 0x449, Hi: 0x0}, {Lo: 0x551, Hi: 0x0}, {Lo: 0x29b19, Hi: 0x0}, {Lo: 0x4ecbb, Hi: 0x0}, {Lo: 0x45e68d216459, Hi: 0x0}}},
}
