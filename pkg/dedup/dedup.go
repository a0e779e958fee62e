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

// Package dedup provides the duplicate checkers receivers consult before
// recording a response.
//
// Every checker answers NotMarkedAndValid(k), which is true iff Set(k) has
// never been called and, for bitmap checkers, k lies inside the scanned
// range. Checkers are owned by one receiver goroutine and are not safe for
// concurrent use.
package dedup

import (
	"errors"

	"lukechampine.com/uint128"
)

var (
	ErrEmptyBitmap    = errors.New("bitmap range is empty")
	ErrBitmapTooLarge = errors.New("bitmap range exceeds memory limit")
)

// MaxBitmapBits caps bitmap allocations at 2^MaxBitmapBits bits.
const MaxBitmapBits = 36

// Checker is the contract shared by all duplicate checkers.
type Checker[K comparable] interface {
	Set(k K)
	NotMarkedAndValid(k K) bool
}

// V4Port keys an (IPv4, port) pair.
type V4Port struct {
	IP   uint32
	Port uint16
}

// V6Port keys an (IPv6, port) pair.
type V6Port struct {
	IP   uint128.Uint128
	Port uint16
}
