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

// Package aeskey provides the scan-wide keyed pseudo-randomness: an AES-128
// block function for probe validation tokens and a counter-mode stream used
// to seed iterators and shuffle target-generation queues.
//
// The same seed always yields the same key, the same tokens and the same
// stream, so a scan trajectory can be replayed.
package aeskey

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// BlockSize is the AES block size in bytes.
const BlockSize = aes.BlockSize

// Stream domains keep independent consumers of the key from sharing
// key-stream blocks.
const (
	DomainCyclic uint64 = iota + 1
	DomainPrefixTree
	DomainSpaceTree
	DomainProbe
	DomainPMAP
)

// Key is immutable after construction and safe for concurrent use.
type Key struct {
	seed  uint64
	block cipher.Block
}

// New expands seed into an AES-128 key.
func New(seed uint64) (*Key, error) {
	var material [9]byte

	binary.LittleEndian.PutUint64(material[:8], seed)

	var raw [16]byte

	material[8] = 0
	binary.LittleEndian.PutUint64(raw[:8], xxhash.Sum64(material[:]))
	material[8] = 1
	binary.LittleEndian.PutUint64(raw[8:], xxhash.Sum64(material[:]))

	block, err := aes.NewCipher(raw[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &Key{seed: seed, block: block}, nil
}

// Seed returns the integer seed the key was derived from.
func (k *Key) Seed() uint64 {
	return k.seed
}

// Encrypt runs the raw block function on one 16-byte block.
func (k *Key) Encrypt(dst, src *[BlockSize]byte) {
	k.block.Encrypt(dst[:], src[:])
}

// MAC computes a CBC-MAC with a zero IV over data, zero padded to a whole
// number of blocks. Callers only MAC fixed-layout inputs, so padding is not
// ambiguous.
func (k *Key) MAC(data []byte) [BlockSize]byte {
	var state [BlockSize]byte

	for len(data) > 0 {
		n := BlockSize
		if len(data) < n {
			n = len(data)
		}

		for i := 0; i < n; i++ {
			state[i] ^= data[i]
		}

		k.block.Encrypt(state[:], state[:])
		data = data[n:]
	}

	return state
}

// Validation derives the validation token for a probe identified by its
// addresses and ports. Addresses are 4 or 16 bytes; they are laid out
// src || dst || sport || dport.
func (k *Key) Validation(src, dst []byte, sport, dport uint16) [BlockSize]byte {
	var buf [2*16 + 4]byte

	n := copy(buf[:], src)
	n += copy(buf[n:], dst)
	binary.BigEndian.PutUint16(buf[n:], sport)
	binary.BigEndian.PutUint16(buf[n+2:], dport)

	return k.MAC(buf[:n+4])
}

// Stream is an AES counter-mode generator. It implements rand.Source and is
// not safe for concurrent use; each consumer takes its own stream.
type Stream struct {
	block   cipher.Block
	domain  uint64
	counter uint64
	buf     [BlockSize]byte
	avail   int
}

var _ rand.Source = (*Stream)(nil)

// Stream returns a fresh key stream for the given domain.
func (k *Key) Stream(domain uint64) *Stream {
	return &Stream{block: k.block, domain: domain}
}

// Rand wraps a domain stream in a *rand.Rand.
func (k *Key) Rand(domain uint64) *rand.Rand {
	return rand.New(k.Stream(domain))
}

// Uint64 returns the next 64 bits of key stream.
func (s *Stream) Uint64() uint64 {
	if s.avail == 0 {
		var in [BlockSize]byte

		binary.BigEndian.PutUint64(in[:8], s.domain)
		binary.BigEndian.PutUint64(in[8:], s.counter)
		s.counter++
		s.block.Encrypt(s.buf[:], in[:])
		s.avail = 2
	}

	off := (2 - s.avail) * 8
	s.avail--

	return binary.BigEndian.Uint64(s.buf[off : off+8])
}
