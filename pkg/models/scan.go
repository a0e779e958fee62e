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

// Package models provides data models shared by the scanner components.
package models

import "net/netip"

// Strategy names a scanning mode.
type Strategy string

const (
	StrategyAddr      Strategy = "addr"
	StrategyAddrPort  Strategy = "addr-port"
	StrategyAliased   Strategy = "aliased"
	StrategyRegion    Strategy = "region"
	StrategySpaceTree Strategy = "space-tree"
	StrategyTopology  Strategy = "topology"
	StrategyPMAP      Strategy = "pmap"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{
	StrategyAddr, StrategyAddrPort, StrategyAliased, StrategyRegion,
	StrategySpaceTree, StrategyTopology, StrategyPMAP,
}

// ContainsStrategy checks if a strategy is in a list of strategies.
func ContainsStrategy(strategies []Strategy, s Strategy) bool {
	for _, m := range strategies {
		if m == s {
			return true
		}
	}

	return false
}

// Rounds reports whether the strategy runs in feedback rounds.
func (s Strategy) Rounds() bool {
	return s == StrategySpaceTree || s == StrategyTopology || s == StrategyPMAP
}

// IPv6Only reports whether the strategy only exists for IPv6.
func (s Strategy) IPv6Only() bool {
	switch s {
	case StrategyAliased, StrategyRegion, StrategySpaceTree, StrategyTopology:
		return true
	case StrategyAddr, StrategyAddrPort, StrategyPMAP:
	}

	return false
}

// UsesPorts reports whether targets are (address, port) pairs.
func (s Strategy) UsesPorts() bool {
	return s == StrategyAddrPort || s == StrategyPMAP
}

// Hit is a validated response. Which fields are meaningful depends on the
// probe module that produced it.
type Hit struct {
	// Addr is the responder.
	Addr netip.Addr
	// Port is the responder's source port for TCP probes.
	Port uint16
	// Open is true for SYN/ACK and false for RST.
	Open bool
	// Code is the value embedded in the probe payload.
	Code uint32
	// Flag is the scan flag carried by region-tagged probes.
	Flag uint8
	// Target is the destination of the original probe; for direct replies it
	// equals Addr.
	Target netip.Addr
	// HopLimit is the hop limit the probe was sent with.
	HopLimit uint8
	// Reached is set when the target itself answered.
	Reached bool
}
