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

// Package probe builds outbound probe packets and validates captured
// responses against the scan key.
package probe

//go:generate mockgen -destination=mock_probe.go -package=probe github.com/carverauto/cyclescan/pkg/probe Module

import (
	"net/netip"

	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/models"
)

// Probe identifies one outbound packet.
type Probe struct {
	Src     netip.Addr
	Dst     netip.Addr
	SrcPort uint16 // zero lets the module pick from its source-port range
	DstPort uint16
	// Code is embedded in the payload by code-carrying modules.
	Code uint32
	// HopLimit overrides the module default when non-zero.
	HopLimit uint8
}

// Frame is a captured packet split at the link and network layers.
type Frame struct {
	Link []byte // link-layer header
	Net  []byte // network header onward
	Data []byte // network payload
}

// Module builds probes of one family and validates their responses.
type Module interface {
	// Name returns the registry name.
	Name() string
	// Build appends the network-layer packet for p to buf.
	Build(buf []byte, p *Probe, key *aeskey.Key) ([]byte, error)
	// Validate authenticates a captured frame, reporting false for frames
	// that are not responses to this scan.
	Validate(f *Frame, key *aeskey.Key) (models.Hit, bool)
	// Filter is the pcap filter expression for responses.
	Filter() string
	// IPv6 reports the address family the module probes.
	IPv6() bool
	// MaxPacketLen is the largest frame Build produces, link header included.
	MaxPacketLen() int
	// SnapLen is the capture length needed by Validate.
	SnapLen() int
	// CodeLen is the number of code bytes carried in the payload.
	CodeLen() int
}

// Options configures a module.
type Options struct {
	SourcePorts SourcePorts
	// Flag is the scan flag written by region-tagged probes.
	Flag uint8
	// HopLimit is the default TTL or hop limit.
	HopLimit uint8
}

const (
	NameTCPSyn        = "tcp_syn"
	NameTCPSyn6       = "tcp_syn6"
	NameICMPEcho      = "icmp_echo"
	NameICMP6Echo     = "icmp6_echo"
	NameICMP6Aliased  = "icmp6_aliased"
	NameICMP6Region   = "icmp6_region"
	NameICMP6Space    = "icmp6_spacetree"
	NameICMP6Topology = "icmp6_topology"
)

const (
	linkHeaderLen = 14
	defaultTTL    = 255
)

// New returns the module registered under name.
func New(name string, opts Options) (Module, error) {
	if opts.HopLimit == 0 {
		opts.HopLimit = defaultTTL
	}

	switch name {
	case NameTCPSyn:
		return NewTCPSyn(false, opts)
	case NameTCPSyn6:
		return NewTCPSyn(true, opts)
	case NameICMPEcho:
		return NewICMPEcho(opts)
	case NameICMP6Echo:
		return NewICMP6Echo(CodeNone, opts)
	case NameICMP6Aliased:
		return NewICMP6Echo(CodeAliased, opts)
	case NameICMP6Region:
		return NewICMP6Echo(CodeRegion, opts)
	case NameICMP6Space:
		return NewICMP6Echo(CodeSpaceTree, opts)
	case NameICMP6Topology:
		return NewTopology(opts)
	}

	return nil, errUnknownModule(name)
}

// ForStrategy returns the default module name for a strategy and family.
func ForStrategy(s models.Strategy, ipv6 bool) string {
	switch s {
	case models.StrategyAddrPort, models.StrategyPMAP:
		if ipv6 {
			return NameTCPSyn6
		}

		return NameTCPSyn
	case models.StrategyAliased:
		return NameICMP6Aliased
	case models.StrategyRegion:
		return NameICMP6Region
	case models.StrategySpaceTree:
		return NameICMP6Space
	case models.StrategyTopology:
		return NameICMP6Topology
	case models.StrategyAddr:
	}

	if ipv6 {
		return NameICMP6Echo
	}

	return NameICMPEcho
}
