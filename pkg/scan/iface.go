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

// Package scan owns the packet I/O of a scan: interface and gateway
// resolution, raw frame transmission and response capture.
package scan

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const ethernetHeaderLen = 14

// Route discovery destinations. Nothing is sent to them.
var (
	RouteDiscoveryV4 = netip.MustParseAddr("8.8.8.8")
	RouteDiscoveryV6 = netip.MustParseAddr("2001:4860:4860::8888")
)

// Interface is what a sender needs to put frames on one link.
type Interface struct {
	Name  string
	Index int
	MTU   int
	// Ethernet is false for links without a link-layer header (tun, wireguard).
	Ethernet   bool
	MAC        net.HardwareAddr
	Gateway    netip.Addr
	GatewayMAC net.HardwareAddr
	SourceIPs  []netip.Addr
}

// ResolveOptions overrides parts of the discovered interface.
type ResolveOptions struct {
	// Name selects the interface; empty follows the default route.
	Name       string
	IPv6       bool
	SourceIPs  []netip.Addr
	GatewayMAC net.HardwareAddr
}

// LinkHeader returns the link-layer header prepended to every frame, or nil
// for links without one.
func (i *Interface) LinkHeader(ipv6 bool) ([]byte, error) {
	if !i.Ethernet {
		return nil, nil
	}

	eth := &layers.Ethernet{
		SrcMAC:       i.MAC,
		DstMAC:       i.GatewayMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}

	if ipv6 {
		eth.EthernetType = layers.EthernetTypeIPv6
	}

	buf := gopacket.NewSerializeBuffer()
	if err := eth.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		return nil, fmt.Errorf("serialize link header: %w", err)
	}

	// SerializeTo pads to the Ethernet minimum.
	hdr := make([]byte, ethernetHeaderLen)
	copy(hdr, buf.Bytes())

	return hdr, nil
}

// LinkHeaderLen is the length of LinkHeader's result.
func (i *Interface) LinkHeaderLen() int {
	if !i.Ethernet {
		return 0
	}

	return ethernetHeaderLen
}
