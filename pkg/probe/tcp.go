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

package probe

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/carverauto/cyclescan/internal/fastsum"
	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/models"
)

const (
	ipv4HeaderLen = 20
	ipv6HeaderLen = 40
	tcpHeaderLen  = 24 // 20 + MSS option

	tcpFlagSYN = 0x02
	tcpFlagRST = 0x04
	tcpFlagACK = 0x10
)

// TCPSyn sends SYN segments whose sequence number carries a validation
// cookie. A SYN/ACK or RST acknowledging cookie is accepted.
type TCPSyn struct {
	v6       bool
	ports    SourcePorts
	template []byte
	ipLen    int
}

// NewTCPSyn builds the IPv4 or IPv6 SYN module.
func NewTCPSyn(v6 bool, opts Options) (*TCPSyn, error) {
	t := &TCPSyn{v6: v6, ports: opts.SourcePorts, ipLen: ipv4HeaderLen}
	if v6 {
		t.ipLen = ipv6HeaderLen
	}

	tcp := &layers.TCP{
		SYN:    true,
		Window: 65535,
		Options: []layers.TCPOption{
			{OptionType: layers.TCPOptionKindMSS, OptionLength: 4, OptionData: []byte{0x05, 0xb4}},
		},
	}

	var network gopacket.SerializableLayer

	if v6 {
		ip := &layers.IPv6{
			Version:    6,
			NextHeader: layers.IPProtocolTCP,
			HopLimit:   opts.HopLimit,
			SrcIP:      net.IPv6zero,
			DstIP:      net.IPv6zero,
		}
		_ = tcp.SetNetworkLayerForChecksum(ip)
		network = ip
	} else {
		ip := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      opts.HopLimit,
			Flags:    layers.IPv4DontFragment,
			Protocol: layers.IPProtocolTCP,
			SrcIP:    net.IPv4zero.To4(),
			DstIP:    net.IPv4zero.To4(),
		}
		_ = tcp.SetNetworkLayerForChecksum(ip)
		network = ip
	}

	tmpl, err := serializeTemplate(network, tcp)
	if err != nil {
		return nil, err
	}

	t.template = tmpl

	return t, nil
}

func serializeTemplate(ls ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}

	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

// Name returns the registry name.
func (t *TCPSyn) Name() string {
	if t.v6 {
		return NameTCPSyn6
	}

	return NameTCPSyn
}

// IPv6 reports the address family.
func (t *TCPSyn) IPv6() bool { return t.v6 }

// Filter matches SYN/ACK and RST segments.
func (t *TCPSyn) Filter() string {
	if t.v6 {
		return "ip6 and ip6[6] == 6 and (ip6[53] & 4 != 0 or ip6[53] == 18)"
	}

	return "tcp and (tcp[13] & 4 != 0 or tcp[13] == 18)"
}

// MaxPacketLen includes the Ethernet header.
func (t *TCPSyn) MaxPacketLen() int { return linkHeaderLen + t.ipLen + tcpHeaderLen }

// SnapLen covers link, network and TCP headers with options.
func (t *TCPSyn) SnapLen() int { return linkHeaderLen + t.ipLen + 60 }

// CodeLen is zero: SYN probes carry no code.
func (t *TCPSyn) CodeLen() int { return 0 }

// Cookie returns the 32-bit cookie for a probe identified by its endpoints.
func Cookie(key *aeskey.Key, src, dst netip.Addr, sport, dport uint16) uint32 {
	tok := key.Validation(src.AsSlice(), dst.AsSlice(), sport, dport)
	return binary.BigEndian.Uint32(tok[:4])
}

func (t *TCPSyn) sourcePort(p *Probe, key *aeskey.Key) uint16 {
	if p.SrcPort != 0 {
		return p.SrcPort
	}

	if t.ports.size() == 1 {
		return t.ports.Base
	}

	sel := key.Validation(p.Src.AsSlice(), p.Dst.AsSlice(), 0, p.DstPort)

	return t.ports.Pick(binary.BigEndian.Uint32(sel[4:8]))
}

// Build appends an IP + TCP SYN packet.
func (t *TCPSyn) Build(buf []byte, p *Probe, key *aeskey.Key) ([]byte, error) {
	if p.Src.Is6() != t.v6 || p.Dst.Is6() != t.v6 {
		return buf, ErrFamily
	}

	sport := t.sourcePort(p, key)
	cookie := Cookie(key, p.Src, p.Dst, sport, p.DstPort)

	off := len(buf)
	buf = append(buf, t.template...)
	pkt := buf[off:]
	seg := pkt[t.ipLen:]

	binary.BigEndian.PutUint16(seg[0:2], sport)
	binary.BigEndian.PutUint16(seg[2:4], p.DstPort)
	binary.BigEndian.PutUint32(seg[4:8], cookie-1)
	seg[16], seg[17] = 0, 0

	if t.v6 {
		src, dst := p.Src.As16(), p.Dst.As16()
		copy(pkt[8:24], src[:])
		copy(pkt[24:40], dst[:])

		if p.HopLimit != 0 {
			pkt[7] = p.HopLimit
		}

		binary.BigEndian.PutUint16(seg[16:18], fastsum.PseudoV6(src, dst, uint8(layers.IPProtocolTCP), seg))

		return buf, nil
	}

	src, dst := p.Src.As4(), p.Dst.As4()
	copy(pkt[12:16], src[:])
	copy(pkt[16:20], dst[:])
	binary.BigEndian.PutUint16(pkt[4:6], uint16(cookie>>16))

	if p.HopLimit != 0 {
		pkt[8] = p.HopLimit
	}

	pkt[10], pkt[11] = 0, 0
	binary.BigEndian.PutUint16(pkt[10:12], fastsum.IPv4Header(pkt[:ipv4HeaderLen]))
	binary.BigEndian.PutUint16(seg[16:18], fastsum.TCPv4(src, dst, seg, nil))

	return buf, nil
}

// Validate accepts SYN/ACK (open) and RST (closed) replies whose
// acknowledgement number equals the cookie.
func (t *TCPSyn) Validate(f *Frame, key *aeskey.Key) (models.Hit, bool) {
	var responder, local []byte

	if t.v6 {
		if len(f.Net) < ipv6HeaderLen || f.Net[6] != uint8(layers.IPProtocolTCP) {
			return models.Hit{}, false
		}

		responder, local = f.Net[8:24], f.Net[24:40]
	} else {
		if len(f.Net) < ipv4HeaderLen || f.Net[9] != uint8(layers.IPProtocolTCP) {
			return models.Hit{}, false
		}

		responder, local = f.Net[12:16], f.Net[16:20]
	}

	seg := f.Data
	if len(seg) < 20 {
		return models.Hit{}, false
	}

	sport := binary.BigEndian.Uint16(seg[0:2])
	dport := binary.BigEndian.Uint16(seg[2:4])
	flags := seg[13]

	synAck := flags&(tcpFlagSYN|tcpFlagACK) == tcpFlagSYN|tcpFlagACK
	rst := flags&tcpFlagRST != 0

	if !synAck && !rst {
		return models.Hit{}, false
	}

	if !t.ports.Contains(dport) {
		return models.Hit{}, false
	}

	tok := key.Validation(local, responder, dport, sport)
	if binary.BigEndian.Uint32(seg[8:12]) != binary.BigEndian.Uint32(tok[:4]) {
		return models.Hit{}, false
	}

	a, _ := netip.AddrFromSlice(responder)

	return models.Hit{Addr: a, Port: sport, Open: synAck && !rst, Target: a, Reached: true}, true
}
