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
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/carverauto/cyclescan/internal/fastsum"
	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/models"
)

const icmpHeaderLen = 8

// ICMPEcho sends IPv4 echo requests whose identifier and sequence number
// are a validation token.
type ICMPEcho struct {
	template []byte
}

// NewICMPEcho builds the IPv4 echo module.
func NewICMPEcho(opts Options) (*ICMPEcho, error) {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      opts.HopLimit,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    net.IPv4zero.To4(),
		DstIP:    net.IPv4zero.To4(),
	}
	icmp := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0)}

	tmpl, err := serializeTemplate(ip, icmp, gopacket.Payload(make([]byte, 8)))
	if err != nil {
		return nil, err
	}

	return &ICMPEcho{template: tmpl}, nil
}

// Name returns the registry name.
func (*ICMPEcho) Name() string { return NameICMPEcho }

// IPv6 is false.
func (*ICMPEcho) IPv6() bool { return false }

// Filter matches echo replies.
func (*ICMPEcho) Filter() string { return "icmp and icmp[0] == 0" }

// MaxPacketLen includes the Ethernet header.
func (e *ICMPEcho) MaxPacketLen() int { return linkHeaderLen + len(e.template) }

// SnapLen covers the reply headers.
func (e *ICMPEcho) SnapLen() int { return linkHeaderLen + 60 + icmpHeaderLen + 8 }

// CodeLen is zero.
func (*ICMPEcho) CodeLen() int { return 0 }

// Build appends an IPv4 echo request.
func (e *ICMPEcho) Build(buf []byte, p *Probe, key *aeskey.Key) ([]byte, error) {
	if !p.Src.Is4() || !p.Dst.Is4() {
		return buf, ErrFamily
	}

	src, dst := p.Src.As4(), p.Dst.As4()
	tok := key.Validation(src[:], dst[:], 0, 0)

	off := len(buf)
	buf = append(buf, e.template...)
	pkt := buf[off:]
	msg := pkt[ipv4HeaderLen:]

	copy(pkt[12:16], src[:])
	copy(pkt[16:20], dst[:])
	copy(pkt[4:6], tok[8:10])

	if p.HopLimit != 0 {
		pkt[8] = p.HopLimit
	}

	pkt[10], pkt[11] = 0, 0
	binary.BigEndian.PutUint16(pkt[10:12], fastsum.IPv4Header(pkt[:ipv4HeaderLen]))

	copy(msg[4:8], tok[:4])
	copy(msg[8:16], tok[4:12])
	msg[2], msg[3] = 0, 0
	binary.BigEndian.PutUint16(msg[2:4], fastsum.Checksum(msg))

	return buf, nil
}

// Validate accepts echo replies carrying the token for their endpoints.
func (e *ICMPEcho) Validate(f *Frame, key *aeskey.Key) (models.Hit, bool) {
	if len(f.Net) < ipv4HeaderLen || f.Net[9] != uint8(layers.IPProtocolICMPv4) {
		return models.Hit{}, false
	}

	msg := f.Data
	if len(msg) < icmpHeaderLen || msg[0] != layers.ICMPv4TypeEchoReply {
		return models.Hit{}, false
	}

	responder, local := f.Net[12:16], f.Net[16:20]
	tok := key.Validation(local, responder, 0, 0)

	if binary.BigEndian.Uint32(msg[4:8]) != binary.BigEndian.Uint32(tok[:4]) {
		return models.Hit{}, false
	}

	a := netip.AddrFrom4([4]byte(responder))

	return models.Hit{Addr: a, Target: a, Reached: true}, true
}
