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

// CodeLayout selects how a code is carried in an ICMPv6 echo payload.
type CodeLayout int

const (
	// CodeNone carries no code.
	CodeNone CodeLayout = iota
	// CodeAliased carries a 4-byte big-endian code.
	CodeAliased
	// CodeRegion carries a 1-byte scan flag and a 3-byte region code.
	CodeRegion
	// CodeSpaceTree carries a 2-byte region code.
	CodeSpaceTree
)

// Len returns the payload bytes used by the layout.
func (l CodeLayout) Len() int {
	switch l {
	case CodeAliased, CodeRegion:
		return 4
	case CodeSpaceTree:
		return 2
	case CodeNone:
	}

	return 0
}

func (l CodeLayout) name() string {
	switch l {
	case CodeAliased:
		return NameICMP6Aliased
	case CodeRegion:
		return NameICMP6Region
	case CodeSpaceTree:
		return NameICMP6Space
	case CodeNone:
	}

	return NameICMP6Echo
}

// word packs flag and code into the value the token is bound to.
func (l CodeLayout) word(flag uint8, code uint32) uint32 {
	switch l {
	case CodeRegion:
		return uint32(flag)<<24 | code&0xffffff
	case CodeSpaceTree:
		return code & 0xffff
	case CodeAliased:
		return code
	case CodeNone:
	}

	return 0
}

func (l CodeLayout) put(b []byte, w uint32) {
	switch l {
	case CodeAliased, CodeRegion:
		binary.BigEndian.PutUint32(b, w)
	case CodeSpaceTree:
		binary.BigEndian.PutUint16(b, uint16(w))
	case CodeNone:
	}
}

func (l CodeLayout) parse(b []byte) (flag uint8, code, w uint32) {
	switch l {
	case CodeAliased:
		w = binary.BigEndian.Uint32(b)
		return 0, w, w
	case CodeRegion:
		w = binary.BigEndian.Uint32(b)
		return uint8(w >> 24), w & 0xffffff, w
	case CodeSpaceTree:
		w = uint32(binary.BigEndian.Uint16(b))
		return 0, w, w
	case CodeNone:
	}

	return 0, 0, 0
}

func icmp6Token(key *aeskey.Key, local, target []byte, w uint32) [aeskey.BlockSize]byte {
	return key.Validation(local, target, uint16(w>>16), uint16(w))
}

// ICMP6Echo sends ICMPv6 echo requests that carry an optional code in the
// payload. The token in identifier and sequence number is bound to the
// code, so a reply's code is authenticated along with its endpoints.
type ICMP6Echo struct {
	layout   CodeLayout
	flag     uint8
	template []byte
}

// NewICMP6Echo builds an echo module with the given code layout.
func NewICMP6Echo(layout CodeLayout, opts Options) (*ICMP6Echo, error) {
	tmpl, err := icmp6Template(opts.HopLimit, layers.ICMPv6TypeEchoRequest, layout.Len())
	if err != nil {
		return nil, err
	}

	return &ICMP6Echo{layout: layout, flag: opts.Flag, template: tmpl}, nil
}

func icmp6Template(hopLimit uint8, typ uint8, payloadLen int) ([]byte, error) {
	ip := &layers.IPv6{
		Version:    6,
		NextHeader: layers.IPProtocolICMPv6,
		HopLimit:   hopLimit,
		SrcIP:      net.IPv6zero,
		DstIP:      net.IPv6zero,
	}
	icmp := &layers.ICMPv6{TypeCode: layers.CreateICMPv6TypeCode(typ, 0)}
	_ = icmp.SetNetworkLayerForChecksum(ip)
	echo := &layers.ICMPv6Echo{}

	return serializeTemplate(ip, icmp, echo, gopacket.Payload(make([]byte, payloadLen)))
}

// Name returns the registry name.
func (e *ICMP6Echo) Name() string { return e.layout.name() }

// IPv6 is true.
func (*ICMP6Echo) IPv6() bool { return true }

// Filter matches echo replies.
func (*ICMP6Echo) Filter() string { return "icmp6 and ip6[40] == 129" }

// MaxPacketLen includes the Ethernet header.
func (e *ICMP6Echo) MaxPacketLen() int { return linkHeaderLen + len(e.template) }

// SnapLen covers the reply headers and code.
func (e *ICMP6Echo) SnapLen() int { return linkHeaderLen + ipv6HeaderLen + icmpHeaderLen + 8 }

// CodeLen returns the payload bytes used for the code.
func (e *ICMP6Echo) CodeLen() int { return e.layout.Len() }

// Build appends an ICMPv6 echo request carrying p.Code.
func (e *ICMP6Echo) Build(buf []byte, p *Probe, key *aeskey.Key) ([]byte, error) {
	if !p.Src.Is6() || !p.Dst.Is6() || p.Src.Is4In6() || p.Dst.Is4In6() {
		return buf, ErrFamily
	}

	src, dst := p.Src.As16(), p.Dst.As16()
	w := e.layout.word(e.flag, p.Code)
	tok := icmp6Token(key, src[:], dst[:], w)

	off := len(buf)
	buf = append(buf, e.template...)
	pkt := buf[off:]
	msg := pkt[ipv6HeaderLen:]

	copy(pkt[8:24], src[:])
	copy(pkt[24:40], dst[:])

	if p.HopLimit != 0 {
		pkt[7] = p.HopLimit
	}

	copy(msg[4:8], tok[:4])
	e.layout.put(msg[icmpHeaderLen:], w)

	msg[2], msg[3] = 0, 0
	binary.BigEndian.PutUint16(msg[2:4], fastsum.PseudoV6(src, dst, uint8(layers.IPProtocolICMPv6), msg))

	return buf, nil
}

// Validate accepts echo replies whose token matches endpoints and code.
func (e *ICMP6Echo) Validate(f *Frame, key *aeskey.Key) (models.Hit, bool) {
	if len(f.Net) < ipv6HeaderLen || f.Net[6] != uint8(layers.IPProtocolICMPv6) {
		return models.Hit{}, false
	}

	msg := f.Data
	if len(msg) < icmpHeaderLen+e.layout.Len() || msg[0] != layers.ICMPv6TypeEchoReply {
		return models.Hit{}, false
	}

	responder, local := f.Net[8:24], f.Net[24:40]
	flag, code, w := e.layout.parse(msg[icmpHeaderLen:])

	tok := icmp6Token(key, local, responder, w)
	if binary.BigEndian.Uint32(msg[4:8]) != binary.BigEndian.Uint32(tok[:4]) {
		return models.Hit{}, false
	}

	a := netip.AddrFrom16([16]byte(responder))

	return models.Hit{Addr: a, Code: code, Flag: flag, Target: a, Reached: true}, true
}
