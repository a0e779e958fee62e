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
	"bytes"
	"encoding/binary"
	"net/netip"

	"github.com/google/gopacket/layers"

	"github.com/carverauto/cyclescan/internal/fastsum"
	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/models"
)

// topology payload: 4-byte code, 1-byte hop limit, 3 bytes padding.
const topologyPayloadLen = 8

// Topology sends hop-limited ICMPv6 echo requests and accepts both the
// target's echo reply and errors from routers on the path, which quote the
// original request.
type Topology struct {
	hopLimit uint8
	template []byte
}

// NewTopology builds the topology module.
func NewTopology(opts Options) (*Topology, error) {
	tmpl, err := icmp6Template(opts.HopLimit, layers.ICMPv6TypeEchoRequest, topologyPayloadLen)
	if err != nil {
		return nil, err
	}

	return &Topology{hopLimit: opts.HopLimit, template: tmpl}, nil
}

// Name returns the registry name.
func (*Topology) Name() string { return NameICMP6Topology }

// IPv6 is true.
func (*Topology) IPv6() bool { return true }

// Filter matches echo replies, time exceeded and destination unreachable.
func (*Topology) Filter() string {
	return "icmp6 and (ip6[40] == 129 or ip6[40] == 3 or ip6[40] == 1)"
}

// MaxPacketLen includes the Ethernet header.
func (t *Topology) MaxPacketLen() int { return linkHeaderLen + len(t.template) }

// SnapLen covers an error message quoting the full request.
func (t *Topology) SnapLen() int {
	return linkHeaderLen + ipv6HeaderLen + icmpHeaderLen + ipv6HeaderLen + icmpHeaderLen + topologyPayloadLen
}

// CodeLen is four.
func (*Topology) CodeLen() int { return 4 }

// Build appends an echo request carrying p.Code and the hop limit.
func (t *Topology) Build(buf []byte, p *Probe, key *aeskey.Key) ([]byte, error) {
	if !p.Src.Is6() || !p.Dst.Is6() || p.Src.Is4In6() || p.Dst.Is4In6() {
		return buf, ErrFamily
	}

	hop := t.hopLimit
	if p.HopLimit != 0 {
		hop = p.HopLimit
	}

	src, dst := p.Src.As16(), p.Dst.As16()
	tok := icmp6Token(key, src[:], dst[:], p.Code)

	off := len(buf)
	buf = append(buf, t.template...)
	pkt := buf[off:]
	msg := pkt[ipv6HeaderLen:]

	copy(pkt[8:24], src[:])
	copy(pkt[24:40], dst[:])
	pkt[7] = hop

	copy(msg[4:8], tok[:4])
	binary.BigEndian.PutUint32(msg[8:12], p.Code)
	msg[12] = hop

	msg[2], msg[3] = 0, 0
	binary.BigEndian.PutUint16(msg[2:4], fastsum.PseudoV6(src, dst, uint8(layers.IPProtocolICMPv6), msg))

	return buf, nil
}

// Validate accepts echo replies from the target and ICMPv6 errors from any
// responder quoting one of this scan's requests.
func (t *Topology) Validate(f *Frame, key *aeskey.Key) (models.Hit, bool) {
	if len(f.Net) < ipv6HeaderLen || f.Net[6] != uint8(layers.IPProtocolICMPv6) {
		return models.Hit{}, false
	}

	msg := f.Data
	if len(msg) < icmpHeaderLen {
		return models.Hit{}, false
	}

	responder, local := f.Net[8:24], f.Net[24:40]

	switch msg[0] {
	case layers.ICMPv6TypeEchoReply:
		return t.check(key, local, responder, responder, msg, true)
	case layers.ICMPv6TypeTimeExceeded, layers.ICMPv6TypeDestinationUnreachable:
		inner := msg[icmpHeaderLen:]
		if len(inner) < ipv6HeaderLen+icmpHeaderLen+5 || inner[6] != uint8(layers.IPProtocolICMPv6) {
			return models.Hit{}, false
		}

		if !bytes.Equal(inner[8:24], local) {
			return models.Hit{}, false
		}

		req := inner[ipv6HeaderLen:]
		if req[0] != layers.ICMPv6TypeEchoRequest {
			return models.Hit{}, false
		}

		target := inner[24:40]
		reached := msg[0] == layers.ICMPv6TypeDestinationUnreachable && bytes.Equal(responder, target)

		return t.check(key, local, target, responder, req, reached)
	}

	return models.Hit{}, false
}

func (t *Topology) check(key *aeskey.Key, local, target, responder, echo []byte, reached bool) (models.Hit, bool) {
	if len(echo) < icmpHeaderLen+5 {
		return models.Hit{}, false
	}

	code := binary.BigEndian.Uint32(echo[8:12])

	tok := icmp6Token(key, local, target, code)
	if binary.BigEndian.Uint32(echo[4:8]) != binary.BigEndian.Uint32(tok[:4]) {
		return models.Hit{}, false
	}

	return models.Hit{
		Addr:     netip.AddrFrom16([16]byte(responder)),
		Code:     code,
		Target:   netip.AddrFrom16([16]byte(target)),
		HopLimit: echo[12],
		Reached:  reached,
	}, true
}
