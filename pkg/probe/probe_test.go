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
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/cyclescan/internal/fastsum"
	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

var (
	local4  = netip.MustParseAddr("192.0.2.10")
	target4 = netip.MustParseAddr("198.51.100.7")
	local6  = netip.MustParseAddr("2001:db8::10")
	target6 = netip.MustParseAddr("2001:db8:1::7")
	router6 = netip.MustParseAddr("2001:db8:ffff::1")
)

func testKey(t *testing.T) *aeskey.Key {
	t.Helper()

	key, err := aeskey.New(42)
	require.NoError(t, err)

	return key
}

func splitFrame(pkt []byte) *Frame {
	hl := ipv6HeaderLen
	if pkt[0]>>4 == 4 {
		hl = int(pkt[0]&0x0f) * 4
	}

	return &Frame{Net: pkt, Data: pkt[hl:]}
}

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()

	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}, ls...))

	return buf.Bytes()
}

func synAck(t *testing.T, from, to netip.Addr, sport, dport uint16, ack uint32, rst bool) []byte {
	t.Helper()

	ip := &layers.IPv4{Version: 4, IHL: 5, TTL: 60, Protocol: layers.IPProtocolTCP, SrcIP: net.IP(from.AsSlice()), DstIP: net.IP(to.AsSlice())}
	tcp := &layers.TCP{SrcPort: layers.TCPPort(sport), DstPort: layers.TCPPort(dport), Ack: ack, ACK: true, SYN: !rst, RST: rst, Window: 1024}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

	return serialize(t, ip, tcp)
}

func TestTCPSynValidatesCookie(t *testing.T) {
	key := testKey(t)

	m, err := NewTCPSyn(false, Options{SourcePorts: SourcePorts{Base: 40000, Count: 1}, HopLimit: 64})
	require.NoError(t, err)

	cookie := Cookie(key, local4, target4, 40000, 443)

	hit, ok := m.Validate(splitFrame(synAck(t, target4, local4, 443, 40000, cookie, false)), key)
	require.True(t, ok)
	assert.Equal(t, target4, hit.Addr)
	assert.Equal(t, uint16(443), hit.Port)
	assert.True(t, hit.Open)

	_, ok = m.Validate(splitFrame(synAck(t, target4, local4, 443, 40000, cookie^0x100, false)), key)
	assert.False(t, ok, "flipped cookie bit must be rejected")

	hit, ok = m.Validate(splitFrame(synAck(t, target4, local4, 443, 40000, cookie, true)), key)
	require.True(t, ok)
	assert.False(t, hit.Open)

	_, ok = m.Validate(splitFrame(synAck(t, target4, local4, 443, 40001, cookie, false)), key)
	assert.False(t, ok, "destination port outside the source range")
}

func TestTCPSynBuildRoundTrip(t *testing.T) {
	key := testKey(t)

	m, err := NewTCPSyn(false, Options{SourcePorts: SourcePorts{Base: 32768, Count: 1024}, HopLimit: 64})
	require.NoError(t, err)

	pkt, err := m.Build(make([]byte, 0, 64), &Probe{Src: local4, Dst: target4, DstPort: 22}, key)
	require.NoError(t, err)
	require.Len(t, pkt, ipv4HeaderLen+tcpHeaderLen)

	assert.Zero(t, fastsum.Checksum(pkt[:ipv4HeaderLen]), "IPv4 header checksum")

	p := gopacket.NewPacket(pkt, layers.LayerTypeIPv4, gopacket.Default)
	ip, _ := p.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	tcp, _ := p.Layer(layers.LayerTypeTCP).(*layers.TCP)
	require.NotNil(t, ip)
	require.NotNil(t, tcp)

	assert.Equal(t, net.IP(target4.AsSlice()).String(), ip.DstIP.String())
	assert.Equal(t, uint8(64), ip.TTL)
	assert.True(t, tcp.SYN)
	assert.Equal(t, layers.TCPPort(22), tcp.DstPort)
	assert.True(t, m.ports.Contains(uint16(tcp.SrcPort)))

	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	sum := binary.BigEndian.Uint16(pkt[ipv4HeaderLen+16:])
	pkt[ipv4HeaderLen+16], pkt[ipv4HeaderLen+17] = 0, 0
	assert.Equal(t, sum, fastsum.TCPv4(local4.As4(), target4.As4(), pkt[ipv4HeaderLen:], nil))

	reply := synAck(t, target4, local4, 22, uint16(tcp.SrcPort), tcp.Seq+1, false)
	_, ok := m.Validate(splitFrame(reply), key)
	assert.True(t, ok)
}

func TestTCPSyn6(t *testing.T) {
	key := testKey(t)

	m, err := New(NameTCPSyn6, Options{SourcePorts: SourcePorts{Base: 50000, Count: 8}})
	require.NoError(t, err)
	assert.True(t, m.IPv6())

	pkt, err := m.Build(nil, &Probe{Src: local6, Dst: target6, DstPort: 80}, key)
	require.NoError(t, err)

	p := gopacket.NewPacket(pkt, layers.LayerTypeIPv6, gopacket.Default)
	tcp, _ := p.Layer(layers.LayerTypeTCP).(*layers.TCP)
	require.NotNil(t, tcp)

	ip := &layers.IPv6{Version: 6, NextHeader: layers.IPProtocolTCP, HopLimit: 60, SrcIP: net.IP(target6.AsSlice()), DstIP: net.IP(local6.AsSlice())}
	reply := &layers.TCP{SrcPort: 80, DstPort: tcp.SrcPort, Ack: tcp.Seq + 1, ACK: true, SYN: true}
	require.NoError(t, reply.SetNetworkLayerForChecksum(ip))

	hit, ok := m.Validate(splitFrame(serialize(t, ip, reply)), key)
	require.True(t, ok)
	assert.Equal(t, target6, hit.Addr)

	_, err = m.Build(nil, &Probe{Src: local4, Dst: target4, DstPort: 80}, key)
	assert.ErrorIs(t, err, ErrFamily)
}

func TestICMPEcho(t *testing.T) {
	key := testKey(t)

	m, err := New(NameICMPEcho, Options{})
	require.NoError(t, err)

	pkt, err := m.Build(nil, &Probe{Src: local4, Dst: target4}, key)
	require.NoError(t, err)
	assert.Zero(t, fastsum.Checksum(pkt[ipv4HeaderLen:]), "ICMP checksum")

	p := gopacket.NewPacket(pkt, layers.LayerTypeIPv4, gopacket.Default)
	req, _ := p.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	require.NotNil(t, req)

	ip := &layers.IPv4{Version: 4, IHL: 5, TTL: 60, Protocol: layers.IPProtocolICMPv4, SrcIP: net.IP(target4.AsSlice()), DstIP: net.IP(local4.AsSlice())}
	rep := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoReply, 0), Id: req.Id, Seq: req.Seq}

	hit, ok := m.Validate(splitFrame(serialize(t, ip, rep, gopacket.Payload(req.Payload))), key)
	require.True(t, ok)
	assert.Equal(t, target4, hit.Addr)

	rep.Seq++
	_, ok = m.Validate(splitFrame(serialize(t, ip, rep)), key)
	assert.False(t, ok)
}

// echoReply turns a built ICMPv6 echo request into the reply the target
// would send.
func echoReply(t *testing.T, req []byte) []byte {
	t.Helper()

	reply := append([]byte(nil), req...)
	copy(reply[8:24], req[24:40])
	copy(reply[24:40], req[8:24])
	reply[ipv6HeaderLen] = layers.ICMPv6TypeEchoReply

	return reply
}

func TestICMP6EchoCodes(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name     string
		flag     uint8
		code     uint32
		wantCode uint32
		codeLen  int
	}{
		{name: NameICMP6Aliased, code: 0xdeadbeef, wantCode: 0xdeadbeef, codeLen: 4},
		{name: NameICMP6Region, flag: 7, code: 0x12345678, wantCode: 0x345678, codeLen: 4},
		{name: NameICMP6Space, code: 0x1ffff, wantCode: 0xffff, codeLen: 2},
		{name: NameICMP6Echo, code: 99, wantCode: 0, codeLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.name, Options{Flag: tt.flag})
			require.NoError(t, err)
			assert.Equal(t, tt.codeLen, m.CodeLen())
			assert.Equal(t, tt.name, m.Name())

			req, err := m.Build(nil, &Probe{Src: local6, Dst: target6, Code: tt.code}, key)
			require.NoError(t, err)

			src, dst := local6.As16(), target6.As16()
			msg := append([]byte(nil), req[ipv6HeaderLen:]...)
			sum := binary.BigEndian.Uint16(msg[2:4])
			msg[2], msg[3] = 0, 0
			assert.Equal(t, sum, fastsum.PseudoV6(src, dst, 58, msg))

			hit, ok := m.Validate(splitFrame(echoReply(t, req)), key)
			require.True(t, ok)
			assert.Equal(t, target6, hit.Addr)
			assert.Equal(t, tt.wantCode, hit.Code)
			assert.Equal(t, tt.flag, hit.Flag)

			if tt.codeLen > 0 {
				forged := echoReply(t, req)
				forged[ipv6HeaderLen+icmpHeaderLen+tt.codeLen-1] ^= 1
				_, ok = m.Validate(splitFrame(forged), key)
				assert.False(t, ok, "altered code must be rejected")
			}
		})
	}
}

func TestTopologyQuotedRequest(t *testing.T) {
	key := testKey(t)

	m, err := New(NameICMP6Topology, Options{})
	require.NoError(t, err)

	req, err := m.Build(nil, &Probe{Src: local6, Dst: target6, Code: 1234, HopLimit: 5}, key)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), req[7])

	ip := &layers.IPv6{Version: 6, NextHeader: layers.IPProtocolICMPv6, HopLimit: 64, SrcIP: net.IP(router6.AsSlice()), DstIP: net.IP(local6.AsSlice())}
	icmp := &layers.ICMPv6{TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeTimeExceeded, 0)}
	require.NoError(t, icmp.SetNetworkLayerForChecksum(ip))

	quoted := append(make([]byte, 4), req...)
	frame := serialize(t, ip, icmp, gopacket.Payload(quoted))

	hit, ok := m.Validate(splitFrame(frame), key)
	require.True(t, ok)
	assert.Equal(t, router6, hit.Addr)
	assert.Equal(t, target6, hit.Target)
	assert.Equal(t, uint32(1234), hit.Code)
	assert.Equal(t, uint8(5), hit.HopLimit)
	assert.False(t, hit.Reached)

	hit, ok = m.Validate(splitFrame(echoReply(t, req)), key)
	require.True(t, ok)
	assert.True(t, hit.Reached)
	assert.Equal(t, target6, hit.Addr)

	other := append([]byte(nil), frame...)
	copy(other[ipv6HeaderLen+icmpHeaderLen+8:], netip.MustParseAddr("2001:db8::99").AsSlice())
	_, ok = m.Validate(splitFrame(other), key)
	assert.False(t, ok, "request not sent from this host")
}

func TestSourcePorts(t *testing.T) {
	sp := SourcePorts{Base: 1000, Count: 10}
	for v := uint32(0); v < 100; v++ {
		assert.True(t, sp.Contains(sp.Pick(v)))
	}

	assert.False(t, sp.Contains(999))
	assert.False(t, sp.Contains(1010))
	assert.True(t, SourcePorts{Base: 7}.Contains(7))
}

func TestUnknownModule(t *testing.T) {
	_, err := New("udp_dns", Options{})
	require.ErrorIs(t, err, ErrUnknownModule)
	assert.True(t, scanerr.IsFatal(err))
}
