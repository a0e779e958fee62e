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

package receiver

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"testing"

	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/dedup"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/output"
	"github.com/carverauto/cyclescan/pkg/probe"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"lukechampine.com/uint128"
)

var (
	local4  = netip.MustParseAddr("192.0.2.10")
	target4 = netip.MustParseAddr("198.51.100.7")
	macA    = net.HardwareAddr{0x02, 0, 0, 0, 0, 1}
	macB    = net.HardwareAddr{0x02, 0, 0, 0, 0, 2}
)

func testKey(t *testing.T) *aeskey.Key {
	t.Helper()

	key, err := aeskey.New(7)
	require.NoError(t, err)

	return key
}

func ethSynAck(t *testing.T, from, to netip.Addr, sport, dport uint16, ack uint32, pad int) []byte {
	t.Helper()

	eth := &layers.Ethernet{SrcMAC: macA, DstMAC: macB, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, IHL: 5, TTL: 58, Protocol: layers.IPProtocolTCP, SrcIP: net.IP(from.AsSlice()), DstIP: net.IP(to.AsSlice())}
	tcp := &layers.TCP{SrcPort: layers.TCPPort(sport), DstPort: layers.TCPPort(dport), Ack: ack, ACK: true, SYN: true, Window: 512}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}, eth, ip, tcp))

	return append(buf.Bytes(), make([]byte, pad)...)
}

func TestLinkHeaderLen(t *testing.T) {
	tests := []struct {
		lt   layers.LinkType
		want int
	}{
		{layers.LinkTypeEthernet, 14},
		{layers.LinkTypeLinuxSLL, 16},
		{layers.LinkTypeRaw, 0},
		{layers.LinkTypeNull, 4},
	}

	for _, tt := range tests {
		n, err := LinkHeaderLen(tt.lt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n, tt.lt.String())
	}

	_, err := LinkHeaderLen(layers.LinkTypeIEEE802_11)
	assert.ErrorIs(t, err, ErrUnsupportedLinkType)
}

func TestPipelineAcceptsCookieAndDropsForgery(t *testing.T) {
	ctrl := gomock.NewController(t)
	key := testKey(t)

	mod, err := probe.NewTCPSyn(false, probe.Options{SourcePorts: probe.SourcePorts{Base: 40000, Count: 1}})
	require.NoError(t, err)

	sink := output.NewMockSink(ctrl)
	sink.EXPECT().WriteRecord([]string{"198.51.100.7", "443"}).Return(nil).Times(1)

	counters := &models.Counters{}
	rec := NewCounted(NewAddrPortRecorder(dedup.NewHashSet[dedup.V4Port](16), V4PortKey, nil, sink), counters)

	p, err := NewPipeline(mod, key, layers.LinkTypeEthernet, rec, counters)
	require.NoError(t, err)

	cookie := probe.Cookie(key, local4, target4, 40000, 443)

	require.NoError(t, p.Handle(ethSynAck(t, target4, local4, 443, 40000, cookie, 0)))
	assert.Equal(t, uint64(1), counters.Hits.Load())
	assert.Equal(t, uint64(0), counters.ProbeDrops.Load())

	require.NoError(t, p.Handle(ethSynAck(t, target4, local4, 443, 40000, cookie^1, 0)))
	assert.Equal(t, uint64(1), counters.ProbeDrops.Load())
	assert.Equal(t, uint64(1), counters.Hits.Load())

	require.NoError(t, p.Handle(ethSynAck(t, target4, local4, 443, 40000, cookie, 6)))
	assert.Equal(t, uint64(1), counters.Duplicates.Load())
	assert.Equal(t, uint64(3), counters.Received.Load())
}

func TestPipelineSlicesFrame(t *testing.T) {
	ctrl := gomock.NewController(t)
	mod := probe.NewMockModule(ctrl)
	rec := &collect{}

	frame := ethSynAck(t, target4, local4, 443, 40000, 1, 6)

	mod.EXPECT().Validate(gomock.Any(), gomock.Any()).DoAndReturn(func(f *probe.Frame, _ *aeskey.Key) (models.Hit, bool) {
		assert.Len(t, f.Link, 14)
		assert.Len(t, f.Net, 40, "ethernet padding trimmed by total length")
		assert.Len(t, f.Data, 20)

		return models.Hit{Addr: target4}, true
	})

	p, err := NewPipeline(mod, nil, layers.LinkTypeEthernet, rec, nil)
	require.NoError(t, err)
	require.NoError(t, p.Handle(frame))
	assert.Len(t, rec.hits, 1)
}

func TestPipelineVLANAndShortFrames(t *testing.T) {
	ctrl := gomock.NewController(t)
	mod := probe.NewMockModule(ctrl)
	counters := &models.Counters{}

	plain := ethSynAck(t, target4, local4, 443, 40000, 1, 0)
	tagged := make([]byte, 0, len(plain)+4)
	tagged = append(tagged, plain[:12]...)
	tagged = append(tagged, 0x81, 0x00, 0x00, 0x05)
	tagged = append(tagged, plain[12:]...)

	mod.EXPECT().Validate(gomock.Any(), gomock.Any()).DoAndReturn(func(f *probe.Frame, _ *aeskey.Key) (models.Hit, bool) {
		assert.Len(t, f.Link, 18)
		assert.Equal(t, byte(0x45), f.Net[0])

		return models.Hit{}, false
	})

	p, err := NewPipeline(mod, nil, layers.LinkTypeEthernet, &collect{}, counters)
	require.NoError(t, err)

	require.NoError(t, p.Handle(tagged))
	require.NoError(t, p.Handle(plain[:20]))
	require.NoError(t, p.Handle([]byte{1, 2, 3}))

	assert.Equal(t, uint64(3), counters.ProbeDrops.Load())
}

type collect struct {
	mu   sync.Mutex
	hits []models.Hit
}

func (c *collect) Record(hit *models.Hit) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits = append(c.hits, *hit)

	return Recorded, nil
}

func TestFaninSerializesProducers(t *testing.T) {
	counters := &models.Counters{}
	inner := NewCounted(NewAliasedRecorder(dedup.NewHashSet[uint128.Uint128](0)), counters)
	f := NewFanin(inner, 8)

	ctx := context.Background()
	errc := make(chan error, 1)

	go func() { errc <- f.Run(ctx) }()

	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			for i := 0; i < 50; i++ {
				a := netip.AddrFrom16([16]byte{0x20, 0x01, 0x0d, 0xb8, 15: byte(i)})
				out, err := f.Record(&models.Hit{Addr: a, Code: uint32(w)})
				assert.NoError(t, err)
				assert.Equal(t, Queued, out)
			}
		}(w)
	}

	wg.Wait()
	f.Close()
	require.NoError(t, <-errc)

	assert.Equal(t, uint64(50), counters.Hits.Load())
	assert.Equal(t, uint64(150), counters.Duplicates.Load())
}

func TestFaninStopsOnCancel(t *testing.T) {
	f := NewFanin(&collect{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.Run(ctx), context.Canceled)

	_, err := f.Record(&models.Hit{})
	assert.ErrorIs(t, err, ErrRecorderStopped)
}

func TestFaninSyncSeesQueuedHits(t *testing.T) {
	rec := NewAliasedRecorder(dedup.NewHashSet[uint128.Uint128](0))
	f := NewFanin(rec, 64)

	ctx := context.Background()
	errc := make(chan error, 1)

	go func() { errc <- f.Run(ctx) }()

	for i := 0; i < 10; i++ {
		_, err := f.Record(&models.Hit{Addr: v6(byte(i)), Code: 7})
		require.NoError(t, err)
	}

	var got uint64

	require.NoError(t, f.Sync(ctx, func() {
		got = rec.Counts()[7]
		rec.ResetRound()
	}))
	assert.Equal(t, uint64(10), got)

	f.Close()
	require.NoError(t, <-errc)
	assert.Empty(t, rec.Counts())

	assert.ErrorIs(t, f.Sync(ctx, func() {}), ErrRecorderStopped)
}

func v6(i byte) netip.Addr {
	return netip.AddrFrom16([16]byte{0x20, 0x01, 0x0d, 0xb8, 15: i})
}

func TestRegionRecorderChecksFlag(t *testing.T) {
	r := NewRegionRecorder(3, dedup.NewHashSet[uint128.Uint128](0))

	out, err := r.Record(&models.Hit{Addr: v6(1), Flag: 2, Code: 9})
	require.NoError(t, err)
	assert.Equal(t, Ignored, out)

	out, _ = r.Record(&models.Hit{Addr: v6(1), Flag: 3, Code: 9})
	assert.Equal(t, Recorded, out)

	out, _ = r.Record(&models.Hit{Addr: v6(1), Flag: 3, Code: 9})
	assert.Equal(t, Repeated, out)

	assert.Equal(t, map[uint32]uint64{9: 1}, r.Counts())

	r.ResetRound()
	assert.Empty(t, r.Counts())
}

func TestSpaceTreeRecorder(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := output.NewMockSink(ctrl)

	sink.EXPECT().WriteRecord([]string{"2001:db8::1"}).Return(nil)
	sink.EXPECT().WriteRecord([]string{"2001:db8::2"}).Return(nil)

	r := NewSpaceTreeRecorder(dedup.NewHashSet[uint128.Uint128](0), sink)

	for _, h := range []models.Hit{{Addr: v6(1), Code: 7}, {Addr: v6(2), Code: 7}, {Addr: v6(1), Code: 7}} {
		_, err := r.Record(&h)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(2), r.Counts()[7])

	r.ResetRound()
	assert.Equal(t, uint64(0), r.Counts()[7])
}

func TestTopologyRecorderCreditsNovelInterfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := output.NewMockSink(ctrl)
	sink.EXPECT().WriteRecord(gomock.Any()).Return(nil).Times(2)

	r := NewTopologyRecorder(dedup.NewHashSet[uint128.Uint128](0), sink)

	hits := []models.Hit{
		{Addr: v6(1), Target: v6(9), HopLimit: 3, Code: 1},
		{Addr: v6(1), Target: v6(8), HopLimit: 3, Code: 2},
		{Addr: v6(9), Target: v6(9), HopLimit: 8, Code: 1, Reached: true},
	}

	for i := range hits {
		_, err := r.Record(&hits[i])
		require.NoError(t, err)
	}

	assert.Equal(t, map[uint32]uint64{1: 2}, r.Novel())
	assert.Equal(t, map[uint32]uint64{1: 1}, r.Reached())
}

func TestPMAPRecorderCollectsOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := output.NewMockSink(ctrl)
	sink.EXPECT().WriteRecord([]string{"198.51.100.7", "80"}).Return(nil)

	r := NewPMAPRecorder(sink)

	for _, h := range []models.Hit{
		{Addr: target4, Port: 80, Open: true},
		{Addr: target4, Port: 22, Open: false},
		{Addr: target4, Port: 80, Open: true},
	} {
		_, err := r.Record(&h)
		require.NoError(t, err)
	}

	assert.Equal(t, []PortOutcome{{target4, 80, true}, {target4, 22, false}}, r.Outcomes())

	r.ResetRound()
	assert.Empty(t, r.Outcomes())
}

func TestAddrRecorderScopeWithBitmap(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := output.NewMockSink(ctrl)
	sink.EXPECT().WriteRecord([]string{"10.0.0.2"}).Return(nil)

	ranges, err := cyclic.ParseV4Ranges([]string{"10.0.0.0/30"})
	require.NoError(t, err)

	bm, err := dedup.NewV4Bitmap(ranges)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bm.Close() })

	r := NewAddrRecorder[uint32](bm, V4Key, nil, sink)

	out, err := r.Record(&models.Hit{Addr: netip.MustParseAddr("10.0.0.2")})
	require.NoError(t, err)
	assert.Equal(t, Recorded, out)

	out, _ = r.Record(&models.Hit{Addr: netip.MustParseAddr("10.0.0.9")})
	assert.Equal(t, Repeated, out)
}
