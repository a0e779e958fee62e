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

package dedup

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/carverauto/cyclescan/pkg/addr"
	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

func v4(s string) uint32 { return addr.V4ToUint32(netip.MustParseAddr(s)) }

func v6(s string) uint128.Uint128 { return addr.V6ToUint128(netip.MustParseAddr(s)) }

func TestV4BitmapMarksAndRangeChecks(t *testing.T) {
	ranges, err := cyclic.ParseV4Ranges([]string{"10.0.0.0/30"})
	require.NoError(t, err)

	c, err := NewV4Bitmap(ranges)
	require.NoError(t, err)

	defer func() { require.NoError(t, c.Close()) }()

	c.Set(v4("10.0.0.1"))
	c.Set(v4("10.0.0.3"))

	want := map[string]bool{
		"10.0.0.0": true,
		"10.0.0.1": false,
		"10.0.0.2": true,
		"10.0.0.3": false,
		"10.0.0.4": false,
	}

	for ip, expected := range want {
		assert.Equal(t, expected, c.NotMarkedAndValid(v4(ip)), ip)
	}

	c.Set(v4("10.0.0.1"))
	assert.False(t, c.NotMarkedAndValid(v4("10.0.0.1")))
	assert.Equal(t, uint(2), c.Count())

	c.Set(v4("10.0.0.9"))
	assert.Equal(t, uint(2), c.Count())
}

func TestV4BitmapAcrossRanges(t *testing.T) {
	ranges, err := cyclic.ParseV4Ranges([]string{"192.0.2.0/24", "198.51.100.7", "203.0.113.0/28"})
	require.NoError(t, err)

	c, err := NewV4Bitmap(ranges)
	require.NoError(t, err)

	defer c.Close()

	for _, ip := range []string{"192.0.2.255", "198.51.100.7", "203.0.113.15"} {
		require.True(t, c.NotMarkedAndValid(v4(ip)), ip)
		c.Set(v4(ip))
		assert.False(t, c.NotMarkedAndValid(v4(ip)), ip)
	}

	assert.False(t, c.NotMarkedAndValid(v4("198.51.100.8")))
	assert.True(t, c.NotMarkedAndValid(v4("192.0.2.254")))
}

func TestV4PortBitmap(t *testing.T) {
	ranges, err := cyclic.ParseV4Ranges([]string{"10.1.0.0/31"})
	require.NoError(t, err)

	c, err := NewV4PortBitmap(ranges, []uint16{22, 80, 443})
	require.NoError(t, err)

	defer c.Close()

	k := V4Port{IP: v4("10.1.0.1"), Port: 443}
	require.True(t, c.NotMarkedAndValid(k))
	c.Set(k)
	assert.False(t, c.NotMarkedAndValid(k))

	assert.True(t, c.NotMarkedAndValid(V4Port{IP: v4("10.1.0.1"), Port: 80}))
	assert.True(t, c.NotMarkedAndValid(V4Port{IP: v4("10.1.0.0"), Port: 443}))
	assert.False(t, c.NotMarkedAndValid(V4Port{IP: v4("10.1.0.1"), Port: 8080}), "port not scanned")
	assert.False(t, c.NotMarkedAndValid(V4Port{IP: v4("10.1.0.2"), Port: 22}), "address not scanned")
}

func TestV6Bitmaps(t *testing.T) {
	r, err := cyclic.ParseV6Range("2001:db8::/116")
	require.NoError(t, err)

	c, err := NewV6Bitmap(r)
	require.NoError(t, err)

	defer c.Close()

	a := v6("2001:db8::abc")
	require.True(t, c.NotMarkedAndValid(a))
	c.Set(a)
	assert.False(t, c.NotMarkedAndValid(a))
	assert.False(t, c.NotMarkedAndValid(v6("2001:db8::1:0")))

	p, err := cyclic.NewV6Pattern(v6("2001:db8::"), uint128.From64(0xff00))
	require.NoError(t, err)

	pc, err := NewV6PortBitmap(p, []uint16{443})
	require.NoError(t, err)

	defer pc.Close()

	k := V6Port{IP: v6("2001:db8::4200"), Port: 443}
	require.True(t, pc.NotMarkedAndValid(k))
	pc.Set(k)
	assert.False(t, pc.NotMarkedAndValid(k))
	assert.False(t, pc.NotMarkedAndValid(V6Port{IP: v6("2001:db8::4201"), Port: 443}), "fixed bit differs")
}

func TestBitmapTooLarge(t *testing.T) {
	r, err := cyclic.ParseV6Range("2001:db8::/64")
	require.NoError(t, err)

	_, err = NewV6Bitmap(r)
	require.ErrorIs(t, err, ErrBitmapTooLarge)
	assert.True(t, scanerr.IsFatal(err))
}

func TestHashSet(t *testing.T) {
	h := NewHashSet[V6Port](16)

	k := V6Port{IP: v6("2001:db8::1"), Port: 80}
	assert.True(t, h.NotMarkedAndValid(k))

	h.Set(k)
	h.Set(k)

	assert.False(t, h.NotMarkedAndValid(k))
	assert.True(t, h.NotMarkedAndValid(V6Port{IP: k.IP, Port: 81}))
	assert.Equal(t, 1, h.Len())
}

func TestBloomHasNoFalseNegatives(t *testing.T) {
	f := NewV6Bloom(10000, 0.001)
	base := v6("2001:db8::")

	for i := uint64(0); i < 5000; i++ {
		f.Set(base.Add64(i))
	}

	for i := uint64(0); i < 5000; i++ {
		require.False(t, f.NotMarkedAndValid(base.Add64(i)))
	}

	fresh := 0

	for i := uint64(100000); i < 101000; i++ {
		if f.NotMarkedAndValid(base.Add64(i)) {
			fresh++
		}
	}

	assert.Greater(t, fresh, 980)

	pf := NewV6PortBloom(100, 0.01)
	pf.Set(V6Port{IP: base, Port: 22})
	assert.False(t, pf.NotMarkedAndValid(V6Port{IP: base, Port: 22}))
}
