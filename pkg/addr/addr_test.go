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

package addr

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestV4RoundTrip(t *testing.T) {
	a := netip.MustParseAddr("10.0.0.3")
	v := V4ToUint32(a)
	assert.Equal(t, uint32(0x0a000003), v)
	assert.Equal(t, a, Uint32ToV4(v))

	mapped := netip.MustParseAddr("::ffff:10.0.0.3")
	assert.Equal(t, v, V4ToUint32(mapped))
}

func TestV6RoundTrip(t *testing.T) {
	a := netip.MustParseAddr("2001:db8::1")
	v := V6ToUint128(a)
	assert.Equal(t, uint64(1), v.Lo)
	assert.Equal(t, uint64(0x20010db800000000), v.Hi)
	assert.Equal(t, a, Uint128ToV6(v))
}

func TestMaskAndBits(t *testing.T) {
	assert.Equal(t, uint128.Zero, Mask(0))
	assert.Equal(t, uint128.Max, Mask(128))
	assert.Equal(t, uint128.New(0, 0xffff000000000000), Mask(16))

	v := V6ToUint128(netip.MustParseAddr("2001:db8::abcd"))
	assert.Equal(t, uint64(0xd), BitsAt(v, 0, 4))
	assert.Equal(t, uint64(0xab), BitsAt(v, 8, 8))

	w := SetBitsAt(v, 0, 4, 0x3)
	assert.Equal(t, uint64(0x3), BitsAt(w, 0, 4))
	assert.Equal(t, uint64(0xabc), BitsAt(w, 4, 12))

	p := PrefixBits(v, 32)
	assert.Equal(t, netip.MustParseAddr("2001:db8::"), Uint128ToV6(p))
}

func TestReadLinesSkipsCommentsAndBlanks(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("# seeds\n2001:db8::1\n\n  2001:db8::2  \n#x\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2001:db8::1", "2001:db8::2"}, lines)
}
