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

package pmap

import (
	"math/rand/v2"
	"net/netip"
	"slices"
	"testing"

	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPortsPutsPresetFirst(t *testing.T) {
	assert.Equal(t, []uint16{80, 443, 21, 1234}, OrderPorts([]uint16{21, 80, 1234, 443}))
	assert.Equal(t, []uint16{22, 7, 9000}, OrderPorts([]uint16{9000, 7, 22, 7}))
	assert.Len(t, Preset, 30)
}

func trainedGraph(t *testing.T) *Graph {
	t.Helper()

	g, err := NewGraph([]uint16{22, 80, 443})
	require.NoError(t, err)

	g.Train([][]uint16{{80, 443}, {443, 80}, {80, 443}, {22}})

	return g
}

func TestTablesFromTraining(t *testing.T) {
	g := trainedGraph(t)

	root := g.State(0)
	assert.Equal(t, "", root.Label)
	assert.Equal(t, []PortProb{{80, 0.75}, {443, 0.75}, {22, 0.25}}, root.Abs)
	assert.Equal(t, []PortProb{{80, 0.75}, {22, 1}}, root.Rel)
	assert.Equal(t, 4, g.Samples())
}

func TestRecordWalk(t *testing.T) {
	g := trainedGraph(t)
	r := g.NewRecord(netip.MustParseAddr("192.0.2.1"))

	p, ok := g.Next(r)
	require.True(t, ok)
	assert.Equal(t, uint16(80), p)
	assert.True(t, r.Pending())

	g.Report(r, 80, true)
	assert.False(t, r.Pending())

	st, ok := g.Lookup([]uint16{80})
	require.True(t, ok)
	assert.Equal(t, st.ID, r.State)
	assert.Equal(t, []PortProb{{443, 1}}, st.Rel)

	p, _ = g.Next(r)
	assert.Equal(t, uint16(443), p)
	g.Report(r, 443, true)
	assert.Equal(t, "80,443", g.State(r.State).Label)

	p, ok = g.Next(r)
	require.True(t, ok)
	assert.Equal(t, uint16(22), p, "falls through to the ordered target ports")
	g.Report(r, 22, false)

	_, ok = g.Next(r)
	assert.False(t, ok)
	assert.True(t, g.Done(r))
	assert.Equal(t, []uint16{80, 443}, r.Open)
	assert.Equal(t, []uint16{22}, r.NotOpen)

	g.Report(r, 22, true)
	assert.Equal(t, []uint16{22}, r.NotOpen, "repeat reports are ignored")
}

func TestRecordsStayDisjointSortedAndComplete(t *testing.T) {
	ports := []uint16{21, 22, 25, 53, 80, 110, 443, 993, 3306, 8080}
	rng := rand.New(rand.NewPCG(11, 12))

	g, err := NewGraph(ports)
	require.NoError(t, err)

	truth := func() map[uint16]bool {
		open := make(map[uint16]bool)
		for _, p := range ports {
			if rng.IntN(3) == 0 {
				open[p] = true
			}
		}

		return open
	}

	var training [][]uint16

	for range 20 {
		var set []uint16
		for p := range truth() {
			set = append(set, p)
		}

		training = append(training, set)
	}

	g.Train(training)

	var records []*Record

	for i := range 40 {
		r := g.NewRecord(netip.AddrFrom4([4]byte{10, 0, 0, byte(i)}))
		open := truth()
		probed := make(map[uint16]bool)

		for {
			p, ok := g.Next(r)
			if !ok {
				break
			}

			require.False(t, probed[p], "port %d recommended twice", p)
			probed[p] = true
			g.Report(r, p, open[p])

			assert.True(t, slices.IsSorted(r.Open))
			assert.True(t, slices.IsSorted(r.NotOpen))
			assert.Equal(t, len(probed), len(r.Open)+len(r.NotOpen))

			for _, o := range r.Open {
				assert.NotContains(t, r.NotOpen, o)
			}
		}

		assert.Len(t, probed, len(ports))

		st := g.State(r.State)
		assert.Equal(t, r.Open, st.Open)

		records = append(records, r)
	}

	g.EndRound(records)
	assert.Equal(t, 60, g.Samples())

	g.EndRound(records)
	assert.Equal(t, 60, g.Samples(), "records fold once")
}

func TestNewGraphNeedsPorts(t *testing.T) {
	_, err := NewGraph(nil)
	assert.ErrorIs(t, err, scanerr.ErrConfigFatal)
	assert.ErrorIs(t, err, ErrNoTargetPorts)
}
