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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"250ms"`), &d))
	assert.Equal(t, 250*time.Millisecond, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Std())

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	require.ErrorIs(t, json.Unmarshal([]byte(`true`), &d), errInvalidDuration)

	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(out))
}

func TestStrategyTraits(t *testing.T) {
	tests := []struct {
		s        Strategy
		rounds   bool
		v6Only   bool
		usesPort bool
	}{
		{StrategyAddr, false, false, false},
		{StrategyAddrPort, false, false, true},
		{StrategyAliased, false, true, false},
		{StrategyRegion, false, true, false},
		{StrategySpaceTree, true, true, false},
		{StrategyTopology, true, true, false},
		{StrategyPMAP, true, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.s), func(t *testing.T) {
			assert.True(t, ContainsStrategy(Strategies, tt.s))
			assert.Equal(t, tt.rounds, tt.s.Rounds())
			assert.Equal(t, tt.v6Only, tt.s.IPv6Only())
			assert.Equal(t, tt.usesPort, tt.s.UsesPorts())
		})
	}

	assert.False(t, ContainsStrategy(Strategies, "ping"))
}

func TestCountersSnapshot(t *testing.T) {
	var c Counters

	c.Sent.Add(10)
	c.Hits.Add(3)
	c.Duplicates.Add(1)
	c.Excluded.Add(2)

	assert.Equal(t, ScanStats{Sent: 10, Hits: 3, Duplicates: 1, Excluded: 2}, c.Snapshot())
}

func TestSummaryFields(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := Summary{
		ScanID:    "abc",
		Strategy:  StrategyAddr,
		StartTime: start,
		EndTime:   start.Add(1500 * time.Millisecond),
		Stats:     ScanStats{Sent: 7, Hits: 2},
		Rounds:    1,
	}

	fields := s.Fields()
	require.Len(t, fields, 15)

	got := make(map[string]string, len(fields))
	for _, f := range fields {
		got[f.Key] = f.Value
	}

	assert.Equal(t, "scan_id", fields[0].Key)
	assert.Equal(t, "2025-03-01T12:00:00Z", got["start_time"])
	assert.Equal(t, "1.5s", got["duration"])
	assert.Equal(t, "7", got["sent"])
	assert.Equal(t, "2", got["hits"])
	assert.Equal(t, "1", got["rounds"])
	assert.Equal(t, "0", got["round_timeouts"])
}
