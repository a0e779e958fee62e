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
	"strconv"
	"sync/atomic"
	"time"
)

// Counters are updated by senders and receivers without locks.
type Counters struct {
	Sent       atomic.Uint64
	SendErrors atomic.Uint64
	Received   atomic.Uint64
	Hits       atomic.Uint64
	Duplicates atomic.Uint64
	ProbeDrops atomic.Uint64
	Overruns   atomic.Uint64
	Excluded   atomic.Uint64
}

// Snapshot copies the counters.
func (c *Counters) Snapshot() ScanStats {
	return ScanStats{
		Sent:       c.Sent.Load(),
		SendErrors: c.SendErrors.Load(),
		Received:   c.Received.Load(),
		Hits:       c.Hits.Load(),
		Duplicates: c.Duplicates.Load(),
		ProbeDrops: c.ProbeDrops.Load(),
		Overruns:   c.Overruns.Load(),
		Excluded:   c.Excluded.Load(),
	}
}

// ScanStats is a point-in-time copy of Counters.
type ScanStats struct {
	Sent       uint64 `json:"sent"`
	SendErrors uint64 `json:"send_errors"`
	Received   uint64 `json:"received"`
	Hits       uint64 `json:"hits"`
	Duplicates uint64 `json:"duplicates"`
	ProbeDrops uint64 `json:"probe_drops"`
	Overruns   uint64 `json:"overruns"`
	Excluded   uint64 `json:"excluded"`
}

// Summary is written once at the end of a scan.
type Summary struct {
	ScanID        string
	Strategy      Strategy
	StartTime     time.Time
	EndTime       time.Time
	Stats         ScanStats
	Rounds        int
	RoundTimeouts int
}

// Field is one key: value line of the summary file.
type Field struct {
	Key   string
	Value string
}

// Fields returns the summary as ordered key/value pairs.
func (s *Summary) Fields() []Field {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }

	return []Field{
		{"scan_id", s.ScanID},
		{"strategy", string(s.Strategy)},
		{"start_time", s.StartTime.UTC().Format(time.RFC3339)},
		{"end_time", s.EndTime.UTC().Format(time.RFC3339)},
		{"duration", s.EndTime.Sub(s.StartTime).Round(time.Millisecond).String()},
		{"sent", u(s.Stats.Sent)},
		{"send_errors", u(s.Stats.SendErrors)},
		{"received", u(s.Stats.Received)},
		{"hits", u(s.Stats.Hits)},
		{"duplicates", u(s.Stats.Duplicates)},
		{"probe_drops", u(s.Stats.ProbeDrops)},
		{"overruns", u(s.Stats.Overruns)},
		{"excluded", u(s.Stats.Excluded)},
		{"rounds", strconv.Itoa(s.Rounds)},
		{"round_timeouts", strconv.Itoa(s.RoundTimeouts)},
	}
}
