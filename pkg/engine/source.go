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

package engine

import (
	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/probe"
)

// Source hands a sender shard its probes. Src is filled in by the shard.
type Source interface {
	Next() (probe.Probe, bool)
}

// targetSource walks one shard of a cyclic target space.
type targetSource struct {
	targets  *cyclic.Targets
	counters *models.Counters
	reported uint64
}

func newTargetSource(t *cyclic.Targets, counters *models.Counters) *targetSource {
	return &targetSource{targets: t, counters: counters}
}

func (s *targetSource) Next() (probe.Probe, bool) {
	a, port, ok := s.targets.Next()

	if ex := s.targets.Excluded(); ex != s.reported {
		s.counters.Excluded.Add(ex - s.reported)
		s.reported = ex
	}

	if !ok {
		return probe.Probe{}, false
	}

	return probe.Probe{Dst: a, DstPort: port}, true
}

// listSource yields every n-th probe of a precomputed list starting at k.
type listSource struct {
	probes []probe.Probe
	next   int
	stride int
}

func newListSource(probes []probe.Probe, k, n int) *listSource {
	return &listSource{probes: probes, next: k, stride: n}
}

func (s *listSource) Next() (probe.Probe, bool) {
	if s.next >= len(s.probes) {
		return probe.Probe{}, false
	}

	p := s.probes[s.next]
	s.next += s.stride

	return p, true
}
