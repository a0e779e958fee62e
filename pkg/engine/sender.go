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
	"context"
	"net/netip"

	"github.com/cespare/xxhash/v2"
)

// sendShard builds and transmits the probes of one source in batches. Build
// and transmit failures are counted and the shard moves on.
func (e *Engine) sendShard(ctx context.Context, k int, src Source) {
	l, tx := e.shardLink(k), e.txs[k]
	batch := e.cfg.Batch

	slots := make([][]byte, batch)
	for i := range slots {
		slots[i] = make([]byte, 0, len(l.header)+e.module.MaxPacketLen())
	}

	frames := make([][]byte, 0, batch)

	flush := func() {
		if len(frames) == 0 {
			return
		}

		n, err := tx.Send(frames)
		e.counters.Sent.Add(uint64(n))

		if err != nil {
			e.counters.SendErrors.Add(uint64(len(frames) - n))
			e.log.Debug().Err(err).Int("shard", k).Int("dropped", len(frames)-n).Msg("send failed")
		}

		frames = frames[:0]
	}

	for ctx.Err() == nil {
		p, ok := src.Next()
		if !ok {
			break
		}

		if err := e.limiter.Wait(ctx); err != nil {
			break
		}

		p.Src = l.source(p.Dst)

		slot := append(slots[len(frames)][:0], l.header...)

		frame, err := e.module.Build(slot, &p, e.key)
		if err != nil {
			e.counters.SendErrors.Add(1)
			continue
		}

		slots[len(frames)] = frame[:0]
		frames = append(frames, frame)

		if len(frames) == batch {
			flush()
		}
	}

	flush()
}

func hashAddr(a netip.Addr) uint64 {
	b := a.As16()
	return xxhash.Sum64(b[:])
}
