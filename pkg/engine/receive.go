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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/cyclescan/pkg/receiver"
	"github.com/carverauto/cyclescan/pkg/scan"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

const (
	vlanTagLen = 4
	// dropsEvery is how many frames pass between kernel drop polls.
	dropsEvery = 4096

	monitorInterval = time.Second
)

// partitionFilter narrows filter to the responders whose last address byte
// is k modulo n, so n receivers on one interface never see the same frame.
func partitionFilter(filter string, v6 bool, k, n int) string {
	if n <= 1 {
		return filter
	}

	last := "ip[15]"
	if v6 {
		last = "ip6[23]"
	}

	return fmt.Sprintf("(%s) and %s %% %d = %d", filter, last, n, k)
}

// receive feeds captured frames into pipe until stop closes or ctx ends.
func (e *Engine) receive(ctx context.Context, c Capture, pipe *receiver.Pipeline, stop <-chan struct{}) error {
	var (
		drops uint64
		since int
	)

	pollDrops := func() {
		since = 0

		n, err := c.Drops()
		if err != nil || n <= drops {
			return
		}

		e.counters.Overruns.Add(n - drops)
		drops = n
	}
	defer pollDrops()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		default:
		}

		data, err := c.ReadPacket()

		switch {
		case err == nil:
		case errors.Is(err, scan.ErrCaptureTimeout):
			pollDrops()
			continue
		case errors.Is(err, scan.ErrCaptureClosed):
			return nil
		default:
			return scanerr.Resource("capture read", err)
		}

		if err := pipe.Handle(data); err != nil {
			if errors.Is(err, receiver.ErrRecorderStopped) {
				return nil
			}

			return err
		}

		if since++; since >= dropsEvery {
			pollDrops()
		}
	}
}

// monitor logs progress once per interval until stop closes or ctx ends.
func (e *Engine) monitor(ctx context.Context, stop <-chan struct{}) {
	t := time.NewTicker(monitorInterval)
	defer t.Stop()

	prev := e.counters.Snapshot()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case now := <-t.C:
			cur := e.counters.Snapshot()
			secs := now.Sub(last).Seconds()

			ev := e.log.Info().
				Uint64("sent", cur.Sent).
				Float64("send_pps", float64(cur.Sent-prev.Sent)/secs).
				Uint64("received", cur.Received).
				Uint64("hits", cur.Hits).
				Float64("hit_rate", float64(cur.Hits-prev.Hits)/secs).
				Uint64("drops", cur.ProbeDrops).
				Uint64("overruns", cur.Overruns).
				Uint64("send_errors", cur.SendErrors)

			if total := e.expected.Load(); total > 0 {
				ev = ev.Float64("progress", min(100, 100*float64(cur.Sent+cur.SendErrors+cur.Excluded)/float64(total)))
			}

			ev.Msg("scan progress")

			prev, last = cur, now
		}
	}
}
