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

	"github.com/carverauto/cyclescan/pkg/models"
)

// Counted updates the hit and duplicate counters around a recorder.
type Counted struct {
	rec      Recorder
	counters *models.Counters
}

// NewCounted wraps rec, counting into counters.
func NewCounted(rec Recorder, counters *models.Counters) *Counted {
	return &Counted{rec: rec, counters: counters}
}

// Record implements Recorder.
func (c *Counted) Record(hit *models.Hit) (Outcome, error) {
	out, err := c.rec.Record(hit)

	switch out {
	case Recorded:
		c.counters.Hits.Add(1)
	case Repeated:
		c.counters.Duplicates.Add(1)
	case Ignored, Queued:
	}

	return out, err
}

// Fanin serializes hits from several receivers onto one recording
// goroutine, so recorders and their checkers need no lock.
type Fanin struct {
	hits  chan models.Hit
	calls chan call
	done  chan struct{}
	rec   Recorder
}

type call struct {
	fn  func()
	ack chan struct{}
}

// NewFanin buffers up to depth hits in flight.
func NewFanin(rec Recorder, depth int) *Fanin {
	if depth <= 0 {
		depth = 4096
	}

	return &Fanin{
		hits:  make(chan models.Hit, depth),
		calls: make(chan call),
		done:  make(chan struct{}),
		rec:   rec,
	}
}

// Record enqueues a copy of hit. It blocks while the queue is full, which
// backs up into the kernel capture buffer rather than the senders.
func (f *Fanin) Record(hit *models.Hit) (Outcome, error) {
	select {
	case <-f.done:
		return Ignored, ErrRecorderStopped
	default:
	}

	select {
	case f.hits <- *hit:
		return Queued, nil
	case <-f.done:
		return Ignored, ErrRecorderStopped
	}
}

// Sync runs fn on the recording goroutine after the hits already queued
// have been recorded. Round drivers read and reset recorders through it.
func (f *Fanin) Sync(ctx context.Context, fn func()) error {
	c := call{fn: fn, ack: make(chan struct{})}

	select {
	case f.calls <- c:
	case <-f.done:
		return ErrRecorderStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-c.ack:
		return nil
	case <-f.done:
		return ErrRecorderStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the stream once every receiver has returned.
func (f *Fanin) Close() { close(f.hits) }

// Run records queued hits until Close drains the queue or ctx ends. A
// recorder error stops the loop and unblocks pending producers.
func (f *Fanin) Run(ctx context.Context) error {
	defer close(f.done)

	for {
		select {
		case hit, ok := <-f.hits:
			if !ok {
				return nil
			}

			if _, err := f.rec.Record(&hit); err != nil {
				return err
			}
		case c := <-f.calls:
			if err := f.drain(); err != nil {
				return err
			}

			c.fn()
			close(c.ack)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Fanin) drain() error {
	for {
		select {
		case hit, ok := <-f.hits:
			if !ok {
				return nil
			}

			if _, err := f.rec.Record(&hit); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
