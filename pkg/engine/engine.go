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

// Package engine runs a scan. Sender shards walk their slice of the target
// space under a shared rate limit, receivers validate captured responses and
// hand hits to a single recording goroutine, and the adaptive strategies are
// driven in rounds on top of both.
package engine

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/config"
	"github.com/carverauto/cyclescan/pkg/logger"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/output"
	"github.com/carverauto/cyclescan/pkg/probe"
	"github.com/carverauto/cyclescan/pkg/receiver"
	"github.com/carverauto/cyclescan/pkg/scan"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

// Options carries the collaborators of an Engine.
type Options struct {
	// Transport defaults to RawTransport.
	Transport Transport
	// Sink receives the strategy's records. The engine does not close it.
	Sink   output.Sink
	ScanID string
}

// Engine runs one scan. It is not reusable.
type Engine struct {
	cfg       *config.ScanConfig
	log       logger.Logger
	transport Transport
	sink      output.Sink
	scanID    string

	key     *aeskey.Key
	module  probe.Module
	limiter *rate.Limiter

	links []*link
	txs   []Transmitter
	fanin *receiver.Fanin

	counters      models.Counters
	expected      atomic.Uint64
	rounds        int
	roundTimeouts int
}

// New prepares a scan from a validated config. Errors are ConfigFatal.
func New(cfg *config.ScanConfig, log logger.Logger, opts Options) (*Engine, error) {
	if opts.Transport == nil {
		opts.Transport = RawTransport{}
	}

	if opts.Sink == nil {
		opts.Sink = output.Discard{}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	key, err := aeskey.New(seed)
	if err != nil {
		return nil, scanerr.Config("seed: %v", err)
	}

	name := cfg.Module
	if name == "" {
		name = probe.ForStrategy(cfg.Strategy, cfg.IPv6)
	}

	module, err := probe.New(name, probe.Options{
		SourcePorts: probe.SourcePorts{Base: cfg.SourcePort, Count: cfg.SourcePortCount},
		Flag:        cfg.Flag,
		HopLimit:    cfg.HopLimit,
	})
	if err != nil {
		return nil, scanerr.Config("module %q: %v", name, err)
	}

	if module.IPv6() != cfg.IPv6 {
		return nil, scanerr.Config("module %q does not match the scan family", name)
	}

	limit := rate.Limit(cfg.Rate)
	if cfg.Rate == 0 {
		limit = rate.Inf
	}

	log.Info().
		Str("scan_id", opts.ScanID).
		Str("strategy", string(cfg.Strategy)).
		Str("module", module.Name()).
		Uint64("seed", seed).
		Int("rate", cfg.Rate).
		Msg("scan configured")

	return &Engine{
		cfg:       cfg,
		log:       log,
		transport: opts.Transport,
		sink:      opts.Sink,
		scanID:    opts.ScanID,
		key:       key,
		module:    module,
		limiter:   rate.NewLimiter(limit, cfg.Batch),
	}, nil
}

// Counters exposes the live scan counters.
func (e *Engine) Counters() *models.Counters { return &e.counters }

// Run executes the scan and returns its summary. Cancelling ctx stops the
// senders; responses still in flight are collected for the cooldown period
// and the summary is returned with a nil error. Fatal errors are returned
// together with the partial summary.
func (e *Engine) Run(ctx context.Context) (*models.Summary, error) {
	summary := &models.Summary{
		ScanID:    e.scanID,
		Strategy:  e.cfg.Strategy,
		StartTime: time.Now(),
	}

	err := e.run(ctx)

	summary.EndTime = time.Now()
	summary.Stats = e.counters.Snapshot()
	summary.Rounds = e.rounds
	summary.RoundTimeouts = e.roundTimeouts

	ev := e.log.Info()
	if ctx.Err() != nil {
		ev = ev.Bool("interrupted", true)
	}

	ev.Uint64("sent", summary.Stats.Sent).
		Uint64("hits", summary.Stats.Hits).
		Uint64("duplicates", summary.Stats.Duplicates).
		Dur("elapsed", summary.EndTime.Sub(summary.StartTime)).
		Msg("scan finished")

	return summary, err
}

func (e *Engine) run(ctx context.Context) error {
	strat, err := e.newStrategy()
	if err != nil {
		return err
	}
	defer e.closeLogged("strategy", strat.close)

	if err := e.openLinks(); err != nil {
		return err
	}

	if err := e.openSenders(); err != nil {
		return err
	}
	defer e.closeSenders()

	caps, err := e.openCaptures()
	defer func() {
		for _, c := range caps {
			c.Close()
		}
	}()

	if err != nil {
		return err
	}

	e.fanin = receiver.NewFanin(receiver.NewCounted(strat.recorder(), &e.counters), 0)

	pipes := make([]*receiver.Pipeline, len(caps))
	for i, c := range caps {
		if pipes[i], err = receiver.NewPipeline(e.module, e.key, c.LinkType(), e.fanin, &e.counters); err != nil {
			return scanerr.Resource("capture", err)
		}
	}

	// Receivers outlive an interrupt so the cooldown still collects answers.
	ictx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	g, gctx := errgroup.WithContext(ictx)
	stop := make(chan struct{})

	g.Go(func() error { return e.fanin.Run(gctx) })

	var recv errgroup.Group
	for i, c := range caps {
		recv.Go(func() error { return e.receive(gctx, c, pipes[i], stop) })
	}

	g.Go(func() error {
		defer e.fanin.Close()
		return recv.Wait()
	})

	g.Go(func() error {
		e.monitor(gctx, stop)
		return nil
	})

	g.Go(func() error {
		defer close(stop)

		sctx, scancel := context.WithCancel(gctx)
		defer scancel()

		unhook := context.AfterFunc(ctx, scancel)
		defer unhook()

		if ctx.Err() != nil {
			scancel()
		}

		return strat.run(&session{e: e, send: sctx, recv: gctx})
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return strat.finish()
}

func (e *Engine) closeLogged(what string, fn func() error) {
	if err := fn(); err != nil {
		e.log.Warn().Err(err).Str("what", what).Msg("close failed")
	}
}

// link is one resolved interface and the addresses probes leave from.
type link struct {
	iface  *scan.Interface
	header []byte
	srcs   []netip.Addr
}

func (e *Engine) openLinks() error {
	names := e.cfg.Interfaces
	if len(names) == 0 {
		names = []string{""}
	}

	var srcs []netip.Addr

	for _, s := range e.cfg.SourceIPs {
		a, err := netip.ParseAddr(s)
		if err != nil {
			return scanerr.Config("source ip %q: %v", s, err)
		}

		srcs = append(srcs, a.Unmap())
	}

	var gwMAC net.HardwareAddr

	if e.cfg.GatewayMAC != "" {
		mac, err := net.ParseMAC(e.cfg.GatewayMAC)
		if err != nil {
			return scanerr.Config("gateway mac %q: %v", e.cfg.GatewayMAC, err)
		}

		gwMAC = mac
	}

	v6 := e.module.IPv6()

	for _, name := range names {
		iface, err := e.transport.Resolve(scan.ResolveOptions{
			Name:       name,
			IPv6:       v6,
			SourceIPs:  srcs,
			GatewayMAC: gwMAC,
		})
		if err != nil {
			return err
		}

		hdr, err := iface.LinkHeader(v6)
		if err != nil {
			return scanerr.Resource("link header for "+iface.Name, err)
		}

		l := &link{iface: iface, header: hdr}
		for _, a := range iface.SourceIPs {
			if a.Unmap().Is4() != v6 {
				l.srcs = append(l.srcs, a.Unmap())
			}
		}

		if len(l.srcs) == 0 {
			return scanerr.Resource("interface "+iface.Name, scan.ErrNoSourceAddr)
		}

		e.log.Info().
			Str("interface", iface.Name).
			Int("mtu", iface.MTU).
			Str("gateway_mac", iface.GatewayMAC.String()).
			Int("sources", len(l.srcs)).
			Msg("interface ready")

		e.links = append(e.links, l)
	}

	return nil
}

// source picks the address a probe to dst leaves from. The choice is a
// function of dst so retries and responses agree.
func (l *link) source(dst netip.Addr) netip.Addr {
	if len(l.srcs) == 1 {
		return l.srcs[0]
	}

	return l.srcs[hashAddr(dst)%uint64(len(l.srcs))]
}

func (e *Engine) openSenders() error {
	opts := scan.SenderOptions{Batch: e.cfg.Batch, IPv6: e.module.IPv6()}

	for _, l := range e.links {
		for range e.cfg.Senders {
			tx, err := e.transport.OpenSender(l.iface, opts)
			if err != nil {
				return err
			}

			e.txs = append(e.txs, tx)
		}
	}

	return nil
}

func (e *Engine) closeSenders() {
	for _, tx := range e.txs {
		e.closeLogged("sender", tx.Close)
	}
}

// shardLink returns the link sender shard k transmits on.
func (e *Engine) shardLink(k int) *link { return e.links[k/e.cfg.Senders] }

func (e *Engine) openCaptures() ([]Capture, error) {
	var caps []Capture

	for _, l := range e.links {
		for k := range e.cfg.Receivers {
			c, err := e.transport.OpenCapture(l.iface, scan.CaptureOptions{
				SnapLen: e.module.SnapLen() + vlanTagLen,
				Filter:  partitionFilter(e.module.Filter(), e.module.IPv6(), k, e.cfg.Receivers),
			})
			if err != nil {
				return caps, err
			}

			caps = append(caps, c)
		}
	}

	return caps, nil
}

// session is the view of a running scan a strategy drives. send ends on
// interrupt or failure, recv only on failure.
type session struct {
	e    *Engine
	send context.Context
	recv context.Context
}

func (s *session) interrupted() bool { return s.send.Err() != nil }

// sendAll runs one sender goroutine per shard until every source is
// exhausted or ctx ends.
func (s *session) sendAll(ctx context.Context, mk func(k, n int) (Source, error)) error {
	n := len(s.e.txs)
	srcs := make([]Source, n)

	for k := range n {
		src, err := mk(k, n)
		if err != nil {
			return err
		}

		srcs[k] = src
	}

	var wg sync.WaitGroup
	for k, src := range srcs {
		wg.Go(func() { s.e.sendShard(ctx, k, src) })
	}

	wg.Wait()

	return nil
}

// round sends probes, bounded by timeout when positive, then waits out the
// cooldown.
func (s *session) round(probes []probe.Probe, timeout time.Duration) error {
	ctx := s.send

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(s.send, timeout)
		defer cancel()
	}

	err := s.sendAll(ctx, func(k, n int) (Source, error) {
		return newListSource(probes, k, n), nil
	})
	if err != nil {
		return err
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.e.roundTimeouts++
		s.e.log.Warn().Err(scanerr.ErrRoundTimeout).Dur("timeout", timeout).Int("round", s.e.rounds+1).Msg("round cut short")
	}

	s.cooldown()
	s.e.rounds++

	return nil
}

// cooldown keeps the receivers running after a send phase.
func (s *session) cooldown() {
	d := time.Duration(s.e.cfg.Cooldown)
	if d <= 0 {
		return
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-s.recv.Done():
	}
}

// sync runs fn on the recording goroutine once queued hits are recorded.
func (s *session) sync(fn func()) error {
	return s.e.fanin.Sync(s.recv, fn)
}
