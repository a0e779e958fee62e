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

package config

import (
	"net"
	"net/netip"
	"path/filepath"
	"time"

	"github.com/carverauto/cyclescan/pkg/cyclic"
	"github.com/carverauto/cyclescan/pkg/logger"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/output"
	"github.com/carverauto/cyclescan/pkg/prefixtree"
	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/carverauto/cyclescan/pkg/spacetree"
)

// Dedup backends.
const (
	DedupAuto   = ""
	DedupBitmap = "bitmap"
	DedupHash   = "hash"
	DedupBloom  = "bloom"
)

// StdoutPath selects standard output as the record sink.
const StdoutPath = "-"

// ScanConfig is the complete description of one scan.
type ScanConfig struct {
	Strategy models.Strategy `json:"strategy"`
	// Module overrides the probe module the strategy would pick.
	Module string `json:"module,omitempty"`
	IPv6   bool   `json:"ipv6"`

	Interfaces      []string `json:"interfaces,omitempty"`
	SourceIPs       []string `json:"source_ips,omitempty"`
	GatewayMAC      string   `json:"gateway_mac,omitempty"`
	SourcePort      uint16   `json:"source_port"`
	SourcePortCount uint16   `json:"source_port_count"`

	// Targets are CIDRs or lo-hi ranges. IPv6 scans take exactly one.
	Targets []string `json:"targets,omitempty"`
	// TargetFile lists one IPv6 address per line.
	TargetFile string `json:"target_file,omitempty"`
	// Pattern is "base,mask": the set bits of mask are enumerated on top of base.
	Pattern       string `json:"pattern,omitempty"`
	BlocklistFile string `json:"blocklist_file,omitempty"`
	Ports         string `json:"ports,omitempty"`

	Senders   int    `json:"senders"`
	Receivers int    `json:"receivers"`
	Rate      int    `json:"rate"`
	Batch     int    `json:"batch"`
	Seed      uint64 `json:"seed"`
	HopLimit  uint8  `json:"hop_limit,omitempty"`
	Flag      uint8  `json:"flag,omitempty"`
	Dedup     string `json:"dedup,omitempty"`

	Cooldown models.Duration `json:"cooldown"`

	Output      OutputConfig  `json:"output"`
	SummaryFile string        `json:"summary_file,omitempty"`
	Logging     logger.Config `json:"logging"`

	Aliased    AliasedConfig    `json:"aliased"`
	Region     RegionConfig     `json:"region"`
	SpaceTree  SpaceTreeConfig  `json:"space_tree"`
	PrefixTree PrefixTreeConfig `json:"prefix_tree"`
	PMAP       PMAPConfig       `json:"pmap"`
}

// OutputConfig selects record sinks. Both may be active.
type OutputConfig struct {
	Path   string             `json:"path"`
	Header bool               `json:"header"`
	NATS   *output.NATSConfig `json:"nats,omitempty"`
}

// AliasedConfig drives aliased-prefix detection.
type AliasedConfig struct {
	PrefixFile      string `json:"prefix_file,omitempty"`
	ProbesPerPrefix int    `json:"probes_per_prefix"`
	// Threshold is the responder count at which a prefix is reported aliased.
	Threshold int `json:"threshold"`
}

// RegionConfig tags each target with the index of the prefix containing it.
type RegionConfig struct {
	PrefixFile string `json:"prefix_file,omitempty"`
}

// SpaceTreeConfig drives the adaptive space-tree strategy.
type SpaceTreeConfig struct {
	SeedFile     string           `json:"seed_file,omitempty"`
	Tree         spacetree.Config `json:"tree"`
	Budget       int              `json:"budget"`
	Rounds       int              `json:"rounds"`
	RoundTimeout models.Duration  `json:"round_timeout"`
}

// PrefixTreeConfig drives the topology strategy.
type PrefixTreeConfig struct {
	PrefixFile     string            `json:"prefix_file,omitempty"`
	Tree           prefixtree.Config `json:"tree"`
	TargetsPerNode int               `json:"targets_per_node"`
	MinHop         uint8             `json:"min_hop"`
	MaxHop         uint8             `json:"max_hop"`
	Rounds         int               `json:"rounds"`
	RoundTimeout   models.Duration   `json:"round_timeout"`
}

// PMAPConfig drives port recommendation.
type PMAPConfig struct {
	// TrainingNum addresses are probed on every port to seed the graph.
	TrainingNum int `json:"training_num"`
	// Rounds caps the recommended probes per address.
	Rounds       int             `json:"rounds"`
	RoundTimeout models.Duration `json:"round_timeout"`
}

// DefaultScanConfig returns the values a config file overlays.
func DefaultScanConfig() *ScanConfig {
	return &ScanConfig{
		Strategy:        models.StrategyAddr,
		SourcePort:      32768,
		SourcePortCount: 28232,
		Senders:         1,
		Receivers:       1,
		Rate:            10000,
		Batch:           64,
		Cooldown:        models.Duration(8 * time.Second),
		Output:          OutputConfig{Path: StdoutPath},
		Logging: logger.Config{
			Level:      "info",
			Output:     logger.OutputStderr,
			TimeFormat: time.RFC3339,
		},
		Aliased: AliasedConfig{ProbesPerPrefix: 16, Threshold: 16},
		SpaceTree: SpaceTreeConfig{
			Tree:         spacetree.DefaultConfig(),
			Budget:       100000,
			Rounds:       10,
			RoundTimeout: models.Duration(30 * time.Second),
		},
		PrefixTree: PrefixTreeConfig{
			Tree:           prefixtree.DefaultConfig(),
			TargetsPerNode: 4,
			MinHop:         1,
			MaxHop:         16,
			Rounds:         10,
			RoundTimeout:   models.Duration(30 * time.Second),
		},
		PMAP: PMAPConfig{
			TrainingNum:  1000,
			Rounds:       10,
			RoundTimeout: models.Duration(10 * time.Second),
		},
	}
}

// ResolvePaths makes relative file paths relative to dir.
func (c *ScanConfig) ResolvePaths(dir string) {
	for _, p := range []*string{
		&c.TargetFile,
		&c.BlocklistFile,
		&c.SummaryFile,
		&c.Logging.File,
		&c.Aliased.PrefixFile,
		&c.Region.PrefixFile,
		&c.SpaceTree.SeedFile,
		&c.PrefixTree.PrefixFile,
	} {
		resolve(dir, p)
	}

	if c.Output.Path != StdoutPath {
		resolve(dir, &c.Output.Path)
	}

	if c.Output.NATS != nil && c.Output.NATS.TLS != nil {
		tls := c.Output.NATS.TLS
		resolve(dir, &tls.CAFile)
		resolve(dir, &tls.CertFile)
		resolve(dir, &tls.KeyFile)
	}
}

func resolve(dir string, p *string) {
	if *p != "" && !filepath.IsAbs(*p) {
		*p = filepath.Join(dir, *p)
	}
}

// Validate checks the config and fills in what follows from the strategy.
// Every error is ConfigFatal.
func (c *ScanConfig) Validate() error {
	if !models.ContainsStrategy(models.Strategies, c.Strategy) {
		return scanerr.Config("unknown strategy %q", c.Strategy)
	}

	if c.Strategy.IPv6Only() {
		c.IPv6 = true
	}

	if err := c.validateTransport(); err != nil {
		return err
	}

	if err := c.validateTargets(); err != nil {
		return err
	}

	if err := c.validateOutput(); err != nil {
		return err
	}

	return c.validateStrategy()
}

func (c *ScanConfig) validateTransport() error {
	switch {
	case c.Senders < 1:
		return scanerr.Config("senders must be at least 1")
	case c.Receivers < 1:
		return scanerr.Config("receivers must be at least 1")
	case c.Rate < 0:
		return scanerr.Config("rate must not be negative")
	case c.Batch < 1:
		return scanerr.Config("batch must be at least 1")
	case c.Cooldown < 0:
		return scanerr.Config("cooldown must not be negative")
	case c.SourcePort == 0 || c.SourcePortCount == 0:
		return scanerr.Config("source port range is empty")
	case uint32(c.SourcePort)+uint32(c.SourcePortCount)-1 > 0xffff:
		return scanerr.Config("source ports %d+%d overflow", c.SourcePort, c.SourcePortCount)
	}

	for _, s := range c.SourceIPs {
		a, err := netip.ParseAddr(s)
		if err != nil {
			return scanerr.Config("source ip %q: %v", s, err)
		}

		if a.Unmap().Is4() == c.IPv6 {
			return scanerr.Config("source ip %q does not match the scan family", s)
		}
	}

	if c.GatewayMAC != "" {
		if _, err := net.ParseMAC(c.GatewayMAC); err != nil {
			return scanerr.Config("gateway mac %q: %v", c.GatewayMAC, err)
		}
	}

	switch c.Dedup {
	case DedupAuto, DedupBitmap, DedupHash, DedupBloom:
	default:
		return scanerr.Config("unknown dedup backend %q", c.Dedup)
	}

	return nil
}

func (c *ScanConfig) validateTargets() error {
	switch c.Strategy {
	case models.StrategyAliased:
		if c.Aliased.PrefixFile == "" && len(c.Targets) == 0 {
			return scanerr.Config("aliased scan needs prefixes")
		}

		return nil
	case models.StrategySpaceTree, models.StrategyTopology:
		return nil
	case models.StrategyRegion:
		if c.TargetFile == "" || c.Region.PrefixFile == "" {
			return scanerr.Config("region scan needs target_file and region.prefix_file")
		}

		return nil
	case models.StrategyAddr, models.StrategyAddrPort, models.StrategyPMAP:
	}

	sources := 0

	for _, set := range []bool{len(c.Targets) > 0, c.TargetFile != "", c.Pattern != ""} {
		if set {
			sources++
		}
	}

	switch {
	case sources == 0:
		return scanerr.Config("no targets given")
	case sources > 1:
		return scanerr.Config("targets, target_file and pattern are exclusive")
	case !c.IPv6 && (c.TargetFile != "" || c.Pattern != ""):
		return scanerr.Config("target_file and pattern are IPv6 only")
	case c.IPv6 && len(c.Targets) > 1:
		return scanerr.Config("IPv6 scans take a single target range")
	}

	if c.Strategy == models.StrategyAddrPort && c.Ports == "" {
		return scanerr.Config("addr-port scan needs ports")
	}

	if c.Ports != "" {
		if _, err := cyclic.ParsePorts(c.Ports); err != nil {
			return err
		}
	}

	return nil
}

func (c *ScanConfig) validateOutput() error {
	if c.Output.Path == "" && c.Output.NATS == nil {
		return scanerr.Config("no output configured")
	}

	if n := c.Output.NATS; n != nil && (n.URL == "" || n.Subject == "") {
		return scanerr.Config("nats output needs url and subject")
	}

	if err := c.Logging.Validate(); err != nil {
		return scanerr.Config("logging: %v", err)
	}

	if c.Output.Path == StdoutPath && c.Logging.Output == logger.OutputStdout {
		return scanerr.Config("logging: stdout already carries records")
	}

	return nil
}

func (c *ScanConfig) validateStrategy() error {
	switch c.Strategy {
	case models.StrategyAliased:
		a := c.Aliased
		if a.ProbesPerPrefix < 1 || a.Threshold < 1 || a.Threshold > a.ProbesPerPrefix {
			return scanerr.Config("aliased: need 1 <= threshold <= probes_per_prefix")
		}
	case models.StrategySpaceTree:
		s := &c.SpaceTree
		if s.SeedFile == "" {
			return scanerr.Config("space_tree: seed_file is required")
		}

		if err := s.Tree.Validate(); err != nil {
			return err
		}

		return validateRounds("space_tree", s.Budget, s.Rounds, s.RoundTimeout)
	case models.StrategyTopology:
		p := &c.PrefixTree
		if p.PrefixFile == "" {
			return scanerr.Config("prefix_tree: prefix_file is required")
		}

		if p.MinHop < 1 || p.MinHop > p.MaxHop {
			return scanerr.Config("prefix_tree: need 1 <= min_hop <= max_hop")
		}

		if err := p.Tree.Validate(); err != nil {
			return err
		}

		return validateRounds("prefix_tree", p.TargetsPerNode, p.Rounds, p.RoundTimeout)
	case models.StrategyPMAP:
		p := c.PMAP
		if p.TrainingNum < 0 {
			return scanerr.Config("pmap: training_num must not be negative")
		}

		return validateRounds("pmap", 1, p.Rounds, p.RoundTimeout)
	case models.StrategyAddr, models.StrategyAddrPort, models.StrategyRegion:
	}

	return nil
}

func validateRounds(section string, budget, rounds int, timeout models.Duration) error {
	switch {
	case budget < 1:
		return scanerr.Config("%s: per-round budget must be positive", section)
	case rounds < 1:
		return scanerr.Config("%s: rounds must be at least 1", section)
	case timeout <= 0:
		return scanerr.Config("%s: round_timeout must be positive", section)
	}

	return nil
}
