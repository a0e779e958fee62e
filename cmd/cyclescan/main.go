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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/carverauto/cyclescan/pkg/config"
	"github.com/carverauto/cyclescan/pkg/engine"
	"github.com/carverauto/cyclescan/pkg/lifecycle"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/output"
	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/carverauto/cyclescan/pkg/version"
)

const (
	exitFailure  = 1
	exitConfig   = 2
	exitResource = 3
)

func main() {
	if err := run(); err != nil {
		log.Printf("Fatal error: %v", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, scanerr.ErrConfigFatal):
		return exitConfig
	case errors.Is(err, scanerr.ErrResourceFatal):
		return exitResource
	}

	return exitFailure
}

type overrides struct {
	strategy  string
	targets   string
	ports     string
	iface     string
	output    string
	rate      int
	seed      uint64
	receivers int
}

func (o *overrides) register(fs *flag.FlagSet) {
	fs.StringVar(&o.strategy, "strategy", "", "Scan strategy")
	fs.StringVar(&o.targets, "targets", "", "Comma-separated target prefixes or ranges")
	fs.StringVar(&o.ports, "ports", "", "Target ports, e.g. 22,80,8000-8100")
	fs.StringVar(&o.iface, "interface", "", "Interface to scan from")
	fs.StringVar(&o.output, "output", "", "Record output path, - for stdout")
	fs.IntVar(&o.rate, "rate", 0, "Probes per second, 0 for unlimited")
	fs.Uint64Var(&o.seed, "seed", 0, "Key seed, 0 picks one")
	fs.IntVar(&o.receivers, "receivers", 0, "Receivers per interface")
}

// apply copies the flags given on the command line over cfg.
func (o *overrides) apply(fs *flag.FlagSet, cfg *config.ScanConfig) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strategy":
			cfg.Strategy = models.Strategy(o.strategy)
		case "targets":
			cfg.Targets = strings.Split(o.targets, ",")
		case "ports":
			cfg.Ports = o.ports
		case "interface":
			cfg.Interfaces = []string{o.iface}
		case "output":
			cfg.Output.Path = o.output
		case "rate":
			cfg.Rate = o.rate
		case "seed":
			cfg.Seed = o.seed
		case "receivers":
			cfg.Receivers = o.receivers
		}
	})
}

func run() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "Path to scan config file")
	showVersion := fs.Bool("version", false, "Print the version and exit")

	var o overrides
	o.register(fs)

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println("cyclescan", version.GetFullVersion())

		return nil
	}

	ctx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	cfg := config.DefaultScanConfig()

	if err := config.NewConfig(nil).Load(ctx, *configPath, cfg); err != nil {
		return err
	}

	o.apply(fs, cfg)

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	scanLog, err := lifecycle.CreateComponentLogger("cyclescan", &cfg.Logging)
	if err != nil {
		return err
	}

	scanID := uuid.NewString()

	scanLog.Info().
		Str("version", version.GetVersion()).
		Str("build", version.GetBuildID()).
		Str("scan_id", scanID).
		Msg("Starting cyclescan")

	sink, err := engine.OpenSink(ctx, cfg, scanID, scanLog)
	if err != nil {
		return err
	}

	defer func() {
		if err := sink.Close(); err != nil {
			scanLog.Error().Err(err).Msg("Failed to close output")
		}
	}()

	eng, err := engine.New(cfg, scanLog, engine.Options{Sink: sink, ScanID: scanID})
	if err != nil {
		return err
	}

	summary, runErr := eng.Run(ctx)

	if summary != nil && cfg.SummaryFile != "" {
		if err := output.WriteSummary(cfg.SummaryFile, summary); err != nil {
			scanLog.Error().Err(err).Str("path", cfg.SummaryFile).Msg("Failed to write summary")
		}
	}

	return runErr
}
