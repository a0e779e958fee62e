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
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/cyclescan/pkg/config"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitConfig, exitCode(scanerr.Config("bad")))
	assert.Equal(t, exitResource, exitCode(scanerr.Resource("socket", errors.New("denied"))))
	assert.Equal(t, exitFailure, exitCode(errors.New("other")))
}

func TestOverridesOnlyTouchGivenFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("config", "", "")

	var o overrides
	o.register(fs)

	require.NoError(t, fs.Parse([]string{
		"-config", "scan.json",
		"-strategy", "addr-port",
		"-targets", "198.51.100.0/24,203.0.113.0/24",
		"-rate", "0",
	}))

	cfg := config.DefaultScanConfig()
	cfg.Seed = 9
	o.apply(fs, cfg)

	assert.Equal(t, models.StrategyAddrPort, cfg.Strategy)
	assert.Equal(t, []string{"198.51.100.0/24", "203.0.113.0/24"}, cfg.Targets)
	assert.Zero(t, cfg.Rate)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, config.StdoutPath, cfg.Output.Path)
}
