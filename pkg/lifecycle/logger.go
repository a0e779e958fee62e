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

// Package lifecycle sets up the process around a scan: the component logger
// and the context that interrupts it.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carverauto/cyclescan/pkg/logger"
)

// CreateComponentLogger creates a logger for a specific component, tagged
// with the host and process so logs of parallel scanners can be told apart.
func CreateComponentLogger(component string, config *logger.Config) (logger.Logger, error) {
	l, err := logger.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	host, _ := os.Hostname()

	zl := l.Zerolog().With().
		Str("component", component).
		Str("host", host).
		Int("pid", os.Getpid()).
		Logger()

	return logger.Wrap(zl), nil
}

// SignalContext is canceled on SIGINT or SIGTERM. A second signal after
// stop restores the default handler and kills the process.
func SignalContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
