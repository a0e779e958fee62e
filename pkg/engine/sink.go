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

	"github.com/carverauto/cyclescan/pkg/config"
	"github.com/carverauto/cyclescan/pkg/logger"
	"github.com/carverauto/cyclescan/pkg/output"
)

// OpenSink opens the record sinks the config names: a CSV file or stdout,
// a NATS subject, or both.
func OpenSink(ctx context.Context, cfg *config.ScanConfig, scanID string, log logger.Logger) (output.Sink, error) {
	var sinks output.Tee

	if cfg.Output.Path != "" {
		var header []string
		if cfg.Output.Header {
			header = Header(cfg.Strategy)
		}

		csv, err := output.NewCSVSink(cfg.Output.Path, header)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, csv)
	}

	if cfg.Output.NATS != nil {
		ns, err := output.NewNATSSink(ctx, cfg.Output.NATS, scanID, log.WithComponent("nats"))
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}

		sinks = append(sinks, ns)
	}

	switch len(sinks) {
	case 0:
		return nil, output.ErrNoSinks
	case 1:
		return sinks[0], nil
	}

	return sinks, nil
}
