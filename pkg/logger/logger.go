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

// Package logger provides JSON structured logging using zerolog. Scan
// components never reach for a global logger; they are handed a Logger.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var ErrUnknownOutput = errors.New("unknown log output")

// Logger is the injected logger of a scan component.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	WithComponent(component string) Logger
}

// Zerolog adapts a zerolog.Logger to Logger.
type Zerolog struct {
	zl zerolog.Logger
}

// Wrap adapts zl.
func Wrap(zl zerolog.Logger) *Zerolog {
	return &Zerolog{zl: zl}
}

// New builds a timestamped logger from config. A nil config takes
// DefaultConfig.
func New(config *Config) (*Zerolog, error) {
	if config == nil {
		config = DefaultConfig()
	}

	output, err := Writer(config)
	if err != nil {
		return nil, err
	}

	level, err := ParseLevel(config)
	if err != nil {
		return nil, err
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	return Wrap(zerolog.New(output).Level(level).With().Timestamp().Logger()), nil
}

func (l *Zerolog) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Zerolog) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Zerolog) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Zerolog) Error() *zerolog.Event { return l.zl.Error() }

func (l *Zerolog) WithComponent(component string) Logger {
	return Wrap(l.zl.With().Str("component", component).Logger())
}

// Zerolog returns the underlying logger.
func (l *Zerolog) Zerolog() zerolog.Logger { return l.zl }

// Writer opens the configured destination. Records may go to stdout, so
// logs default to stderr. File, when set, receives a copy of every line.
func Writer(config *Config) (io.Writer, error) {
	var output io.Writer

	switch config.Output {
	case "", OutputStderr:
		output = os.Stderr
	case OutputStdout:
		output = os.Stdout
	case OutputConsole:
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, config.Output)
	}

	if config.File == "" {
		return output, nil
	}

	f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return zerolog.MultiLevelWriter(output, f), nil
}

// ParseLevel resolves the effective level; Debug wins over Level.
func ParseLevel(config *Config) (zerolog.Level, error) {
	if config.Debug {
		return zerolog.DebugLevel, nil
	}

	if config.Level == "" {
		return zerolog.InfoLevel, nil
	}

	return zerolog.ParseLevel(config.Level)
}

// NewTestLogger creates a no-op logger for testing that discards all output.
func NewTestLogger() Logger {
	return Wrap(zerolog.Nop())
}

var _ Logger = (*Zerolog)(nil)
