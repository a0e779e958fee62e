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

package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")

	l, err := New(&Config{Level: "info", Output: OutputStderr, File: path})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	l.Debug().Msg("hidden")
	l.Info().Uint64("sent", 42).Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, `"message":"hello"`) || !strings.Contains(out, `"sent":42`) {
		t.Errorf("Expected message in log file, got %q", out)
	}

	if strings.Contains(out, "hidden") {
		t.Error("Debug line written at info level")
	}
}

func TestDebugOverridesLevel(t *testing.T) {
	level, err := ParseLevel(&Config{Level: "warn", Debug: true})
	if err != nil || level != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v, %v", level, err)
	}

	level, err = ParseLevel(&Config{})
	if err != nil || level != zerolog.InfoLevel {
		t.Errorf("Expected info level by default, got %v, %v", level, err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}

	if _, err := New(&Config{Output: "syslog"}); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("Expected ErrUnknownOutput, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{}, true},
		{"console", Config{Output: OutputConsole, Level: "debug"}, true},
		{"bad output", Config{Output: "file"}, false},
		{"bad level", Config{Level: "loud"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	Wrap(zerolog.New(&buf)).WithComponent("sender").Info().Int("shard", 3).Msg("started")

	out := buf.String()
	if !strings.Contains(out, `"component":"sender"`) || !strings.Contains(out, `"shard":3`) {
		t.Errorf("Expected component and shard fields, got %q", out)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_OUTPUT", "")
	t.Setenv("DEBUG", "yes")

	config := DefaultConfig()

	if config.Level != "info" || config.Output != OutputStderr {
		t.Errorf("Unexpected defaults: %+v", config)
	}

	if !config.Debug {
		t.Error("DEBUG=yes should enable debug")
	}
}

func TestTestLoggerDiscards(t *testing.T) {
	l := NewTestLogger()
	l.Error().Msg("dropped")
	l.WithComponent("x").Info().Msg("dropped")
}
