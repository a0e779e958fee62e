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

// Package config loads scan configuration from a JSON file or the
// environment and validates it.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carverauto/cyclescan/pkg/logger"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

var (
	errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")
	errInvalidConfigPtr    = errors.New("config must be a non-nil pointer")
)

const (
	configSourceFile = "file"
	configSourceEnv  = "env"

	defaultEnvPrefix = "CYCLESCAN_"
)

// ConfigLoader fills dst from some source. path is only meaningful to
// file-backed loaders.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configs that can check themselves.
type Validator interface {
	Validate() error
}

// pathResolver is implemented by configs holding file paths that are
// relative to the config file.
type pathResolver interface {
	ResolvePaths(dir string)
}

// Config holds the configuration loading dependencies.
type Config struct {
	defaultLoader ConfigLoader
	logger        logger.Logger
}

// NewConfig initializes a new Config instance with a default file loader and logger.
// If logger is nil, creates a basic logger for config loading.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = createBasicLogger()
	}

	return &Config{
		defaultLoader: &FileConfigLoader{logger: log},
		logger:        log,
	}
}

// createBasicLogger logs config loading before the configured logger exists.
func createBasicLogger() logger.Logger {
	return logger.Wrap(zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger())
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate loads a configuration, resolves relative file paths against
// the config file's directory and validates it. Any failure is ConfigFatal.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	if err := c.Load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

// Load is LoadAndValidate without the validation, for callers that overlay
// more settings first.
func (c *Config) Load(ctx context.Context, path string, cfg interface{}) error {
	if cfg == nil {
		return fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, errInvalidConfigPtr)
	}

	source, err := c.loadWithSource(ctx, path, cfg)
	if err != nil {
		if errors.Is(err, scanerr.ErrConfigFatal) {
			return err
		}

		return fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, err)
	}

	if r, ok := cfg.(pathResolver); ok && source == configSourceFile && path != "" {
		r.ResolvePaths(filepath.Dir(path))
	}

	return nil
}

// loadWithSource picks the loader named by CONFIG_SOURCE and returns the
// source it used.
func (c *Config) loadWithSource(ctx context.Context, path string, cfg interface{}) (string, error) {
	source := strings.ToLower(os.Getenv("CONFIG_SOURCE"))

	var loader ConfigLoader

	switch source {
	case configSourceEnv:
		prefix := os.Getenv("CONFIG_ENV_PREFIX")
		if prefix == "" {
			prefix = defaultEnvPrefix
		}

		loader = NewEnvConfigLoader(c.logger, prefix)
	case configSourceFile, "":
		source = configSourceFile

		if path == "" {
			c.logger.Debug().Msg("No config file given, using defaults")
			return source, nil
		}

		loader = c.defaultLoader
	default:
		return source, fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errInvalidConfigSource, source, configSourceFile, configSourceEnv)
	}

	return source, loader.Load(ctx, path, cfg)
}
