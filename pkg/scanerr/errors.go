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

// Package scanerr defines the error kinds shared across the scanner.
//
// ConfigFatal and ResourceFatal abort a scan at startup. RoundTimeout ends a
// target-generation round early; partial results are kept. Dropped probes and
// capture overruns are counters, not errors.
package scanerr

import (
	"errors"
	"fmt"
)

var (
	ErrConfigFatal   = errors.New("config fatal")
	ErrResourceFatal = errors.New("resource fatal")
	ErrRoundTimeout  = errors.New("round timeout")
)

// Config wraps a configuration problem as ConfigFatal.
func Config(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfigFatal, fmt.Sprintf(format, args...))
}

// Resource wraps a failure to acquire an OS resource as ResourceFatal.
func Resource(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrResourceFatal, what, err)
}

// IsFatal reports whether err should abort the process.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfigFatal) || errors.Is(err, ErrResourceFatal)
}
