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

// Package output writes scan records and the end-of-scan summary.
package output

//go:generate mockgen -destination=mock_sink.go -package=output github.com/carverauto/cyclescan/pkg/output Sink

import "errors"

var (
	ErrNoSinks   = errors.New("no output sinks configured")
	ErrSinkClose = errors.New("sink already closed")
)

// Sink appends records composed of string fields. Field separators and line
// endings are the sink's concern.
type Sink interface {
	WriteRecord(fields []string) error
	Close() error
}

// Tee fans each record out to several sinks.
type Tee []Sink

// WriteRecord writes to every sink, returning the first error.
func (t Tee) WriteRecord(fields []string) error {
	var first error

	for _, s := range t {
		if err := s.WriteRecord(fields); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Close closes every sink.
func (t Tee) Close() error {
	errs := make([]error, 0, len(t))

	for _, s := range t {
		errs = append(errs, s.Close())
	}

	return errors.Join(errs...)
}

// Discard drops records.
type Discard struct{}

// WriteRecord does nothing.
func (Discard) WriteRecord([]string) error { return nil }

// Close does nothing.
func (Discard) Close() error { return nil }
