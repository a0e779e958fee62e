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

package output

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"sync"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

// Stdout is the path that selects standard output.
const Stdout = "-"

// CSVSink writes comma-separated records to a file or stdout.
type CSVSink struct {
	mu     sync.Mutex
	w      *csv.Writer
	buf    *bufio.Writer
	closer io.Closer
	closed bool
}

// NewCSVSink opens path (or stdout for "-") and writes header if non-empty.
func NewCSVSink(path string, header []string) (*CSVSink, error) {
	var (
		f      io.Writer = os.Stdout
		closer io.Closer
	)

	if path != Stdout && path != "" {
		file, err := os.Create(path)
		if err != nil {
			return nil, scanerr.Resource("open output file", err)
		}

		f, closer = file, file
	}

	s := NewCSVWriter(f)
	s.closer = closer

	if len(header) > 0 {
		if err := s.WriteRecord(header); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewCSVWriter wraps an arbitrary writer.
func NewCSVWriter(w io.Writer) *CSVSink {
	buf := bufio.NewWriterSize(w, 64*1024)
	return &CSVSink{w: csv.NewWriter(buf), buf: buf}
}

// WriteRecord appends one line.
func (s *CSVSink) WriteRecord(fields []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClose
	}

	return s.w.Write(fields)
}

// Flush pushes buffered records to the underlying writer.
func (s *CSVSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flush()
}

func (s *CSVSink) flush() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}

	return s.buf.Flush()
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	err := s.flush()

	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
