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

//go:build !linux || !(amd64 || arm64 || 386)

package scan

import "github.com/carverauto/cyclescan/pkg/scanerr"

// SenderOptions configures a raw sender.
type SenderOptions struct {
	Batch int
	IPv6  bool
}

// RawSender is unavailable on this platform.
type RawSender struct{}

// NewRawSender always fails here.
func NewRawSender(*Interface, SenderOptions) (*RawSender, error) {
	return nil, scanerr.Resource("raw socket", ErrNotLinux)
}

// Send is never reached.
func (*RawSender) Send([][]byte) (int, error) { return 0, ErrNotLinux }

// Close does nothing.
func (*RawSender) Close() error { return nil }
