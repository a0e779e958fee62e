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
	"github.com/google/gopacket/layers"

	"github.com/carverauto/cyclescan/pkg/scan"
)

// Transmitter puts complete frames on the wire. Each sender shard owns one.
type Transmitter interface {
	Send(frames [][]byte) (int, error)
	Close() error
}

// Capture yields captured frames. Each receiver owns one.
type Capture interface {
	// ReadPacket returns scan.ErrCaptureTimeout when a poll expires and
	// scan.ErrCaptureClosed once the handle is gone.
	ReadPacket() ([]byte, error)
	LinkType() layers.LinkType
	// Drops is the cumulative number of frames the kernel dropped.
	Drops() (uint64, error)
	Close()
}

// Transport opens the packet I/O of a scan.
type Transport interface {
	Resolve(opts scan.ResolveOptions) (*scan.Interface, error)
	OpenSender(iface *scan.Interface, opts scan.SenderOptions) (Transmitter, error)
	OpenCapture(iface *scan.Interface, opts scan.CaptureOptions) (Capture, error)
}

// RawTransport is the AF_PACKET and pcap transport.
type RawTransport struct{}

func (RawTransport) Resolve(opts scan.ResolveOptions) (*scan.Interface, error) {
	return scan.Resolve(opts)
}

func (RawTransport) OpenSender(iface *scan.Interface, opts scan.SenderOptions) (Transmitter, error) {
	return scan.NewRawSender(iface, opts)
}

func (RawTransport) OpenCapture(iface *scan.Interface, opts scan.CaptureOptions) (Capture, error) {
	return scan.OpenCapture(iface.Name, opts)
}

var (
	_ Transport   = RawTransport{}
	_ Transmitter = (*scan.RawSender)(nil)
	_ Capture     = (*scan.Capture)(nil)
)
