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

package scan

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

const (
	defaultPollTimeout   = 100 * time.Millisecond
	defaultCaptureBuffer = 64 << 20
)

// CaptureOptions configures a capture handle.
type CaptureOptions struct {
	SnapLen int
	// Filter is a pcap filter expression.
	Filter string
	// PollTimeout bounds how long ReadPacket blocks.
	PollTimeout time.Duration
	// BufferSize is the kernel capture buffer in bytes.
	BufferSize int
}

// Capture reads response frames from one interface.
type Capture struct {
	handle *pcap.Handle
}

// OpenCapture activates a non-promiscuous capture on device. Failures are
// ResourceFatal.
func OpenCapture(device string, opts CaptureOptions) (*Capture, error) {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultCaptureBuffer
	}

	inactive, err := pcap.NewInactiveHandle(device)
	if err != nil {
		return nil, scanerr.Resource("capture "+device, err)
	}
	defer inactive.CleanUp()

	for _, step := range []struct {
		what string
		err  error
	}{
		{"snaplen", inactive.SetSnapLen(opts.SnapLen)},
		{"promisc", inactive.SetPromisc(false)},
		{"timeout", inactive.SetTimeout(opts.PollTimeout)},
		{"buffer", inactive.SetBufferSize(opts.BufferSize)},
	} {
		if step.err != nil {
			return nil, scanerr.Resource(fmt.Sprintf("capture %s: %s", device, step.what), step.err)
		}
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, scanerr.Resource("activate capture "+device, err)
	}

	if opts.Filter != "" {
		if err := handle.SetBPFFilter(opts.Filter); err != nil {
			handle.Close()
			return nil, scanerr.Resource(fmt.Sprintf("capture filter %q", opts.Filter), err)
		}
	}

	// Not every platform can restrict direction.
	_ = handle.SetDirection(pcap.DirectionIn)

	return &Capture{handle: handle}, nil
}

// ReadPacket returns the next frame. The slice is only valid until the next
// call. An expired poll returns ErrCaptureTimeout.
func (c *Capture) ReadPacket() ([]byte, error) {
	data, _, err := c.handle.ZeroCopyReadPacketData()

	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, pcap.NextErrorTimeoutExpired):
		return nil, ErrCaptureTimeout
	case errors.Is(err, io.EOF), errors.Is(err, pcap.NextErrorNoMorePackets):
		return nil, ErrCaptureClosed
	}

	return nil, err
}

// LinkType is the datalink of captured frames.
func (c *Capture) LinkType() layers.LinkType { return c.handle.LinkType() }

// Drops returns frames dropped by the kernel and the interface since open.
func (c *Capture) Drops() (uint64, error) {
	st, err := c.handle.Stats()
	if err != nil {
		return 0, err
	}

	return uint64(st.PacketsDropped) + uint64(st.PacketsIfDropped), nil
}

// Close releases the handle.
func (c *Capture) Close() { c.handle.Close() }
