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

//go:build linux && (amd64 || arm64 || 386)

package scan

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

const defaultSendBatch = 64

// SenderOptions configures a raw sender.
type SenderOptions struct {
	// Batch is the number of frames per sendmmsg call.
	Batch int
	IPv6  bool
}

// RawSender writes complete frames to an AF_PACKET socket in sendmmsg
// batches. It is owned by one sender goroutine.
type RawSender struct {
	fd    int
	mtu   int
	link  int
	msgs  []mmsghdr
	iovs  []unix.Iovec
	batch int
}

// NewRawSender opens a send-only packet socket on iface. Ethernet links take
// frames with their link header; other links take bare IP packets. Failures
// are ResourceFatal.
func NewRawSender(iface *Interface, opts SenderOptions) (*RawSender, error) {
	if opts.Batch <= 0 {
		opts.Batch = defaultSendBatch
	}

	sotype, proto := unix.SOCK_RAW, 0
	if !iface.Ethernet {
		sotype, proto = unix.SOCK_DGRAM, unix.ETH_P_IP
		if opts.IPv6 {
			proto = unix.ETH_P_IPV6
		}
	}

	fd, err := unix.Socket(unix.AF_PACKET, sotype|unix.SOCK_CLOEXEC, int(htons(uint16(proto))))
	if err != nil {
		return nil, scanerr.Resource("raw socket", err)
	}

	if err := attachDropAll(fd); err != nil {
		_ = unix.Close(fd)
		return nil, scanerr.Resource("attach send filter", err)
	}

	sa := &unix.SockaddrLinklayer{Protocol: htons(uint16(proto)), Ifindex: iface.Index}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, scanerr.Resource("bind raw socket to "+iface.Name, err)
	}

	return &RawSender{
		fd:    fd,
		mtu:   iface.MTU,
		link:  iface.LinkHeaderLen(),
		msgs:  make([]mmsghdr, opts.Batch),
		iovs:  make([]unix.Iovec, opts.Batch),
		batch: opts.Batch,
	}, nil
}

// dropAllFilter rejects every inbound packet so the send socket never
// queues traffic.
func dropAllFilter() ([]unix.SockFilter, error) {
	raw, err := bpf.Assemble([]bpf.Instruction{bpf.RetConstant{Val: 0}})
	if err != nil {
		return nil, err
	}

	out := make([]unix.SockFilter, len(raw))
	for i, r := range raw {
		out[i] = unix.SockFilter{Code: r.Op, Jt: r.Jt, Jf: r.Jf, K: r.K}
	}

	return out, nil
}

func attachDropAll(fd int) error {
	filter, err := dropAllFilter()
	if err != nil {
		return err
	}

	prog := unix.SockFprog{Len: uint16(len(filter)), Filter: &filter[0]}

	return unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &prog)
}

// Send transmits frames, returning how many the kernel accepted. A short
// count comes with the error that stopped the batch.
func (s *RawSender) Send(frames [][]byte) (int, error) {
	sent := 0

	for sent < len(frames) {
		chunk := frames[sent:]
		if len(chunk) > s.batch {
			chunk = chunk[:s.batch]
		}

		for i, f := range chunk {
			if s.mtu > 0 && len(f)-s.link > s.mtu {
				return sent, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(f))
			}

			s.iovs[i].Base = &f[0]
			s.iovs[i].SetLen(len(f))
			s.msgs[i].Hdr = unix.Msghdr{Iov: &s.iovs[i]}
			s.msgs[i].Hdr.SetIovlen(1)
		}

		n, err := sendmmsg(s.fd, s.msgs[:len(chunk)], 0)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}

			return sent, err
		}

		sent += n
	}

	return sent, nil
}

// Close closes the socket.
func (s *RawSender) Close() error { return unix.Close(s.fd) }

func sendmmsg(fd int, msgvec []mmsghdr, flags int) (int, error) {
	var p unsafe.Pointer
	if len(msgvec) > 0 {
		p = unsafe.Pointer(&msgvec[0])
	}

	r1, _, errno := unix.Syscall6(unix.SYS_SENDMMSG, uintptr(fd), uintptr(p),
		uintptr(len(msgvec)), uintptr(flags), 0, 0)
	if errno != 0 {
		return int(r1), errno
	}

	return int(r1), nil
}

func htons(v uint16) uint16 { return v<<8 | v>>8 }
