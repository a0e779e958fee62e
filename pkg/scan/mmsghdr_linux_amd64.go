//go:build linux && amd64

package scan

import "golang.org/x/sys/unix"

// mmsghdr matches struct mmsghdr on 64-bit systems.
type mmsghdr struct {
	Hdr    unix.Msghdr
	MsgLen uint32
	_      uint32 // sizeof must match C's struct mmsghdr
}
