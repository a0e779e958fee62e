//go:build linux && 386

package scan

import "golang.org/x/sys/unix"

// mmsghdr matches struct mmsghdr on 32-bit systems, where natural alignment
// needs no padding.
type mmsghdr struct {
	Hdr    unix.Msghdr
	MsgLen uint32
}
