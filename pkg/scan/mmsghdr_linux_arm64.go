//go:build linux && arm64

package scan

import "golang.org/x/sys/unix"

type mmsghdr struct {
	Hdr    unix.Msghdr
	MsgLen uint32
	_      uint32 // padding to match C struct alignment on arm64
}
