// Package fastsum computes Internet checksums for frames patched on the send path.
package fastsum

import "syscall"

// SumBE16 returns the (unfolded) one's-complement sum of 16-bit big-endian
// words over b. Odd last byte (if any) is treated as high-order byte.
func SumBE16(b []byte) uint32 {
	var sum uint32
	i := 0
	n := len(b)

	for n >= 8 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
		sum += uint32(b[i+2])<<8 | uint32(b[i+3])
		sum += uint32(b[i+4])<<8 | uint32(b[i+5])
		sum += uint32(b[i+6])<<8 | uint32(b[i+7])
		i += 8
		n -= 8
	}

	for n >= 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
		i += 2
		n -= 2
	}

	if n == 1 {
		sum += uint32(b[i]) << 8
	}

	return sum
}

// Fold32 folds a 32-bit partial sum to 16 bits and returns the 1's complement.
func Fold32(sum uint32) uint16 {
	s := sum
	s = (s & 0xFFFF) + (s >> 16)
	s = (s & 0xFFFF) + (s >> 16)
	// #nosec G115 - Truncation is intentional for checksum calculation
	return ^uint16(s)
}

// Checksum computes the Internet checksum (1's complement) over b.
func Checksum(b []byte) uint16 {
	return Fold32(SumBE16(b))
}

// IPv4Header computes the header checksum of an IPv4 header. The checksum
// field (bytes 10-11) must be zeroed by the caller.
func IPv4Header(hdr []byte) uint16 {
	return Checksum(hdr)
}

// TCPv4 computes the TCP checksum (IPv4 pseudo-header + TCP header + payload).
// The TCP header's checksum field must be zeroed by the caller.
func TCPv4(src, dst [4]byte, tcpHdr, payload []byte) uint16 {
	var sum uint32

	sum += uint32(src[0])<<8 | uint32(src[1])
	sum += uint32(src[2])<<8 | uint32(src[3])
	sum += uint32(dst[0])<<8 | uint32(dst[1])
	sum += uint32(dst[2])<<8 | uint32(dst[3])
	sum += uint32(syscall.IPPROTO_TCP)
	tcpLen := len(tcpHdr) + len(payload)
	// #nosec G115 - Truncation is intentional for checksum calculation
	sum += uint32(uint16(tcpLen))

	sum += SumBE16(tcpHdr)
	if len(payload) != 0 {
		sum += SumBE16(payload)
	}

	return Fold32(sum)
}

// PseudoV6 computes an upper-layer checksum over the IPv6 pseudo-header
// (RFC 8200 section 8.1) followed by the upper-layer segment. Used for TCP
// and ICMPv6 over IPv6. The segment's checksum field must be zeroed.
func PseudoV6(src, dst [16]byte, nextHeader uint8, segment []byte) uint16 {
	var sum uint32

	sum += SumBE16(src[:])
	sum += SumBE16(dst[:])

	n := uint32(len(segment)) // #nosec G115 - frames are bounded by the snap length
	sum += n >> 16
	sum += n & 0xFFFF
	sum += uint32(nextHeader)
	sum += SumBE16(segment)

	return Fold32(sum)
}
