package rtp

// Convenience functions for dealing with RTP packet formats. For example, the
// first byte of the RTP packet header:
//    0 1 2 3 4 5 6 7
//   +-+-+-+-+-+-+-+-+
//	 |V=2|P|X|  CC   |
//	 +-+-+-+-+-+-+-+-+
// is put together with
//    header[0] = joinByte2114(V, P, X, CC)

// 0 1 2 3 4 5 6 7
// a a b c d d d d
func joinByte2114(a2 byte, b1 bool, c1 bool, d4 byte) byte {
	v := (a2 << 6) | (d4 & 0x0f)
	if b1 {
		v |= 0x20
	}
	if c1 {
		v |= 0x10
	}
	return v
}

// Join the first 2 bits, the next bit, and the remaining 5 bits of a byte.
// Used for the first byte of RTCP packets (V, P, count).
func joinByte215(a2 byte, b1 bool, c5 byte) byte {
	v := (a2 << 6) | (c5 & 0x1f)
	if b1 {
		v |= 0x20
	}
	return v
}

// Join the first bit and the remaining 7 bits, e.g. M and PT in the second
// byte of the RTP header.
func joinByte17(b1 bool, b7 byte) byte {
	v := b7 & 0x7f
	if b1 {
		v |= 0x80
	}
	return v
}
