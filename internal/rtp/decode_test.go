package rtp

// Decoders for the packets this package sends, used to check the wire format.

import (
	"encoding/binary"
	"fmt"

	errors "golang.org/x/xerrors"

	"github.com/lanikai/audionet/internal/packet"
)

type errBadVersion byte

func (e errBadVersion) Error() string {
	return fmt.Sprintf("invalid RTP version: %d", byte(e))
}

func splitByte2114(v byte) (a2 byte, b1 bool, c1 bool, d4 byte) {
	a2 = v >> 6
	b1 = ((v >> 5) & 0x01) == 1
	c1 = ((v >> 4) & 0x01) == 1
	d4 = v & 0x0f
	return
}

func splitByte215(v byte) (a2 byte, b1 bool, c5 byte) {
	a2 = v >> 6
	b1 = ((v >> 5) & 0x01) == 1
	c5 = v & 0x1f
	return
}

func splitByte17(v byte) (a1 bool, b7 byte) {
	a1 = (v >> 7) == 1
	b7 = v & 0x7f
	return
}

func (h *rtpHeader) readFrom(r *packet.Reader) error {
	if err := r.CheckRemaining(rtpHeaderSize); err != nil {
		return errors.Errorf("short buffer: %w", err)
	}

	var version, csrcCount byte
	version, h.padding, h.extension, csrcCount = splitByte2114(r.ReadByte())
	if version != rtpVersion {
		return errBadVersion(version)
	}
	if err := r.CheckRemaining(4 * int(csrcCount)); err != nil {
		return errors.Errorf("short buffer: %w", err)
	}
	h.marker, h.payloadType = splitByte17(r.ReadByte())
	h.sequence = r.ReadUint16()
	h.timestamp = r.ReadUint32()
	h.ssrc = r.ReadUint32()
	h.csrc = nil
	for i := 0; i < int(csrcCount); i++ {
		h.csrc = append(h.csrc, r.ReadUint32())
	}

	return nil
}

func (h *rtcpHeader) readFrom(r *packet.Reader) error {
	if err := r.CheckRemaining(rtcpHeaderSize); err != nil {
		return errors.Errorf("short RTCP header: %w", err)
	}
	var version, count byte
	version, h.padding, count = splitByte215(r.ReadByte())
	if version != rtpVersion {
		return errBadVersion(version)
	}
	h.count = int(count)
	h.packetType = r.ReadByte()
	h.length = int(r.ReadUint16())

	return nil
}

// Demultiplex RTP/RTCP. See https://tools.ietf.org/html/rfc5761#section-4.
func identifyPacket(buf []byte) (rtcp bool, ssrc uint32, err error) {
	if len(buf) < 8 {
		err = fmt.Errorf("short RTP/RTCP packet: %02x", buf)
		return
	}
	packetType := buf[1]
	if 192 <= packetType && packetType <= 223 {
		rtcp = true
		ssrc = binary.BigEndian.Uint32(buf[4:8])
	} else {
		if len(buf) < 12 {
			err = fmt.Errorf("short RTP packet: %02x", buf)
			return
		}
		rtcp = false
		ssrc = binary.BigEndian.Uint32(buf[8:12])
	}
	return
}
