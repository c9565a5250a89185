package rtp

import (
	"io"
	"time"

	errors "golang.org/x/xerrors"

	"github.com/lanikai/audionet/internal/packet"
)

const (
	rtcpHeaderSize = 4

	// From RFC 3550 Section 6.
	rtcpSenderReportType      = 200
	rtcpSourceDescriptionType = 202
	rtcpGoodbyeType           = 203

	// SDES item types, RFC 3550 Section 6.5.
	sdesEnd   = 0
	sdesCNAME = 1

	// Large enough for SR + SDES with a maximal CNAME + BYE.
	rtcpBufferSize = 512
)

// RTP Control Protocol (RTCP), as defined in RFC 3550 Section 6. A sender only
// ever emits Sender Reports, Source Descriptions and Goodbyes.

// RTCP packets come in several different types. While they differ structurally,
// they all share a common 4-byte prefix header (where the meaning of count
// depends on packet type). See https://tools.ietf.org/html/rfc3550#section-6.
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|V=2|P|  count  |  packet type  |             length            |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type rtcpHeader struct {
	padding    bool
	count      int
	packetType byte
	length     int // length of RTCP packet in 32-bit words minus one
}

func (h *rtcpHeader) writeTo(w *packet.Writer) error {
	if w.Available() < 4*(h.length+1) {
		return io.ErrShortBuffer
	}
	w.WriteByte(joinByte215(rtpVersion, h.padding, byte(h.count)))
	w.WriteByte(h.packetType)
	w.WriteUint16(uint16(h.length))
	return nil
}

type rtcpPacket interface {
	writeTo(w *packet.Writer) error
}

// Sender information from https://tools.ietf.org/html/rfc3550#section-6.4.1.
// Reception report blocks are never included: this side receives nothing.
type rtcpSenderReport struct {
	ssrc         uint32
	ntpTime      uint64
	rtpTime      uint32
	packetCount  uint32
	payloadBytes uint32
}

func (p *rtcpSenderReport) writeTo(w *packet.Writer) error {
	h := rtcpHeader{
		packetType: rtcpSenderReportType,
		length:     6,
	}
	if err := h.writeTo(w); err != nil {
		return err
	}
	w.WriteUint32(p.ssrc)
	w.WriteUint64(p.ntpTime)
	w.WriteUint32(p.rtpTime)
	w.WriteUint32(p.packetCount)
	w.WriteUint32(p.payloadBytes)
	return nil
}

// A Source Description with a single chunk holding the CNAME item.
type rtcpSourceDescription struct {
	ssrc  uint32
	cname string
}

func (p *rtcpSourceDescription) writeTo(w *packet.Writer) error {
	if len(p.cname) > 255 {
		return errors.Errorf("CNAME too long: %d bytes", len(p.cname))
	}
	// SSRC, CNAME item (type, length, text), then at least one null octet
	// terminating the item list, padded to a 32-bit boundary.
	chunk := 4 + 2 + len(p.cname) + 1
	words := (chunk + 3) / 4
	h := rtcpHeader{
		count:      1,
		packetType: rtcpSourceDescriptionType,
		length:     words,
	}
	if err := h.writeTo(w); err != nil {
		return err
	}
	w.WriteUint32(p.ssrc)
	w.WriteByte(sdesCNAME)
	w.WriteByte(byte(len(p.cname)))
	w.WriteString(p.cname)
	w.WriteByte(sdesEnd)
	w.Align(4)
	return nil
}

type rtcpGoodbye struct {
	ssrc uint32
}

func (p *rtcpGoodbye) writeTo(w *packet.Writer) error {
	h := rtcpHeader{
		count:      1,
		packetType: rtcpGoodbyeType,
		length:     1,
	}
	if err := h.writeTo(w); err != nil {
		return err
	}
	w.WriteUint32(p.ssrc)
	return nil
}

// A compound RTCP packet consists of one or more RTCP packets, concatenated
// into a single datagram. See https://tools.ietf.org/html/rfc3550#section-6.1.
type rtcpCompoundPacket struct {
	packets []rtcpPacket
}

func (cp *rtcpCompoundPacket) writeTo(w *packet.Writer) error {
	for _, p := range cp.packets {
		if err := p.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// Seconds between the NTP epoch (1900) and the Unix epoch (1970).
const ntpEpochOffset = 2208988800

// Convert wall clock time to the 64-bit NTP timestamp format used in Sender
// Reports: 32 bits of seconds and 32 bits of fraction.
func ntpTime(t time.Time) uint64 {
	secs := uint64(t.Unix() + ntpEpochOffset)
	frac := uint64(t.Nanosecond()) << 32 / 1e9
	return secs<<32 | frac
}
