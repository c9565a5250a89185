package rtp

import (
	errors "golang.org/x/xerrors"

	"github.com/lanikai/audionet/internal/packet"
)

// RTP Data Transfer Protocol, as defined in RFC 3550 Section 5.

// An RTP packet consists of a fixed 12-byte header, zero or more 32-bit CSRC
// identifiers, followed by the payload itself.
// See https://tools.ietf.org/html/rfc3550#section-5.1
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|V=2|P|X|  CC   |M|     PT      |       sequence number         |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                           timestamp                           |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|           synchronization source (SSRC) identifier            |
//	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
//	|            contributing source (CSRC) identifiers             |
//	|                             ....                              |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type rtpHeader struct {
	padding     bool // unused
	extension   bool // unused
	marker      bool
	payloadType byte
	sequence    uint16
	timestamp   uint32
	ssrc        uint32
	csrc        []uint32 // unused
}

const (
	rtpHeaderSize = 12
)

func (h *rtpHeader) writeTo(w *packet.Writer) {
	w.WriteByte(joinByte2114(rtpVersion, h.padding, h.extension, byte(len(h.csrc))))
	w.WriteByte(joinByte17(h.marker, h.payloadType))
	w.WriteUint16(h.sequence)
	w.WriteUint32(h.timestamp)
	w.WriteUint32(h.ssrc)
	for i := range h.csrc {
		w.WriteUint32(h.csrc[i])
	}
}

// rtpWriter maintains the sender state of one RTP source: SSRC, sequence
// numbering, media clock, and transmission statistics.
type rtpWriter struct {
	ssrc        uint32
	payloadType byte

	// Initial sequence number. The current sequence number is computed from
	// sequenceStart and count.
	sequenceStart uint16

	// Media clock at the start of the next packet, in sample frames.
	timestamp uint32

	// Number of RTP packets sent.
	count uint64

	// Total number of payload bytes sent.
	totalBytes uint64

	// Buffer used for serializing packets.
	buf *packet.Writer
}

func newRTPWriter(ssrc uint32, payloadType byte, sequenceStart uint16, timestamp uint32, maxPacketSize int) *rtpWriter {
	return &rtpWriter{
		ssrc:          ssrc,
		payloadType:   payloadType,
		sequenceStart: sequenceStart,
		timestamp:     timestamp,
		buf:           packet.NewWriterSize(maxPacketSize),
	}
}

// Serialize the next RTP packet, carrying the given payload, which spans
// frames sample frames of media time. The returned slice is only valid until
// the next call. The marker bit is set on the first packet of the stream.
func (w *rtpWriter) nextPacket(payload []byte, frames uint32) ([]byte, error) {
	p := w.buf
	p.Reset()

	hdr := rtpHeader{
		marker:      w.count == 0,
		payloadType: w.payloadType,
		sequence:    w.sequenceNumber(),
		timestamp:   w.timestamp,
		ssrc:        w.ssrc,
	}
	hdr.writeTo(p)

	if err := p.WriteSlice(payload); err != nil {
		return nil, errors.Errorf("RTP payload: %w", err)
	}

	w.count++
	w.totalBytes += uint64(len(payload))
	w.timestamp += frames

	return p.Bytes(), nil
}

// Compute the RTP packet index, also known as the extended sequence number.
// Equivalent to rolloverCounter*2^16 + sequenceNumber (i.e. ROC || SEQ).
func (w *rtpWriter) index() uint64 {
	return w.count + uint64(w.sequenceStart)
}

// Compute the current sequence number.
func (w *rtpWriter) sequenceNumber() uint16 {
	return uint16(w.index())
}
