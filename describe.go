package audionet

import (
	"net"
	"time"

	"github.com/lanikai/audionet/internal/sdp"
)

// SessionDescription returns an SDP document that lets a receiver at dest
// decode the RealTime stream, e.g. with `ffplay -protocol_whitelist
// file,udp,rtp stream.sdp`.
func (s *Sink) SessionDescription(dest Endpoint) string {
	opts := s.transport.TransportOptions

	channels := 1
	if opts.Stereo {
		channels = 2
	}

	var source string
	if a, ok := s.conn.LocalAddr().(*net.UDPAddr); ok && a.IP != nil && !a.IP.IsUnspecified() {
		source = a.IP.String()
	}

	return sdp.Describe(sdp.Audio{
		Address:     dest.Address,
		Port:        dest.Port,
		Source:      source,
		PayloadType: opts.PayloadType,
		SampleRate:  opts.SampleRate,
		Channels:    channels,
		PacketTime:  int(opts.PacketDuration / time.Millisecond),
		SSRC:        opts.SSRC,
		CNAME:       opts.CNAME,
	}).String()
}
