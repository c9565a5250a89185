package audionet

import (
	"encoding/binary"

	"github.com/nareix/joy4/av"
	"github.com/pkg/errors"
)

// WriteFrame writes every sample of a decoded 16-bit audio frame, interleaving
// planar data. Other sample formats are rejected.
func (s *Sink) WriteFrame(frame av.AudioFrame) error {
	channels := frame.ChannelLayout.Count()
	if channels == 0 {
		channels = 1
	}

	switch frame.SampleFormat {
	case av.S16:
		if len(frame.Data) == 0 || len(frame.Data[0]) < 2*channels*frame.SampleCount {
			return errShortFrame
		}
		data := frame.Data[0]
		for i := 0; i < channels*frame.SampleCount; i++ {
			s.Write(int16(binary.LittleEndian.Uint16(data[2*i:])))
		}

	case av.S16P:
		if len(frame.Data) < channels {
			return errShortFrame
		}
		for c := 0; c < channels; c++ {
			if len(frame.Data[c]) < 2*frame.SampleCount {
				return errShortFrame
			}
		}
		for i := 0; i < frame.SampleCount; i++ {
			for c := 0; c < channels; c++ {
				s.Write(int16(binary.LittleEndian.Uint16(frame.Data[c][2*i:])))
			}
		}

	default:
		return errors.Wrapf(errUnsupportedFormat, "%v", frame.SampleFormat)
	}
	return nil
}
