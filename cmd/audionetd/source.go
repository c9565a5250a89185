package main

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/nareix/joy4/av"
)

// Samples per channel in each frame handed to the sink.
const frameSamples = 480

// A source produces interleaved S16 audio frames. ReadFrame returns io.EOF
// when the source is exhausted.
type source interface {
	ReadFrame(ctx context.Context) (av.AudioFrame, error)
}

func layout(channels int) av.ChannelLayout {
	if channels == 2 {
		return av.CH_STEREO
	}
	return av.CH_MONO
}

// pcmSource reads S16LE PCM from a stream, e.g. standard input.
type pcmSource struct {
	r        io.Reader
	channels int
	rate     int
	buf      []byte
}

func newPCMSource(r io.Reader, channels, rate int) *pcmSource {
	return &pcmSource{
		r:        r,
		channels: channels,
		rate:     rate,
		buf:      make([]byte, 2*channels*frameSamples),
	}
}

func (s *pcmSource) ReadFrame(ctx context.Context) (av.AudioFrame, error) {
	if err := ctx.Err(); err != nil {
		return av.AudioFrame{}, err
	}

	n, err := io.ReadFull(s.r, s.buf)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	// Drop a trailing partial frame.
	count := n / (2 * s.channels)
	if count == 0 {
		if err == nil {
			err = io.EOF
		}
		return av.AudioFrame{}, err
	}

	return av.AudioFrame{
		SampleFormat:  av.S16,
		ChannelLayout: layout(s.channels),
		SampleCount:   count,
		SampleRate:    s.rate,
		Data:          [][]byte{s.buf[:2*s.channels*count]},
	}, nil
}

// toneSource generates a sine wave in real time.
type toneSource struct {
	freq     float64
	channels int
	rate     int
	phase    float64
	ticker   *time.Ticker
	buf      []byte
}

func newToneSource(freq float64, channels, rate int) *toneSource {
	period := time.Duration(frameSamples) * time.Second / time.Duration(rate)
	return &toneSource{
		freq:     freq,
		channels: channels,
		rate:     rate,
		ticker:   time.NewTicker(period),
		buf:      make([]byte, 2*channels*frameSamples),
	}
}

// Peak amplitude of the tone, about -6 dBFS.
const toneAmplitude = 16384

func (s *toneSource) ReadFrame(ctx context.Context) (av.AudioFrame, error) {
	select {
	case <-s.ticker.C:
	case <-ctx.Done():
		s.ticker.Stop()
		return av.AudioFrame{}, ctx.Err()
	}

	s.fill()
	return av.AudioFrame{
		SampleFormat:  av.S16,
		ChannelLayout: layout(s.channels),
		SampleCount:   frameSamples,
		SampleRate:    s.rate,
		Data:          [][]byte{s.buf},
	}, nil
}

func (s *toneSource) fill() {
	step := 2 * math.Pi * s.freq / float64(s.rate)
	for i := 0; i < frameSamples; i++ {
		v := uint16(int16(toneAmplitude * math.Sin(s.phase)))
		for c := 0; c < s.channels; c++ {
			binary.LittleEndian.PutUint16(s.buf[2*(i*s.channels+c):], v)
		}
		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}
