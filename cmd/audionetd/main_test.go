package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/nareix/joy4/av"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/audionet"
	"github.com/lanikai/audionet/internal/control"
)

func TestParseEndpoint(t *testing.T) {
	e, err := parseEndpoint("10.0.0.2:5004")
	require.NoError(t, err)
	assert.Equal(t, audionet.Endpoint{Address: "10.0.0.2", Port: 5004}, e)

	e, err = parseEndpoint("[::1]:9998")
	require.NoError(t, err)
	assert.Equal(t, "::1", e.Address)

	for _, bad := range []string{"10.0.0.2", "10.0.0.2:0", "10.0.0.2:70000", "host:port"} {
		_, err := parseEndpoint(bad)
		assert.Error(t, err, bad)
	}
}

func TestPCMSource(t *testing.T) {
	// One full frame of mono audio plus three bytes.
	data := make([]byte, 2*frameSamples+3)
	binary.LittleEndian.PutUint16(data, 0x1234)
	src := newPCMSource(bytes.NewReader(data), 1, 8000)

	frame, err := src.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, av.S16, frame.SampleFormat)
	assert.Equal(t, frameSamples, frame.SampleCount)
	assert.Equal(t, []byte{0x34, 0x12}, frame.Data[0][:2])

	frame, err = src.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, frame.SampleCount)

	_, err = src.ReadFrame(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestToneSource(t *testing.T) {
	src := newToneSource(1000, 2, 48000)
	frame, err := src.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, av.CH_STEREO, frame.ChannelLayout)
	assert.Len(t, frame.Data[0], 4*frameSamples)

	// Both channels carry the same sample, and the wave starts at zero.
	left := int16(binary.LittleEndian.Uint16(frame.Data[0][8:]))
	right := int16(binary.LittleEndian.Uint16(frame.Data[0][10:]))
	assert.Equal(t, left, right)
	assert.NotZero(t, left)
	assert.Equal(t, []byte{0, 0, 0, 0}, frame.Data[0][:4])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.ReadFrame(ctx)
	assert.Error(t, err)
}

func TestStream(t *testing.T) {
	rx, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer rx.Close()
	port := uint16(rx.LocalAddr().(*net.UDPAddr).Port)

	sink, err := audionet.New(audionet.Config{Address: "127.0.0.1", Port: port})
	require.NoError(t, err)
	defer sink.Close()

	// 480 samples fill one 512-byte block and leave 448 bytes buffered.
	data := make([]byte, 2*frameSamples)
	ctrl := control.NewServer(4)
	require.NoError(t, ctrl.Submit(control.Command{Op: "set", Address: "127.0.0.1", Port: port}))
	require.NoError(t, stream(context.Background(), newPCMSource(bytes.NewReader(data), 1, 8000), sink, ctrl))

	assert.Equal(t, 2*frameSamples-audionet.DefaultBlockSize, sink.Buffered())

	buf := make([]byte, 1024)
	rx.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := rx.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, audionet.DefaultBlockSize, n)
}
