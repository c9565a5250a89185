package audionet

import (
	"bytes"
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/nareix/joy4/av"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/audionet/internal/loop"
)

type datagram struct {
	data []byte
	addr string
}

// fakeConn records datagrams instead of sending them.
type fakeConn struct {
	mu     sync.Mutex
	sent   []datagram
	closes int
}

func (c *fakeConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, datagram{append([]byte(nil), p...), addr.String()})
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) ReadFrom(p []byte) (int, net.Addr, error) { return 0, nil, net.ErrClosed }
func (c *fakeConn) LocalAddr() net.Addr                      { return &net.UDPAddr{} }
func (c *fakeConn) SetDeadline(t time.Time) error            { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error        { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error       { return nil }

func (c *fakeConn) to(addr string) []datagram {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []datagram
	for _, d := range c.sent {
		if d.addr == addr {
			out = append(out, d)
		}
	}
	return out
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

const defaultDest = "127.0.0.1:9998"

// RTP at 8 kHz with 10 ms packets: 80 samples per mono packet.
func newTestSink(t *testing.T, conn *fakeConn) *Sink {
	s, err := New(Config{
		Conn:           conn,
		SampleRate:     8000,
		PacketDuration: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	return s
}

func samplesOf(d datagram) []int16 {
	out := make([]int16, len(d.data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(d.data[2*i:]))
	}
	return out
}

func TestRawBlockSingleDatagram(t *testing.T) {
	conn := &fakeConn{}
	s, err := New(Config{Conn: conn, Stereo: false})
	require.NoError(t, err)
	assert.Equal(t, RawBlock, s.Mode())

	for i := 0; i < 256; i++ {
		s.Write(0x1234)
	}

	sent := conn.to(defaultDest)
	require.Len(t, sent, 1)
	assert.Equal(t, bytes.Repeat([]byte{0x34, 0x12}, 256), sent[0].data)
	assert.Equal(t, 0, s.Buffered())
	assert.Len(t, conn.sent, 1)
}

func TestTinyBlockSizes(t *testing.T) {
	// Less than one sample falls back to the default block.
	conn := &fakeConn{}
	s, err := New(Config{Conn: conn, BlockSize: 1})
	require.NoError(t, err)
	assert.NotPanics(t, func() { s.Write(0x1234) })
	assert.Equal(t, 2, s.Buffered())
	assert.Empty(t, conn.sent)

	// One sample per datagram.
	conn = &fakeConn{}
	s, err = New(Config{Conn: conn, BlockSize: 2})
	require.NoError(t, err)
	s.Write(0x1234)
	s.Write(-1)

	sent := conn.to(defaultDest)
	require.Len(t, sent, 2)
	assert.Equal(t, []byte{0x34, 0x12}, sent[0].data)
	assert.Equal(t, []byte{0xff, 0xff}, sent[1].data)
	assert.Equal(t, 0, s.Buffered())
}

func TestRawBlockOrderAndTail(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)

	n := 3*256 + 17
	for i := 0; i < n; i++ {
		s.Write(int16(i))
	}

	sent := conn.to(defaultDest)
	require.Len(t, sent, 3)

	var got []int16
	for _, d := range sent {
		assert.Len(t, d.data, DefaultBlockSize)
		got = append(got, samplesOf(d)...)
	}
	for i, v := range got {
		if v != int16(i) {
			t.Fatalf("sample %d: got %d", i, v)
		}
	}

	// The trailing partial block stays buffered.
	assert.Equal(t, 2*17, s.Buffered())
}

func TestModeSwitchKeepsPartialBlock(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)

	for i := 0; i < 10; i++ {
		s.Write(int16(i))
	}
	require.True(t, s.SelectMode(RealTime))
	for i := 0; i < 100; i++ {
		s.Write(-1)
	}
	require.True(t, s.SelectMode(RawBlock))
	assert.Equal(t, 20, s.Buffered())

	for i := 10; i < 256; i++ {
		s.Write(int16(i))
	}

	var raw []datagram
	for _, d := range conn.to(defaultDest) {
		if len(d.data) == DefaultBlockSize {
			raw = append(raw, d)
		}
	}
	require.Len(t, raw, 1)
	samples := samplesOf(raw[0])
	for i, v := range samples {
		assert.Equal(t, int16(i), v)
	}
	assert.Equal(t, 0, s.Buffered())
}

func TestSelectMode(t *testing.T) {
	s := newTestSink(t, &fakeConn{})

	assert.False(t, s.SelectMode(Mode(7)))
	assert.False(t, s.SelectMode(Mode(-1)))
	assert.Equal(t, RawBlock, s.Mode())

	assert.True(t, s.SelectMode(RealTime))
	assert.Equal(t, RealTime, s.Mode())
	assert.False(t, s.SelectMode(Mode(2)))
	assert.Equal(t, RealTime, s.Mode())
}

func TestRealTimeBypassesBlockBuffer(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)
	require.True(t, s.SelectMode(RealTime))

	for i := 0; i < 100; i++ {
		s.Write(int16(i))
	}

	assert.Equal(t, 0, s.Buffered())
	sent := conn.to(defaultDest)
	require.Len(t, sent, 1, "one RTP packet of 80 samples")
	assert.Len(t, sent[0].data, 12+160)
	assert.Equal(t, byte(0x80), sent[0].data[0]&0xc0, "RTP version 2")
	assert.Equal(t, Stats{Packets: 1, PayloadBytes: 160}, s.Stats())
}

func TestAddThenDeleteDestination(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)
	s.SelectMode(RealTime)

	s.AddDestination("127.0.0.2", 5000)
	s.AddDestination("127.0.0.3", 5000)
	s.DeleteDestination("127.0.0.2", 5000)

	for i := 0; i < 160; i++ {
		s.Write(1)
	}

	assert.Empty(t, conn.to("127.0.0.2:5000"))
	assert.Len(t, conn.to("127.0.0.3:5000"), 2)
	assert.Len(t, conn.to(defaultDest), 2)
}

func TestDeleteUnknownDestination(t *testing.T) {
	s := newTestSink(t, &fakeConn{})
	s.AddDestination("127.0.0.2", 5000)
	before := s.Destinations()

	s.DeleteDestination("192.0.2.1", 1234)
	assert.Equal(t, before, s.Destinations())
}

func TestSetDestination(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)
	s.AddDestination("127.0.0.2", 5000)
	s.SetDestination("127.0.0.1", 7000)

	assert.Equal(t, Endpoint{Address: "127.0.0.1", Port: 7000}, s.Destination())
	assert.Equal(t, []Endpoint{
		{Address: "127.0.0.1", Port: 7000},
		{Address: "127.0.0.2", Port: 5000},
	}, s.Destinations())

	// Raw blocks only ever go to the current destination.
	for i := 0; i < 256; i++ {
		s.Write(0)
	}
	assert.Len(t, conn.to("127.0.0.1:7000"), 1)
	assert.Empty(t, conn.to("127.0.0.2:5000"))
	assert.Empty(t, conn.to(defaultDest))
}

func TestUnresolvableDestinationDropsBlocks(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)
	s.SetDestination("no such host.invalid", 9)

	for i := 0; i < 256; i++ {
		s.Write(0)
	}
	assert.Empty(t, conn.sent)
	assert.Equal(t, 0, s.Buffered())
}

func TestRealTimeCapability(t *testing.T) {
	s := newTestSink(t, &fakeConn{})
	assert.True(t, s.IsRealTimeCapable())

	conn := &fakeConn{}
	broken, err := New(Config{Conn: conn, PacketDuration: time.Nanosecond})
	require.NoError(t, err)
	assert.False(t, broken.IsRealTimeCapable())

	// Selecting RealTime is still allowed; the transport discards samples.
	assert.True(t, broken.SelectMode(RealTime))
	for i := 0; i < 1000; i++ {
		broken.Write(1)
	}
	assert.Empty(t, conn.sent)
}

func TestCloseDropsPartialBlock(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)
	for i := 0; i < 100; i++ {
		s.Write(1)
	}

	require.NoError(t, s.Close())
	assert.Empty(t, conn.sent)
	assert.Equal(t, 1, conn.closeCount())

	require.NoError(t, s.Close())
	assert.Equal(t, 1, conn.closeCount())

	for i := 0; i < 512; i++ {
		s.Write(1)
	}
	assert.Empty(t, conn.sent)
}

func TestTransferOwnershipDefersRelease(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)

	owner := loop.New("audio")
	s.TransferOwnership(owner)

	// Buffered samples survive the transfer.
	s.Write(5)
	assert.Equal(t, 2, s.Buffered())

	require.NoError(t, s.Close())
	require.NoError(t, owner.Close())
	assert.Equal(t, 1, conn.closeCount())
}

func TestWriteStereo(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)
	for i := 0; i < 128; i++ {
		s.WriteStereo(int16(i), int16(-i))
	}

	sent := conn.to(defaultDest)
	require.Len(t, sent, 1)
	samples := samplesOf(sent[0])
	assert.Equal(t, int16(3), samples[6])
	assert.Equal(t, int16(-3), samples[7])
}

func TestWriteFrame(t *testing.T) {
	conn := &fakeConn{}
	s := newTestSink(t, conn)

	planar := av.AudioFrame{
		SampleFormat:  av.S16P,
		ChannelLayout: av.CH_STEREO,
		SampleCount:   128,
		SampleRate:    48000,
		Data:          [][]byte{make([]byte, 256), make([]byte, 256)},
	}
	for i := 0; i < 128; i++ {
		binary.LittleEndian.PutUint16(planar.Data[0][2*i:], uint16(i))
		binary.LittleEndian.PutUint16(planar.Data[1][2*i:], uint16(1000+i))
	}
	require.NoError(t, s.WriteFrame(planar))

	sent := conn.to(defaultDest)
	require.Len(t, sent, 1)
	samples := samplesOf(sent[0])
	assert.Equal(t, []int16{0, 1000, 1, 1001}, samples[:4])

	interleaved := av.AudioFrame{
		SampleFormat:  av.S16,
		ChannelLayout: av.CH_MONO,
		SampleCount:   3,
		Data:          [][]byte{{1, 0, 2, 0, 3, 0}},
	}
	require.NoError(t, s.WriteFrame(interleaved))
	assert.Equal(t, 6, s.Buffered())

	short := interleaved
	short.SampleCount = 4
	assert.Error(t, s.WriteFrame(short))

	float := av.AudioFrame{SampleFormat: av.FLT, ChannelLayout: av.CH_MONO, SampleCount: 1, Data: [][]byte{make([]byte, 4)}}
	assert.Error(t, s.WriteFrame(float))
}

func TestParseMode(t *testing.T) {
	for s, want := range map[string]Mode{"udp": RawBlock, "RTP": RealTime, "realtime": RealTime} {
		m, err := ParseMode(s)
		assert.NoError(t, err)
		assert.Equal(t, want, m)
		assert.True(t, m.valid())
	}
	_, err := ParseMode("tcp")
	assert.Error(t, err)

	assert.Equal(t, "udp", RawBlock.String())
	assert.Equal(t, "rtp", RealTime.String())
	assert.Equal(t, "Mode(5)", Mode(5).String())
}

func TestLoopbackDelivery(t *testing.T) {
	receiver, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer receiver.Close()
	port := receiver.LocalAddr().(*net.UDPAddr).Port

	s, err := New(Config{Port: uint16(port), TOS: 0xb8})
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 256; i++ {
		s.Write(int16(i))
	}

	buf := make([]byte, 2048)
	receiver.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := receiver.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, DefaultBlockSize, n)
	assert.Equal(t, int16(255), int16(binary.LittleEndian.Uint16(buf[510:])))
}

func TestSessionDescription(t *testing.T) {
	s := newTestSink(t, &fakeConn{})
	defer s.Close()

	desc := s.SessionDescription(Endpoint{Address: "10.0.0.2", Port: 5004})
	assert.Contains(t, desc, "c=IN IP4 10.0.0.2\r\n")
	assert.Contains(t, desc, "m=audio 5004 RTP/AVP 96\r\n")
	assert.Contains(t, desc, "a=rtpmap:96 L16/8000/1\r\n")
	assert.Contains(t, desc, "a=ptime:10\r\n")
	assert.Contains(t, desc, "o=- ")
	assert.Contains(t, desc, " IN IP4 0.0.0.0\r\n")
}
