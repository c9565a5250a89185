//////////////////////////////////////////////////////////////////////////////
//
// Sink sends a stream of 16-bit PCM samples to the network, either as raw
// fixed-size UDP blocks or as RTP with fan-out to several destinations.
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package audionet

import (
	"net"

	"github.com/pkg/errors"

	"github.com/lanikai/audionet/internal/logging"
	"github.com/lanikai/audionet/internal/loop"
	"github.com/lanikai/audionet/internal/rtp"
)

var log = logging.DefaultLogger.WithTag("audionet")

// Endpoint is a destination address and port.
type Endpoint = rtp.Endpoint

// Stats reports RTP traffic sent by a sink.
type Stats = rtp.Stats

// A Sink is the network output of one audio channel. The audio pipeline calls
// Write once per sample.
//
// A Sink does no locking. Write, and the methods that change the mode or the
// destinations, must be called from one goroutine at a time; the pipeline is
// expected to serialize configuration changes with its own writes.
type Sink struct {
	mode Mode

	block blockBuffer

	// Current destination for raw blocks, and the primary RTP destination.
	dest     Endpoint
	destAddr *net.UDPAddr
	resolver *rtp.Resolver

	transport *rtp.Transport

	// Outbound socket, exclusively owned. If owner is set, the socket is
	// released on that loop.
	conn  net.PacketConn
	owner *loop.Loop

	closed bool
}

// New creates a sink in RawBlock mode, sending to cfg.Address:cfg.Port. The
// socket is opened (or cfg.Conn adopted) but nothing is sent yet.
func New(cfg Config) (*Sink, error) {
	cfg.setDefaults()

	conn := cfg.Conn
	if conn == nil {
		var err error
		if conn, err = openSocket(&cfg); err != nil {
			return nil, errors.Wrap(err, "audio sink")
		}
	}

	s := &Sink{
		mode:     RawBlock,
		block:    newBlockBuffer(cfg.BlockSize),
		resolver: rtp.NewResolver(),
		conn:     conn,
	}
	s.transport = rtp.NewTransport(conn, rtp.TransportOptions{
		Stereo:         cfg.Stereo,
		SampleRate:     cfg.SampleRate,
		PacketDuration: cfg.PacketDuration,
	})
	s.SetDestination(cfg.Address, cfg.Port)
	return s, nil
}

// IsRealTimeCapable reports whether the RTP transport is usable. RealTime mode
// can be selected either way; an unusable transport discards samples.
func (s *Sink) IsRealTimeCapable() bool {
	return s.transport.Valid()
}

// SelectMode switches the transport mode, effective from the next Write. It
// returns false, leaving the mode unchanged, if m is not a known mode. The
// partially filled raw block survives mode switches.
func (s *Sink) SelectMode(m Mode) bool {
	if !m.valid() {
		log.Debug("Rejecting unknown mode %v", m)
		return false
	}
	s.mode = m
	return true
}

// Mode returns the transport mode used by the next Write.
func (s *Sink) Mode() Mode {
	return s.mode
}

// SetDestination replaces the current destination and the RTP primary
// destination. Additional RTP destinations are kept.
func (s *Sink) SetDestination(address string, port uint16) {
	s.dest = Endpoint{Address: address, Port: port}

	addr, err := s.resolver.Resolve(s.dest)
	if err != nil {
		// Raw blocks are dropped until a resolvable destination is set.
		log.Debug("Raw destination: %v", err)
	}
	s.destAddr = addr

	s.transport.SetDestination(address, port)
}

// Destination returns the current destination.
func (s *Sink) Destination() Endpoint {
	return s.dest
}

// AddDestination adds an RTP fan-out destination. It has no effect on raw
// blocks, which only go to the current destination.
func (s *Sink) AddDestination(address string, port uint16) {
	s.transport.AddDestination(address, port)
}

// DeleteDestination removes an RTP destination added with AddDestination.
// Unknown destinations are ignored.
func (s *Sink) DeleteDestination(address string, port uint16) {
	s.transport.DeleteDestination(address, port)
}

// Destinations lists the RTP destinations, primary first.
func (s *Sink) Destinations() []Endpoint {
	return s.transport.Destinations()
}

// Write sends one sample. In RawBlock mode the sample is appended to the
// current block, and a full block goes out as one datagram. In RealTime mode
// the sample goes straight to the RTP transport.
//
// Send failures are not reported: a lost datagram is simply lost.
func (s *Sink) Write(sample int16) {
	if s.closed {
		return
	}
	switch s.mode {
	case RawBlock:
		if s.block.add(sample) {
			s.flush()
		}
	case RealTime:
		b := [2]byte{byte(sample), byte(sample >> 8)}
		s.transport.Write(b[:])
	}
}

// WriteStereo sends one frame of two channel samples, left first.
func (s *Sink) WriteStereo(left, right int16) {
	s.Write(left)
	s.Write(right)
}

func (s *Sink) flush() {
	if s.destAddr != nil {
		if _, err := s.conn.WriteTo(s.block.Bytes(), s.destAddr); err != nil {
			log.Debug("Send block to %v: %v", s.destAddr, err)
		}
	}
	s.block.Reset()
}

// Buffered returns the number of bytes waiting in the current raw block.
func (s *Sink) Buffered() int {
	return s.block.Length()
}

// Stats returns what the RTP transport has sent.
func (s *Sink) Stats() Stats {
	return s.transport.Stats()
}

// TransferOwnership hands the socket to another execution context. From now
// on the socket is released on l. The caller must make sure no Write is in
// progress. Buffered samples stay buffered.
func (s *Sink) TransferOwnership(l *loop.Loop) {
	log.Debug("Socket %v now owned by loop %v", s.conn.LocalAddr(), l)
	s.owner = l
}

// Close releases the RTP transport, then the socket. A partially filled raw
// block is discarded. If the socket was transferred to a loop, its release is
// posted to that loop and Close returns without waiting for it.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.transport.Close()

	if s.owner != nil {
		conn := s.conn
		s.owner.Post(func() {
			if err := conn.Close(); err != nil {
				log.Debug("Deferred socket close: %v", err)
			}
		})
		return nil
	}
	return errors.Wrap(s.conn.Close(), "close audio socket")
}
