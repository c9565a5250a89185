package audionet

import (
	"net"
	"time"
)

const (
	DefaultAddress = "127.0.0.1"
	DefaultPort    = 9998
)

// Config holds the construction parameters of a Sink. Zero values select the
// defaults.
type Config struct {
	// Two channels per frame on the RTP path. Raw blocks are channel-agnostic.
	Stereo bool

	// Initial destination. Defaults to 127.0.0.1:9998.
	Address string
	Port    uint16

	// Size of a raw datagram in bytes, rounded down to whole samples. Values
	// below one sample select the default of 512.
	BlockSize int

	// RTP media clock and packet duration. Default to 48 kHz and 20 ms.
	SampleRate     int
	PacketDuration time.Duration

	// Network and local address of the outbound socket. Default to "udp4"
	// and an ephemeral port on all interfaces.
	Network      string
	LocalAddress string

	// IP type of service (traffic class on IPv6), e.g. 0xb8 for DSCP EF, and
	// multicast TTL (hop limit). Zero leaves the system default.
	TOS          int
	MulticastTTL int

	// Socket send buffer size and priority (Linux only). Zero leaves the
	// system default.
	SendBuffer int
	Priority   int

	// Use this socket instead of opening one. The sink takes ownership of it
	// and closes it on Close.
	Conn net.PacketConn
}

func (c *Config) setDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	// A block must hold at least one sample.
	if c.BlockSize < 2 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Network == "" {
		c.Network = "udp4"
	}
	if c.LocalAddress == "" {
		c.LocalAddress = ":0"
	}
}
