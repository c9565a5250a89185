// Package sdp writes session descriptions (RFC 4566) announcing an RTP audio
// stream, so that generic receivers know how to decode it.
package sdp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

type Session struct {
	Version    int
	Origin     Origin
	Name       string
	Info       string      // Optional
	Connection *Connection // Optional
	Attributes []Attribute
	Media      []Media
}

type Origin struct {
	Username       string
	SessionId      string
	SessionVersion uint64
	NetworkType    string
	AddressType    string
	Address        string
}

type Connection struct {
	NetworkType string
	AddressType string
	Address     string
}

type Attribute struct {
	Key   string
	Value string
}

type Media struct {
	Type   string
	Port   int
	Proto  string
	Format []string

	Connection *Connection // Optional
	Attributes []Attribute
}

type writer strings.Builder

func (w *writer) Write(fragments ...string) {
	for _, s := range fragments {
		(*strings.Builder)(w).WriteString(s)
	}
}

func (w *writer) Writef(format string, args ...interface{}) {
	fmt.Fprintf((*strings.Builder)(w), format, args...)
}

func (w *writer) String() string {
	return (*strings.Builder)(w).String()
}

func (o *Origin) String() string {
	return fmt.Sprintf("%s %s %d %s %s %s",
		o.Username, o.SessionId, o.SessionVersion, o.NetworkType, o.AddressType, o.Address)
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s %s %s", c.NetworkType, c.AddressType, c.Address)
}

func (a Attribute) String() string {
	if a.Value == "" {
		return a.Key
	}
	return fmt.Sprintf("%s:%s", a.Key, a.Value)
}

func (m *Media) String() string {
	var w writer
	w.Writef("m=%s %d %s %s\r\n", m.Type, m.Port, m.Proto, strings.Join(m.Format, " "))
	if m.Connection != nil {
		w.Write("c=", m.Connection.String(), "\r\n")
	}
	for _, a := range m.Attributes {
		w.Write("a=", a.String(), "\r\n")
	}
	return w.String()
}

func (s *Session) String() string {
	var w writer
	w.Writef("v=%d\r\n", s.Version)
	w.Write("o=", s.Origin.String(), "\r\n")
	w.Write("s=", s.Name, "\r\n")
	if s.Info != "" {
		w.Write("i=", s.Info, "\r\n")
	}
	if s.Connection != nil {
		w.Write("c=", s.Connection.String(), "\r\n")
	}
	// Unbounded session.
	w.Write("t=0 0\r\n")
	for _, a := range s.Attributes {
		w.Write("a=", a.String(), "\r\n")
	}
	for _, m := range s.Media {
		w.Write(m.String())
	}
	return w.String()
}

// An Audio describes one L16 RTP stream as seen by a receiver.
type Audio struct {
	// Receiver address and RTP port. RTCP goes to Port+1.
	Address string
	Port    uint16

	// Address the stream is sent from. Empty means unknown.
	Source string

	PayloadType byte
	SampleRate  int
	Channels    int

	// Packet duration in milliseconds.
	PacketTime int

	SSRC  uint32
	CNAME string
}

// NewConnection returns an IN connection line for address, which may be an IP
// literal or a host name.
func NewConnection(address string) *Connection {
	c := &Connection{NetworkType: "IN", AddressType: "IP4", Address: address}
	if ip := net.ParseIP(address); ip != nil && ip.To4() == nil {
		c.AddressType = "IP6"
	}
	return c
}

// Describe builds a send-only session announcing a.
func Describe(a Audio) *Session {
	source := a.Source
	if source == "" {
		source = "0.0.0.0"
	}
	origin := NewConnection(source)

	pt := strconv.Itoa(int(a.PayloadType))
	m := Media{
		Type:   "audio",
		Port:   int(a.Port),
		Proto:  "RTP/AVP",
		Format: []string{pt},
		Attributes: []Attribute{
			{"rtpmap", fmt.Sprintf("%s L16/%d/%d", pt, a.SampleRate, a.Channels)},
			{"rtcp", strconv.Itoa(int(a.Port) + 1)},
			{"sendonly", ""},
		},
	}
	if a.PacketTime > 0 {
		m.Attributes = append(m.Attributes, Attribute{"ptime", strconv.Itoa(a.PacketTime)})
	}
	if a.CNAME != "" {
		m.Attributes = append(m.Attributes, Attribute{"ssrc", fmt.Sprintf("%d cname:%s", a.SSRC, a.CNAME)})
	}

	return &Session{
		Origin: Origin{
			Username:       "-",
			SessionId:      strconv.FormatUint(uint64(a.SSRC), 10),
			SessionVersion: 1,
			NetworkType:    origin.NetworkType,
			AddressType:    origin.AddressType,
			Address:        origin.Address,
		},
		Name:       "audionet",
		Connection: NewConnection(a.Address),
		Media:      []Media{m},
	}
}
