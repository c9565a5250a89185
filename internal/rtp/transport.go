package rtp

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	errors "golang.org/x/xerrors"

	"github.com/lanikai/audionet/internal/packet"
)

// Static payload types for 16-bit linear PCM at 44.1 kHz, from RFC 3551
// Table 4. Any other rate uses a dynamic payload type.
const (
	PayloadL16Stereo  = 10
	PayloadL16Mono    = 11
	PayloadL16Dynamic = 96
)

const (
	defaultSampleRate     = 48000
	defaultPacketDuration = 20 * time.Millisecond
	defaultReportInterval = 250

	// One packet of 20 ms stereo audio at 48 kHz (3840 bytes) plus header. The
	// datagram is fragmented at the IP layer, as receivers of L16 expect.
	defaultMaxPacketSize = 4096

	// Width of one sample in bytes.
	sampleWidth = 2
)

type TransportOptions struct {
	// Two interleaved channels per frame, instead of one.
	Stereo bool

	// Media clock rate in Hz. Defaults to 48000.
	SampleRate int

	// Media time carried by each packet. Defaults to 20 ms.
	PacketDuration time.Duration

	// RTP payload type. Zero picks the L16 type matching SampleRate.
	PayloadType byte

	// Maximum size of outgoing RTP packets, header included.
	MaxPacketSize int

	// Synchronization source identifier and canonical name. Both default to
	// values derived from a random UUID.
	SSRC  uint32
	CNAME string

	// Number of RTP packets between RTCP Sender Reports. Negative disables
	// periodic reports.
	ReportInterval int
}

// Stats reports what a Transport has sent so far.
type Stats struct {
	Packets      uint64
	PayloadBytes uint64
}

// Transport sends 16-bit PCM samples as RTP L16 packets to a primary
// destination plus any number of additional destinations. Delivery is
// best-effort: send failures are logged at debug level and otherwise ignored.
//
// Write is expected to be called from a single goroutine. The destination set
// is guarded separately, so it may be edited from other goroutines.
type Transport struct {
	TransportOptions

	conn net.PacketConn

	// Reason the transport cannot send, or nil.
	invalid error

	channels int

	// Samples (not frames) per packet, and the payload being accumulated, in
	// network byte order.
	packetSamples int
	payload       *packet.Writer

	out  *rtpWriter
	rtcp *packet.Writer

	// Packets sent since the last Sender Report.
	sinceReport int

	resolver *resolver

	mu         sync.Mutex
	primary    *Endpoint
	additional []Endpoint

	// Resolved destinations, rebuilt whenever the endpoint set changes.
	targets []*net.UDPAddr

	closed bool
}

// NewTransport creates a transport sending on conn. The connection remains
// owned by the caller; Close does not close it.
func NewTransport(conn net.PacketConn, opts TransportOptions) *Transport {
	id := uuid.New()
	if opts.SampleRate == 0 {
		opts.SampleRate = defaultSampleRate
	}
	if opts.PacketDuration == 0 {
		opts.PacketDuration = defaultPacketDuration
	}
	if opts.PayloadType == 0 {
		opts.PayloadType = payloadTypeFor(opts.SampleRate, opts.Stereo)
	}
	if opts.MaxPacketSize == 0 {
		opts.MaxPacketSize = defaultMaxPacketSize
	}
	if opts.SSRC == 0 {
		opts.SSRC = binary.BigEndian.Uint32(id[0:4])
	}
	if opts.CNAME == "" {
		opts.CNAME = id.String()
	}
	if opts.ReportInterval == 0 {
		opts.ReportInterval = defaultReportInterval
	}

	t := &Transport{
		TransportOptions: opts,
		conn:             conn,
		channels:         1,
		resolver:         newResolver(resolverCacheSize),
	}
	if opts.Stereo {
		t.channels = 2
	}

	frames := int(int64(opts.SampleRate) * int64(opts.PacketDuration) / int64(time.Second))
	t.packetSamples = frames * t.channels

	if t.invalid = t.validate(); t.invalid != nil {
		log.Warn("RTP transport disabled: %v", t.invalid)
		return t
	}

	t.payload = packet.NewWriterSize(t.packetSamples * sampleWidth)
	t.out = newRTPWriter(opts.SSRC, opts.PayloadType,
		binary.BigEndian.Uint16(id[4:6]), binary.BigEndian.Uint32(id[6:10]),
		opts.MaxPacketSize)
	t.rtcp = packet.NewWriterSize(rtcpBufferSize)

	log.Debug("RTP transport: ssrc=%08x pt=%d rate=%d channels=%d samples/packet=%d",
		opts.SSRC, opts.PayloadType, opts.SampleRate, t.channels, t.packetSamples)
	return t
}

func payloadTypeFor(rate int, stereo bool) byte {
	if rate != 44100 {
		return PayloadL16Dynamic
	}
	if stereo {
		return PayloadL16Stereo
	}
	return PayloadL16Mono
}

func (t *Transport) validate() error {
	if t.conn == nil {
		return errors.New("no socket")
	}
	if t.SampleRate <= 0 {
		return errors.Errorf("invalid sample rate %d", t.SampleRate)
	}
	if t.PayloadType > 127 {
		return errors.Errorf("invalid payload type %d", t.PayloadType)
	}
	if t.packetSamples <= 0 {
		return errors.Errorf("packet duration %v holds no samples", t.PacketDuration)
	}
	if size := rtpHeaderSize + t.packetSamples*sampleWidth; size > t.MaxPacketSize {
		return errors.Errorf("packet of %d bytes exceeds maximum size %d", size, t.MaxPacketSize)
	}
	return nil
}

// Valid reports whether the transport is able to send. Writes to an invalid
// transport are discarded.
func (t *Transport) Valid() bool {
	return t.invalid == nil
}

// Err returns the reason the transport is invalid, or nil.
func (t *Transport) Err() error {
	return t.invalid
}

// Write buffers the given little-endian 16-bit samples. A packet is sent to
// every destination each time a full packet of samples has accumulated.
func (t *Transport) Write(samples []byte) {
	if t.invalid != nil || t.closed {
		return
	}
	for i := 0; i+sampleWidth <= len(samples); i += sampleWidth {
		t.payload.WriteUint16(binary.LittleEndian.Uint16(samples[i:]))
		if t.payload.Full() {
			t.sendPacket()
			t.payload.Reset()
		}
	}
}

func (t *Transport) sendPacket() {
	t.mu.Lock()
	defer t.mu.Unlock()

	frames := uint32(t.packetSamples / t.channels)
	pkt, err := t.out.nextPacket(t.payload.Bytes(), frames)
	if err != nil {
		log.Debug("RTP packet: %v", err)
		return
	}
	for _, addr := range t.targets {
		if _, err := t.conn.WriteTo(pkt, addr); err != nil {
			log.Debug("RTP send to %v: %v", addr, err)
		}
	}

	t.sinceReport++
	if t.ReportInterval > 0 && t.sinceReport >= t.ReportInterval {
		t.sendControl(false)
	}
}

// Send a compound RTCP packet to the control port (RTP port + 1) of every
// destination. Must be called with t.mu held.
func (t *Transport) sendControl(goodbye bool) {
	t.sinceReport = 0

	cp := rtcpCompoundPacket{packets: []rtcpPacket{
		&rtcpSenderReport{
			ssrc:         t.out.ssrc,
			ntpTime:      ntpTime(time.Now()),
			rtpTime:      t.out.timestamp,
			packetCount:  uint32(t.out.count),
			payloadBytes: uint32(t.out.totalBytes),
		},
		&rtcpSourceDescription{ssrc: t.out.ssrc, cname: t.CNAME},
	}}
	if goodbye {
		cp.packets = append(cp.packets, &rtcpGoodbye{ssrc: t.out.ssrc})
	}

	t.rtcp.Reset()
	if err := cp.writeTo(t.rtcp); err != nil {
		log.Debug("RTCP packet: %v", err)
		return
	}
	for _, addr := range t.targets {
		control := &net.UDPAddr{IP: addr.IP, Port: addr.Port + 1, Zone: addr.Zone}
		if _, err := t.conn.WriteTo(t.rtcp.Bytes(), control); err != nil {
			log.Debug("RTCP send to %v: %v", control, err)
		}
	}
}

// SetDestination replaces the primary destination. Additional destinations
// are kept.
func (t *Transport) SetDestination(address string, port uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.primary = &Endpoint{address, port}
	t.rebuildTargets()
}

// AddDestination adds a fan-out target. Adding an endpoint twice has no
// further effect.
func (t *Transport) AddDestination(address string, port uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := Endpoint{address, port}
	for _, d := range t.additional {
		if d == e {
			return
		}
	}
	t.additional = append(t.additional, e)
	t.rebuildTargets()
}

// DeleteDestination removes a fan-out target previously added with
// AddDestination. Unknown endpoints are ignored. The primary destination is
// only changed through SetDestination.
func (t *Transport) DeleteDestination(address string, port uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := Endpoint{address, port}
	for i, d := range t.additional {
		if d == e {
			t.additional = append(t.additional[:i], t.additional[i+1:]...)
			t.rebuildTargets()
			return
		}
	}
}

// Destinations returns the primary destination (if any) followed by the
// additional destinations.
func (t *Transport) Destinations() []Endpoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	var list []Endpoint
	if t.primary != nil {
		list = append(list, *t.primary)
	}
	return append(list, t.additional...)
}

// Resolve every endpoint, skipping ones that fail to resolve and collapsing
// endpoints that resolve to the same address. Must be called with t.mu held.
func (t *Transport) rebuildTargets() {
	var endpoints []Endpoint
	if t.primary != nil {
		endpoints = append(endpoints, *t.primary)
	}
	endpoints = append(endpoints, t.additional...)

	targets := make([]*net.UDPAddr, 0, len(endpoints))
outer:
	for _, e := range endpoints {
		addr, err := t.resolver.resolve(e)
		if err != nil {
			log.Debug("Skipping destination: %v", err)
			continue
		}
		for _, a := range targets {
			if a.IP.Equal(addr.IP) && a.Port == addr.Port && a.Zone == addr.Zone {
				continue outer
			}
		}
		targets = append(targets, addr)
	}
	t.targets = targets
}

// Stats returns the packets and payload octets sent so far.
func (t *Transport) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.out == nil {
		return Stats{}
	}
	return Stats{Packets: t.out.count, PayloadBytes: t.out.totalBytes}
}

// Close sends a final Sender Report and Goodbye if anything was sent. Samples
// still buffered are dropped. The underlying socket is left open.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.invalid == nil && t.out.count > 0 {
		t.sendControl(true)
	}
	return nil
}
