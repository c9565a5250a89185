package audionet

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Open the outbound UDP socket described by cfg. Socket options that cannot be
// applied are logged and skipped: a best-effort sender still works without
// them.
func openSocket(cfg *Config) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: socketControl(cfg)}
	conn, err := lc.ListenPacket(context.Background(), cfg.Network, cfg.LocalAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s %s", cfg.Network, cfg.LocalAddress)
	}

	if cfg.Network == "udp6" {
		p := ipv6.NewPacketConn(conn)
		if cfg.TOS > 0 {
			if err := p.SetTrafficClass(cfg.TOS); err != nil {
				log.Warn("Failed to set traffic class %#x: %v", cfg.TOS, err)
			}
		}
		if cfg.MulticastTTL > 0 {
			if err := p.SetMulticastHopLimit(cfg.MulticastTTL); err != nil {
				log.Warn("Failed to set multicast hop limit %d: %v", cfg.MulticastTTL, err)
			}
		}
	} else {
		p := ipv4.NewPacketConn(conn)
		if cfg.TOS > 0 {
			if err := p.SetTOS(cfg.TOS); err != nil {
				log.Warn("Failed to set TOS %#x: %v", cfg.TOS, err)
			}
		}
		if cfg.MulticastTTL > 0 {
			if err := p.SetMulticastTTL(cfg.MulticastTTL); err != nil {
				log.Warn("Failed to set multicast TTL %d: %v", cfg.MulticastTTL, err)
			}
		}
	}

	log.Debug("Opened audio socket %v", conn.LocalAddr())
	return conn, nil
}
