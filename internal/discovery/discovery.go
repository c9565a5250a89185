// Package discovery finds audio receivers advertised over multicast DNS.
package discovery

import (
	"context"
	"net"
	"time"

	"github.com/hashicorp/mdns"
	errors "golang.org/x/xerrors"

	"github.com/lanikai/audionet/internal/logging"
	"github.com/lanikai/audionet/internal/rtp"
)

var log = logging.DefaultLogger.WithTag("discovery")

// Service type advertised by RTP audio receivers.
const DefaultService = "_audionet._udp"

// Browse repeatedly queries for instances of service until ctx is done, calling
// fn with each IPv4 endpoint found. Each query round lasts timeout. fn runs on
// a separate goroutine and may see the same endpoint more than once.
func Browse(ctx context.Context, service string, timeout time.Duration, fn func(rtp.Endpoint)) error {
	if service == "" {
		service = DefaultService
	}

	for ctx.Err() == nil {
		entries := make(chan *mdns.ServiceEntry, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for entry := range entries {
				if e, ok := endpointOf(entry); ok {
					log.Debug("Found %s at %s", entry.Name, e)
					fn(e)
				}
			}
		}()

		params := mdns.DefaultParams(service)
		params.Timeout = timeout
		params.Entries = entries
		params.DisableIPv6 = true
		err := mdns.QueryContext(ctx, params)
		close(entries)
		<-done

		if err != nil && ctx.Err() == nil {
			return errors.Errorf("mdns query %s: %w", service, err)
		}
	}
	return nil
}

func endpointOf(entry *mdns.ServiceEntry) (rtp.Endpoint, bool) {
	if entry == nil || entry.Port <= 0 || entry.Port > 0xffff {
		return rtp.Endpoint{}, false
	}
	ip := entry.AddrV4
	if ip == nil || ip.To4() == nil || ip.Equal(net.IPv4zero) {
		return rtp.Endpoint{}, false
	}
	return rtp.Endpoint{Address: ip.String(), Port: uint16(entry.Port)}, true
}
