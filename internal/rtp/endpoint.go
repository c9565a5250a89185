package rtp

import (
	"net"
	"strconv"
	"sync"

	"github.com/golang/groupcache/lru"
	errors "golang.org/x/xerrors"
)

// An Endpoint is a network address and port identifying a send target. The
// address may be a literal IP or a host name.
type Endpoint struct {
	Address string
	Port    uint16
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(int(e.Port)))
}

// Number of resolved endpoints remembered by a resolver.
const resolverCacheSize = 64

// resolver turns endpoints into UDP addresses. Host name lookups happen at most
// once per endpoint while it stays in the LRU cache, so that changing
// destinations never costs a DNS round trip on the audio path.
type resolver struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newResolver(size int) *resolver {
	return &resolver{cache: lru.New(size)}
}

func (r *resolver) resolve(e Endpoint) (*net.UDPAddr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(e); ok {
		return v.(*net.UDPAddr), nil
	}

	addr, err := net.ResolveUDPAddr("udp", e.String())
	if err != nil {
		return nil, errors.Errorf("resolve %s: %w", e, err)
	}
	r.cache.Add(e, addr)
	return addr, nil
}

// Resolver is an endpoint resolver with its own cache, for senders outside
// this package.
type Resolver struct {
	r *resolver
}

// NewResolver returns a resolver with an empty cache.
func NewResolver() *Resolver {
	return &Resolver{newResolver(resolverCacheSize)}
}

// Resolve returns the UDP address of e, looking it up only on a cache miss.
func (r *Resolver) Resolve(e Endpoint) (*net.UDPAddr, error) {
	return r.r.resolve(e)
}
