package device

import (
	"sync"

	errors "golang.org/x/xerrors"
)

var errNotJoined = errors.New("device: leave without matching join")

// A Group is the set of logical front-ends (receivers and transmitters) that
// share one physical device. The capability snapshot is built by the first
// participant to join and dropped when the last one leaves.
//
// Sharing is managed by reference counting, in the manner of a shared buffer:
// Join increments the count, Leave decrements it.
type Group struct {
	dev Device

	// Called with the snapshot when the last participant leaves.
	release func(*Params)

	mu     sync.Mutex
	count  int
	params *Params
}

// NewGroup creates a group for dev. The release function, if not nil, is
// called when the last participant leaves.
func NewGroup(dev Device, release func(*Params)) *Group {
	return &Group{dev: dev, release: release}
}

// Join registers a participant and returns the shared snapshot, querying the
// device if this is the first participant.
func (g *Group) Join() *Params {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.count == 0 {
		g.params = NewParams(g.dev)
	}
	g.count++
	return g.params
}

// Leave unregisters a participant. The last one out releases the snapshot.
func (g *Group) Leave() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.count == 0 {
		return errNotJoined
	}
	g.count--
	if g.count == 0 {
		if g.release != nil {
			g.release(g.params)
		}
		g.params = nil
	}
	return nil
}

// Participants returns the number of participants currently joined.
func (g *Group) Participants() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Params returns the current snapshot, or nil when nobody has joined.
func (g *Group) Params() *Params {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.params
}
