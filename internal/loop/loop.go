// Package loop provides execution contexts: goroutines that own resources and
// run work on their behalf, one function at a time.
package loop

import (
	"sync"

	"github.com/lanikai/audionet/internal/logging"
)

var log = logging.DefaultLogger.WithTag("loop")

// A Loop is a long-running goroutine that executes posted functions in order.
// Resources bound to a Loop (such as a socket) are released by posting the
// release to it, so the release happens on the owning context even when the
// owner of the Go value lives elsewhere.
type Loop struct {
	name string

	// Functions posted but not yet run.
	pending []func()

	// Signaled (without blocking) whenever pending becomes non-empty.
	wake chan struct{}

	// Closed when Close() is requested, to trigger run loop exit.
	quit chan struct{}

	// Closed when run loop actually terminates.
	terminated chan struct{}

	closed bool
	sync.Mutex
}

// New starts a loop. The name is only used in log messages.
func New(name string) *Loop {
	l := &Loop{
		name:       name,
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		terminated: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) String() string {
	return l.name
}

func (l *Loop) run() {
	log.Debug("Starting loop %s", l.name)
	defer close(l.terminated)
	for {
		select {
		case <-l.wake:
			l.runPending()
		case <-l.quit:
			// Run whatever was posted before Close(). Nothing can be added
			// after closed is set.
			l.runPending()
			log.Debug("Stopped loop %s", l.name)
			return
		}
	}
}

func (l *Loop) runPending() {
	for {
		l.Lock()
		batch := l.pending
		l.pending = nil
		l.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, f := range batch {
			f()
		}
	}
}

// Post schedules f to run on the loop. Functions run in the order they were
// posted. Post never blocks, so functions running on the loop may post more
// work to it. Once the loop has been closed, f runs immediately on the
// caller's goroutine, so that posted releases are never lost.
func (l *Loop) Post(f func()) {
	l.Lock()
	if l.closed {
		l.Unlock()
		f()
		return
	}
	l.pending = append(l.pending, f)
	l.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs f on the loop and waits for it to finish. It must not be called
// from a function running on the same loop.
func (l *Loop) Do(f func()) {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		f()
	})
	<-done
}

// Close stops the loop after running all previously posted functions. It is
// safe to call more than once.
func (l *Loop) Close() error {
	l.Lock()
	if l.closed {
		l.Unlock()
		<-l.terminated
		return nil
	}
	l.closed = true
	close(l.quit)
	l.Unlock()

	<-l.terminated
	return nil
}
