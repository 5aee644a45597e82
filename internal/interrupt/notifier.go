// Package interrupt cancels long-running diagnostics on Ctrl+C.
//
// A poll run can block for interval x maxAttempts; the first
// SIGINT/SIGTERM cancels the command context so the run unwinds and
// reports what it has, and a second signal within a short window
// force-exits immediately.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ExitCode is the exit status for interrupt (128 + SIGINT).
const ExitCode = 130

// abortWindow is how long after the first signal a second one
// force-exits instead of being ignored as key bounce.
const abortWindow = 2 * time.Second

// Notifier cancels a context on the first interrupt signal and
// force-exits on a second one inside the abort window.
type Notifier struct {
	mu     sync.Mutex
	first  time.Time
	fired  bool
	closed bool
	cancel context.CancelFunc
	done   chan struct{}

	// Injected dependencies (for testing)
	exit func(int)
	now  func() time.Time
	errw io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	Signals <-chan os.Signal
	Exit    func(int)
	Now     func() time.Time
	Stderr  io.Writer
}

// Notify returns a Notifier listening for SIGINT/SIGTERM and a context
// canceled on the first signal.
func Notify(parent context.Context) (*Notifier, context.Context) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return NotifyWithOptions(parent, Options{Signals: ch})
}

// NotifyWithOptions creates a Notifier with injectable dependencies.
func NotifyWithOptions(parent context.Context, opts Options) (*Notifier, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	n := &Notifier{
		cancel: cancel,
		done:   make(chan struct{}),
		exit:   opts.Exit,
		now:    opts.Now,
		errw:   opts.Stderr,
	}
	if n.exit == nil {
		n.exit = os.Exit
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.errw == nil {
		n.errw = os.Stderr
	}

	if opts.Signals != nil {
		go n.listen(opts.Signals)
	}

	return n, ctx
}

// listen handles incoming signals.
func (n *Notifier) listen(ch <-chan os.Signal) {
	for {
		select {
		case <-n.done:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}

			n.mu.Lock()
			if n.closed {
				n.mu.Unlock()
				return
			}
			now := n.now()

			if !n.fired {
				n.fired = true
				n.first = now
				n.cancel()
				n.mu.Unlock()
				fmt.Fprintln(n.errw, "\nStopping... (Ctrl+C again to abort)")
				continue
			}

			within := now.Sub(n.first) <= abortWindow
			n.mu.Unlock()
			if within {
				fmt.Fprintln(n.errw, "\nAborted.")
				n.exit(ExitCode)
				return // in case exit is a test stub
			}
		}
	}
}

// Interrupted reports whether at least one signal was received.
func (n *Notifier) Interrupted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fired
}

// Stop detaches the Notifier. Call when the command finishes normally.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(n.done)
}
