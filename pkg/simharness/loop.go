// Package simharness provides a cooperative, single-threaded
// simulated clock and a behavioral accelerator twin for exercising
// pkg/transport and pkg/accel without real hardware. It replaces the
// original C++ driver's coroutine-based event loop
// (original_source/sim/simulator.h) with goroutines parked on
// channels, since Go has no native coroutines: simulated time advances
// only through Loop.Step, and waiters block on its edges.
package simharness

import (
	"context"
	"sync"
)

// Loop drives a single simulated clock signal one half-edge at a
// time. Each Step call toggles the clock and then fires every waiter
// registered strictly before that call, mirroring
// original_source/sim/simulator.h's run() loop: "callbacks registered
// during the current drain are deferred to the next tick, never fired
// twice in the same tick."
type Loop struct {
	mu       sync.Mutex
	clk      bool
	tick     uint64
	waiters  []chan struct{}
	stopped  chan struct{}
	stopOnce bool
}

// NewLoop returns a stopped Loop with the clock low.
func NewLoop() *Loop {
	return &Loop{stopped: make(chan struct{})}
}

// Clock reports the current level of the simulated clock.
func (l *Loop) Clock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clk
}

// Tick returns the number of half-edges simulated so far.
func (l *Loop) Tick() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// NextEvent returns a channel that closes the next time Step runs.
// Calling NextEvent from inside a callback that Step is currently
// draining registers for the following tick, not the current one.
func (l *Loop) NextEvent() <-chan struct{} {
	ch := make(chan struct{})
	l.mu.Lock()
	l.waiters = append(l.waiters, ch)
	l.mu.Unlock()
	return ch
}

// Step toggles the clock once and wakes every waiter registered
// before this call.
func (l *Loop) Step() {
	l.mu.Lock()
	l.tick++
	l.clk = !l.clk
	fired := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	for _, ch := range fired {
		close(ch)
	}
}

// Run steps the loop until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopped:
			return
		default:
			l.Step()
		}
	}
}

// Stop halts a running Loop. Safe to call more than once.
func (l *Loop) Stop() {
	if l.stopOnce {
		return
	}
	l.stopOnce = true
	close(l.stopped)
}

// WaitRisingEdge blocks until the clock transitions low-to-high.
func (l *Loop) WaitRisingEdge() {
	for {
		<-l.NextEvent()
		if l.Clock() {
			return
		}
	}
}

// WaitFallingEdge blocks until the clock transitions high-to-low.
func (l *Loop) WaitFallingEdge() {
	for {
		<-l.NextEvent()
		if !l.Clock() {
			return
		}
	}
}

// WaitEdge blocks until read's value differs from its value when
// WaitEdge was called, then returns the new value.
func (l *Loop) WaitEdge(read func() bool) bool {
	prev := read()
	for {
		<-l.NextEvent()
		cur := read()
		if cur != prev {
			return cur
		}
		prev = cur
	}
}

// Clocks blocks for n full rising edges.
func (l *Loop) Clocks(n int) {
	for i := 0; i < n; i++ {
		l.WaitRisingEdge()
	}
}
