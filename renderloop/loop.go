// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package renderloop runs the render-owning thread of a draw graph.
//
// A Loop owns one goroutine locked to an OS thread. All GPU work and all
// draw-graph mutation must happen on it. Other goroutines interact with
// the loop through two primitives:
//
//   - [Loop.Post]: queue a function to run on the render thread before
//     the next frame. Never blocks the caller.
//   - [Loop.RequestFrame]: ask for a redraw. Requests coalesce: any
//     number of calls before the next frame produce exactly one frame.
//
// The loop is event-driven: it sleeps until a post or a frame request
// arrives, mirroring a retained-mode scene graph that only redraws when
// something was invalidated.
package renderloop

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Options configures a Loop.
type Options struct {
	// InitialQueueCapacity sizes the posted-function queue backing
	// array. The queue grows as needed; this only avoids early
	// reallocation.
	InitialQueueCapacity int
}

// DefaultOptions returns the default loop options.
func DefaultOptions() Options {
	return Options{InitialQueueCapacity: 16}
}

// Loop is a render-owning event loop. Create with New, drive with Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	buffer []func() // drained snapshot, reused across frames

	// wake has capacity 1: posts and frame requests collapse into a
	// single pending wakeup.
	wake chan struct{}

	frameWanted atomic.Bool
	running     atomic.Bool
}

// New creates a loop. It does nothing until Run is called; Post and
// RequestFrame before Run simply accumulate.
func New(opts Options) *Loop {
	capacity := opts.InitialQueueCapacity
	if capacity <= 0 {
		capacity = 16
	}
	return &Loop{
		queue: make([]func(), 0, capacity),
		wake:  make(chan struct{}, 1),
	}
}

// Post queues f to run on the render thread before the next frame.
// Safe from any goroutine, never blocks, never drops. Functions run in
// post order.
func (l *Loop) Post(f func()) {
	if f == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()
	l.signal()
}

// RequestFrame schedules one frame callback. Concurrent and repeated
// requests before the frame runs coalesce into a single frame.
// Safe from any goroutine, never blocks.
func (l *Loop) RequestFrame() {
	l.frameWanted.Store(true)
	l.signal()
}

// Running reports whether Run is currently executing.
func (l *Loop) Running() bool { return l.running.Load() }

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
		// A wakeup is already pending; the loop will observe our work.
	}
}

// Run executes the loop on the calling goroutine until ctx is done,
// locking it to its OS thread for the duration. frame is invoked once
// per coalesced frame request, after all posted functions have run.
//
// Run returns ctx.Err() after draining any functions posted before
// cancellation was observed.
func (l *Loop) Run(ctx context.Context, frame func()) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.running.Store(true)
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case <-l.wake:
			l.drain()
			if l.frameWanted.Swap(false) && frame != nil {
				frame()
			}
		}
	}
}

// drain runs all currently queued functions on the render thread.
func (l *Loop) drain() {
	l.mu.Lock()
	if len(l.queue) == 0 {
		l.mu.Unlock()
		return
	}
	fns := l.queue
	l.queue = l.buffer[:0]
	l.buffer = fns
	l.mu.Unlock()

	for i, f := range fns {
		f()
		fns[i] = nil
	}

	slogger().Debug("renderloop: drained posted functions", "count", len(fns))
}
