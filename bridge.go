package videosurface

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SurfaceID identifies a registered surface in a Bridge. IDs are
// liveness tokens: a notification carrying the ID of an unregistered
// surface is silently dropped, so producer threads can keep firing
// after teardown without touching freed state.
type SurfaceID = uuid.UUID

// Bridge relays producer-thread "frame available" signals onto the
// render-owning thread. NotifyFrameAvailable is callable from any
// goroutine, never blocks, and coalesces bursts: however many
// notifications arrive between two render-thread services, exactly one
// update closure is posted.
//
// The poster is typically renderloop.(*Loop).Post.
type Bridge struct {
	post func(func())

	mu      sync.Mutex
	entries map[SurfaceID]*bridgeEntry
}

// bridgeEntry tracks one registered surface.
type bridgeEntry struct {
	// pending coalesces notifications: set on the producer side, cleared
	// on the render thread just before update runs. Only a false→true
	// transition posts a closure.
	pending atomic.Bool

	// update runs on the render thread.
	update func()
}

// NewBridge creates a bridge that posts update closures through post.
// The poster must hand the closure to the render-owning thread and must
// not run it inline on the caller.
func NewBridge(post func(func())) *Bridge {
	return &Bridge{
		post:    post,
		entries: make(map[SurfaceID]*bridgeEntry),
	}
}

// Register adds a surface update callback and returns its liveness ID.
// The callback will be invoked on the render thread, at most once per
// posted update.
func (b *Bridge) Register(update func()) SurfaceID {
	id := uuid.New()
	b.mu.Lock()
	b.entries[id] = &bridgeEntry{update: update}
	b.mu.Unlock()

	slogger().Debug("bridge: surface registered", "id", id)
	return id
}

// Unregister removes a surface. Notifications carrying the ID after
// this point are dropped. Safe to call for an unknown ID.
func (b *Bridge) Unregister(id SurfaceID) {
	b.mu.Lock()
	delete(b.entries, id)
	b.mu.Unlock()

	slogger().Debug("bridge: surface unregistered", "id", id)
}

// NotifyFrameAvailable signals that the producer published a frame for
// the given surface. Callable from any goroutine; never blocks. Bursts
// between render-thread services coalesce into a single update.
func (b *Bridge) NotifyFrameAvailable(id SurfaceID) {
	b.mu.Lock()
	entry, ok := b.entries[id]
	b.mu.Unlock()
	if !ok {
		// Stale signal from a producer that outlived its surface.
		slogger().Debug("bridge: dropped stale frame signal", "id", id)
		return
	}

	if !entry.pending.CompareAndSwap(false, true) {
		return // update already queued
	}
	b.post(func() {
		// Clear before running so a frame published during update
		// queues the next one instead of being lost.
		entry.pending.Store(false)
		entry.update()
	})
}

// Registered reports whether the ID currently maps to a live surface.
func (b *Bridge) Registered(id SurfaceID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[id]
	return ok
}
