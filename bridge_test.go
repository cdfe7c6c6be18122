package videosurface

import (
	"sync"
	"testing"
)

// renderQueue captures posted closures so tests can service them like a
// render thread would.
type renderQueue struct {
	mu     sync.Mutex
	queue  []func()
	posted int
}

func (q *renderQueue) post(f func()) {
	q.mu.Lock()
	q.queue = append(q.queue, f)
	q.posted++
	q.mu.Unlock()
}

// drain runs all queued closures in order.
func (q *renderQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return
		}
		f := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		f()
	}
}

func (q *renderQueue) postedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.posted
}

func TestBridgeNotifyDeliversUpdate(t *testing.T) {
	rq := &renderQueue{}
	b := NewBridge(rq.post)

	updates := 0
	id := b.Register(func() { updates++ })

	b.NotifyFrameAvailable(id)
	rq.drain()

	if updates != 1 {
		t.Errorf("updates = %d, want 1", updates)
	}
}

func TestBridgeCoalescesBurst(t *testing.T) {
	rq := &renderQueue{}
	b := NewBridge(rq.post)

	updates := 0
	id := b.Register(func() { updates++ })

	// A burst between two render-thread services posts exactly once.
	for i := 0; i < 50; i++ {
		b.NotifyFrameAvailable(id)
	}
	if got := rq.postedCount(); got != 1 {
		t.Fatalf("posted closures = %d, want 1", got)
	}
	rq.drain()
	if updates != 1 {
		t.Errorf("updates = %d, want 1", updates)
	}

	// After servicing, the next notification posts again.
	b.NotifyFrameAvailable(id)
	if got := rq.postedCount(); got != 2 {
		t.Errorf("posted closures after service = %d, want 2", got)
	}
}

func TestBridgeCoalescesConcurrentBurst(t *testing.T) {
	rq := &renderQueue{}
	b := NewBridge(rq.post)
	id := b.Register(func() {})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.NotifyFrameAvailable(id)
			}
		}()
	}
	wg.Wait()

	if got := rq.postedCount(); got != 1 {
		t.Errorf("posted closures = %d, want 1", got)
	}
}

func TestBridgeNotifyDuringUpdateQueuesNext(t *testing.T) {
	rq := &renderQueue{}
	b := NewBridge(rq.post)

	var id SurfaceID
	updates := 0
	id = b.Register(func() {
		updates++
		if updates == 1 {
			// A frame published while the update runs must not be lost.
			b.NotifyFrameAvailable(id)
		}
	})

	b.NotifyFrameAvailable(id)
	rq.drain()

	if updates != 2 {
		t.Errorf("updates = %d, want 2", updates)
	}
}

func TestBridgeStaleNotificationDropped(t *testing.T) {
	rq := &renderQueue{}
	b := NewBridge(rq.post)

	id := b.Register(func() { t.Error("update ran for unregistered surface") })
	b.Unregister(id)

	b.NotifyFrameAvailable(id)
	if got := rq.postedCount(); got != 0 {
		t.Errorf("posted closures = %d, want 0", got)
	}

	// Fully unknown IDs are equally harmless.
	b.NotifyFrameAvailable(SurfaceID{})
	rq.drain()
}

func TestBridgeRegistered(t *testing.T) {
	b := NewBridge(func(f func()) {})

	id := b.Register(func() {})
	if !b.Registered(id) {
		t.Error("Registered() = false for live surface")
	}
	b.Unregister(id)
	if b.Registered(id) {
		t.Error("Registered() = true after Unregister")
	}
}
