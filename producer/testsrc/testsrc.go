// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package testsrc provides a deterministic in-process frame producer.
// It synthesizes a moving gradient pattern on its own goroutine at a
// fixed rate, making it suitable for examples, benchmarks and tests
// that need producer-thread behavior without a camera or media stack.
//
// The backend registers itself as "testsrc" with low priority.
package testsrc

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/videosurface/producer"
)

// DefaultFPS is the frame rate used when Options.TargetFPS is zero.
const DefaultFPS = 30.0

func init() {
	producer.Register("testsrc", 10, func(opts producer.Options) (producer.Provider, error) {
		return New(opts), nil
	}, nil)
}

// Provider creates synthetic test images.
type Provider struct {
	fps float64
}

// New returns a Provider generating frames at opts.TargetFPS
// (DefaultFPS if zero).
func New(opts producer.Options) *Provider {
	fps := opts.TargetFPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Provider{fps: fps}
}

// Open starts a generator goroutine producing frames sized to the
// target texture.
func (p *Provider) Open(target producer.TextureWriter) (producer.Image, error) {
	if target == nil {
		return nil, producer.ErrNilTarget
	}

	w, h := target.Size()
	img := &image{
		target: target,
		width:  w,
		height: h,
		stop:   make(chan struct{}),
	}
	img.done.Add(1)
	go img.run(time.Duration(float64(time.Second) / p.fps))
	return img, nil
}

// image is a synthetic producer-side image. Frames are generated on the
// run goroutine; the latest one is held in a single-slot mailbox that
// UpdateImage drains from the render thread. A new frame arriving
// before the previous one was consumed overwrites it and counts a drop.
type image struct {
	target producer.TextureWriter
	width  int
	height int

	mu       sync.Mutex
	latest   []byte
	consumed bool
	listener producer.FrameListener

	seq      atomic.Uint64
	drops    atomic.Uint64
	released atomic.Bool

	stop chan struct{}
	done sync.WaitGroup
}

func (m *image) run(interval time.Duration) {
	defer m.done.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.publish(m.render())
		}
	}
}

// render synthesizes one RGBA frame: a horizontal gradient whose phase
// advances with the sequence number, so consecutive frames differ.
func (m *image) render() []byte {
	seq := m.seq.Add(1)
	buf := make([]byte, m.width*m.height*4)
	phase := int(seq % 256)
	for y := 0; y < m.height; y++ {
		row := y * m.width * 4
		for x := 0; x < m.width; x++ {
			i := row + x*4
			buf[i+0] = byte((x + phase) & 0xff)
			buf[i+1] = byte(y & 0xff)
			buf[i+2] = byte(phase)
			buf[i+3] = 0xff
		}
	}
	return buf
}

// publish stores the frame in the mailbox, overwriting an unconsumed
// predecessor, and notifies the listener outside the lock.
func (m *image) publish(frame []byte) {
	m.mu.Lock()
	if m.latest != nil && !m.consumed {
		m.drops.Add(1)
	}
	m.latest = frame
	m.consumed = false
	fn := m.listener
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// SetFrameListener registers the frame-ready callback.
func (m *image) SetFrameListener(fn producer.FrameListener) {
	m.mu.Lock()
	m.listener = fn
	m.mu.Unlock()
}

// UpdateImage writes the latest unconsumed frame into the bound
// texture. A no-op when no new frame arrived since the last call.
func (m *image) UpdateImage() error {
	if m.released.Load() {
		return producer.ErrImageReleased
	}

	m.mu.Lock()
	frame := m.latest
	fresh := !m.consumed
	m.consumed = true
	m.mu.Unlock()

	if frame == nil || !fresh {
		return nil
	}
	return m.target.WriteRGBA(frame, m.width, m.height)
}

// Transform fills dst with the identity: testsrc frames are generated
// in the texture's own orientation and size.
func (m *image) Transform(dst *[16]float32) {
	*dst = [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Release stops the generator goroutine. At most once.
func (m *image) Release() error {
	if m.released.Swap(true) {
		return producer.ErrImageReleased
	}
	close(m.stop)
	m.done.Wait()
	return nil
}

// Drops returns the number of frames overwritten before consumption.
func (m *image) Drops() uint64 { return m.drops.Load() }
