// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gst provides a GStreamer-backed frame producer. Any URI
// uridecodebin can handle (file, http, rtsp) is decoded, converted to
// RGBA and scaled to the target texture size; the appsink keeps only
// the most recent frame, so the render thread always pulls the newest
// one.
//
// The backend registers itself as "gst". It requires the GStreamer
// runtime libraries; registration marks it unavailable when they are
// missing, so NewBestProvider falls through to other backends.
package gst

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/gogpu/videosurface/producer"
)

// ErrNoURI is returned when Open is called without a media URI.
var ErrNoURI = errors.New("gst: no media URI configured")

func init() {
	producer.Register("gst", 50, func(opts producer.Options) (producer.Provider, error) {
		return New(opts), nil
	}, available)
}

// available probes for a usable GStreamer runtime.
func available() bool {
	gst.Init(nil)
	elem, err := gst.NewElement("uridecodebin")
	if err != nil {
		return false
	}
	elem.SetState(gst.StateNull)
	return true
}

// Provider opens GStreamer decode pipelines.
type Provider struct {
	uri string
	fps float64
}

// New returns a Provider decoding opts.URI, rate-limited to
// opts.TargetFPS when non-zero.
func New(opts producer.Options) *Provider {
	return &Provider{uri: opts.URI, fps: opts.TargetFPS}
}

// Open builds the decode pipeline sized to the target texture and sets
// it playing. Frames start flowing as soon as uridecodebin has
// negotiated the stream.
func (p *Provider) Open(target producer.TextureWriter) (producer.Image, error) {
	if target == nil {
		return nil, producer.ErrNilTarget
	}
	if p.uri == "" {
		return nil, ErrNoURI
	}

	w, h := target.Size()
	elements, err := buildPipeline(pipelineConfig{
		URI:       p.uri,
		Width:     w,
		Height:    h,
		TargetFPS: p.fps,
	})
	if err != nil {
		return nil, err
	}

	img := &image{
		target:   target,
		elements: elements,
		width:    w,
		height:   h,
	}
	elements.AppSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: img.onNewSample,
	})

	if err := elements.Pipeline.SetState(gst.StatePlaying); err != nil {
		_ = destroyPipeline(elements)
		return nil, err
	}

	slogger().Info("gst: pipeline playing", "uri", p.uri, "size", [2]int{w, h})
	return img, nil
}

// image is the producer-side handle for one playing pipeline. The
// appsink streaming thread publishes decoded frames into a single-slot
// mailbox; UpdateImage drains it from the render thread. A frame
// arriving before its predecessor was consumed overwrites it and
// counts a drop.
type image struct {
	target   producer.TextureWriter
	elements *pipelineElements
	width    int
	height   int

	mu       sync.Mutex
	latest   []byte
	consumed bool
	listener producer.FrameListener

	drops    atomic.Uint64
	released atomic.Bool
}

// onNewSample runs on the GStreamer streaming thread for every decoded
// frame. The buffer is copied out (GStreamer reuses it), published to
// the mailbox, and the listener notified outside the lock.
func (m *image) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		// A single failed pull should not kill the stream.
		slogger().Warn("gst: failed to pull sample, skipping frame")
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		slogger().Warn("gst: sample without buffer, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slogger().Warn("gst: empty buffer received")
		return gst.FlowOK
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	buffer.Unmap()

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
	return gst.FlowOK
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

// Transform fills dst with the identity: videoconvert and videoscale
// deliver frames in the texture's own orientation and size.
func (m *image) Transform(dst *[16]float32) {
	*dst = [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Release stops the pipeline. At most once.
func (m *image) Release() error {
	if m.released.Swap(true) {
		return producer.ErrImageReleased
	}
	if err := destroyPipeline(m.elements); err != nil {
		return err
	}
	slogger().Info("gst: pipeline stopped")
	return nil
}

// Drops returns the number of frames overwritten before consumption.
func (m *image) Drops() uint64 { return m.drops.Load() }
