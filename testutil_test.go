package videosurface

import (
	"sync"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/videosurface/producer"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// testDeviceHandle implements DeviceHandle plus the HAL accessors the
// surface extracts, backed by a noop device.
type testDeviceHandle struct {
	dev   hal.Device
	queue hal.Queue
}

func newTestDeviceHandle(t *testing.T) (*testDeviceHandle, func()) {
	t.Helper()
	dev, queue, cleanup := createNoopDevice(t)
	return &testDeviceHandle{dev: dev, queue: queue}, cleanup
}

func (h *testDeviceHandle) Device() gpucontext.Device             { return nil }
func (h *testDeviceHandle) Queue() gpucontext.Queue               { return nil }
func (h *testDeviceHandle) Adapter() gpucontext.Adapter           { return nil }
func (h *testDeviceHandle) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }
func (h *testDeviceHandle) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (h *testDeviceHandle) HalDevice() any                        { return h.dev }
func (h *testDeviceHandle) HalQueue() any                         { return h.queue }

// fakeImage implements producer.Image with scripted behavior.
type fakeImage struct {
	mu        sync.Mutex
	listener  producer.FrameListener
	transform [16]float32

	updates   int
	released  bool
	updateErr error

	// onRelease runs inside Release, before the released flag is
	// visible, so tests can assert teardown ordering.
	onRelease func()
}

func newFakeImage() *fakeImage {
	f := &fakeImage{}
	f.transform = [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	return f
}

func (f *fakeImage) SetFrameListener(fn producer.FrameListener) {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
}

func (f *fakeImage) notify() {
	f.mu.Lock()
	fn := f.listener
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (f *fakeImage) UpdateImage() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	return nil
}

func (f *fakeImage) Transform(dst *[16]float32) {
	f.mu.Lock()
	*dst = f.transform
	f.mu.Unlock()
}

func (f *fakeImage) setTransform(m [16]float32) {
	f.mu.Lock()
	f.transform = m
	f.mu.Unlock()
}

func (f *fakeImage) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

func (f *fakeImage) Release() error {
	f.mu.Lock()
	hook := f.onRelease
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	f.mu.Lock()
	f.released = true
	f.mu.Unlock()
	return nil
}

func (f *fakeImage) isReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// fakeProvider implements producer.Provider returning a scripted image.
type fakeProvider struct {
	img     *fakeImage
	openErr error
	opened  int
	target  producer.TextureWriter
}

func (p *fakeProvider) Open(target producer.TextureWriter) (producer.Image, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.opened++
	p.target = target
	return p.img, nil
}
