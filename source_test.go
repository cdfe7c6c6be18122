package videosurface

import (
	"errors"
	"testing"

	"github.com/gogpu/videosurface/internal/gpu"
)

func newTestSource(t *testing.T) (*ImageSource, *fakeImage, func()) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)

	tex, err := gpu.CreateExternalTexture(device, queue, 32, 32, "test")
	if err != nil {
		cleanup()
		t.Fatalf("CreateExternalTexture failed: %v", err)
	}
	img := newFakeImage()
	src, err := newImageSource(&fakeProvider{img: img}, tex)
	if err != nil {
		_ = tex.Destroy()
		cleanup()
		t.Fatalf("newImageSource failed: %v", err)
	}
	return src, img, func() {
		_ = src.Release()
		_ = tex.Destroy()
		cleanup()
	}
}

func TestImageSourcePullLatestFrame(t *testing.T) {
	src, img, cleanup := newTestSource(t)
	defer cleanup()

	m, err := src.PullLatestFrame()
	if err != nil {
		t.Fatalf("PullLatestFrame failed: %v", err)
	}
	if m != IdentityMat4() {
		t.Errorf("transform = %v, want identity", m)
	}
	if img.updateCount() != 1 {
		t.Errorf("producer updates = %d, want 1", img.updateCount())
	}
}

func TestImageSourcePullError(t *testing.T) {
	src, img, cleanup := newTestSource(t)
	defer cleanup()

	img.updateErr = errors.New("decoder stall")
	if _, err := src.PullLatestFrame(); !errors.Is(err, img.updateErr) {
		t.Errorf("PullLatestFrame error = %v, want wrapped decoder error", err)
	}
}

func TestImageSourceReleaseOnce(t *testing.T) {
	src, img, cleanup := newTestSource(t)
	defer cleanup()

	if err := src.Release(); err != nil {
		t.Fatalf("first Release failed: %v", err)
	}
	if !img.isReleased() {
		t.Error("producer image not released")
	}
	if err := src.Release(); !errors.Is(err, ErrSourceReleased) {
		t.Errorf("second Release error = %v, want ErrSourceReleased", err)
	}
	if _, err := src.PullLatestFrame(); !errors.Is(err, ErrSourceReleased) {
		t.Errorf("PullLatestFrame after Release error = %v, want ErrSourceReleased", err)
	}
}

func TestImageSourceOpenFailure(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tex, err := gpu.CreateExternalTexture(device, queue, 32, 32, "test")
	if err != nil {
		t.Fatalf("CreateExternalTexture failed: %v", err)
	}
	defer func() { _ = tex.Destroy() }()

	_, err = newImageSource(&fakeProvider{openErr: errors.New("device busy")}, tex)
	if !errors.Is(err, ErrProducerUnavailable) {
		t.Errorf("newImageSource error = %v, want ErrProducerUnavailable", err)
	}
}
