// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package producer

import (
	"errors"
	"testing"
)

type nopImage struct{}

func (nopImage) SetFrameListener(FrameListener) {}
func (nopImage) UpdateImage() error             { return nil }
func (nopImage) Transform(dst *[16]float32) {
	*dst = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}
func (nopImage) Release() error { return nil }

type nopProvider struct{}

func (nopProvider) Open(target TextureWriter) (Image, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	return nopImage{}, nil
}

func nopFactory(Options) (Provider, error) { return nopProvider{}, nil }

// TestRegistryRegister tests backend registration.
func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("test", 50, nopFactory, nil)

	p, err := r.NewProvider("test", Options{})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p == nil {
		t.Fatal("NewProvider returned nil provider")
	}
}

// TestRegistryUnregister tests backend removal.
func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("test", 50, nopFactory, nil)
	r.Unregister("test")

	_, err := r.NewProvider("test", Options{})
	var notFound *BackendNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected BackendNotFoundError, got %v", err)
	}
}

// TestRegistryUnavailable tests that unavailable backends are rejected.
func TestRegistryUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Register("off", 50, nopFactory, func() bool { return false })

	_, err := r.NewProvider("off", Options{})
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
}

// TestRegistryListPriorityOrder tests priority-ordered listing.
func TestRegistryListPriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("low", 10, nopFactory, nil)
	r.Register("high", 100, nopFactory, nil)
	r.Register("mid", 50, nopFactory, nil)

	names := r.List()
	want := []string{"high", "mid", "low"}
	if len(names) != len(want) {
		t.Fatalf("List returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

// TestNewBestProviderFallsThrough tests that factory errors fall through
// to the next available backend.
func TestNewBestProviderFallsThrough(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", 100, func(Options) (Provider, error) {
		return nil, errors.New("boom")
	}, nil)
	r.Register("working", 10, nopFactory, nil)

	p, err := r.NewBestProvider(Options{})
	if err != nil {
		t.Fatalf("NewBestProvider failed: %v", err)
	}
	if p == nil {
		t.Fatal("NewBestProvider returned nil provider")
	}
}

// TestNewBestProviderEmpty tests the empty-registry error.
func TestNewBestProviderEmpty(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewBestProvider(Options{})
	if !errors.Is(err, ErrNoBackendAvailable) {
		t.Fatalf("expected ErrNoBackendAvailable, got %v", err)
	}
}
