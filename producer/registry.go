// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package producer

import (
	"errors"
	"sort"
	"sync"
)

// Options carries producer configuration passed to registered factories.
// Not every backend uses every field.
type Options struct {
	// URI is the media location (file, rtsp, http). Backends that
	// generate frames internally ignore it.
	URI string

	// TargetFPS caps the frame rate a backend delivers. Zero means the
	// backend's native rate.
	TargetFPS float64
}

// Factory creates a configured Provider.
type Factory func(opts Options) (Provider, error)

// RegistryEntry represents a registered producer backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines auto-selection order (higher = preferred).
	Priority int

	// Factory creates provider instances.
	Factory Factory

	// Available reports if the backend can run on this system. Called
	// during selection; nil means always available.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages registered producer backends. Backends register
// themselves from init so hosts select them by name without importing
// the backend package directly.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry. Most code should use the
// global registry via Register and NewProvider.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds a backend to the global registry. Registering an
// existing name replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority
// (highest first).
func List() []string {
	return globalRegistry.List()
}

// NewProvider creates a provider using a specific named backend from
// the global registry.
func NewProvider(name string, opts Options) (Provider, error) {
	return globalRegistry.NewProvider(name, opts)
}

// NewBestProvider creates a provider using the highest-priority
// available backend.
func NewBestProvider(opts Options) (Provider, error) {
	return globalRegistry.NewBestProvider(opts)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// NewProvider creates a provider using a specific backend.
func (r *Registry) NewProvider(name string, opts Options) (Provider, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return entry.Factory(opts)
}

// NewBestProvider creates a provider using the highest-priority
// available backend, falling through on factory errors.
func (r *Registry) NewBestProvider(opts Options) (Provider, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	var lastErr error
	for _, name := range available {
		p, err := r.NewProvider(name, opts)
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoBackendAvailable
}

// sortedNames returns backend names sorted by priority (highest first).
// If onlyAvailable is true, filters to available backends only.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type entry struct {
		name     string
		priority int
	}

	entries := make([]entry, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, entry{name: name, priority: e.Priority})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Registry errors.
var (
	// ErrNoBackendAvailable is returned when no producer backends are
	// registered or available on the current system.
	ErrNoBackendAvailable = errors.New("producer: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "producer: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but cannot run on
// this system.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "producer: backend unavailable: " + e.Name
}
