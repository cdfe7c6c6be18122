// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// ExtractHAL pulls the hal.Device and hal.Queue out of a shared device
// provider (e.g. a gogpu app context). The provider must implement
// HalDevice() any and HalQueue() any returning wgpu/hal types.
func ExtractHAL(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}
