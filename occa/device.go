// Package occa runs the reflector-generation kernel through an OCCA
// backend, exercising the same mathematical contract as the simulated
// runtime on real accelerator hardware. It requires the OCCA C library;
// callers are expected to skip when no backend is available.
package occa

import (
	"fmt"

	"github.com/notargets/gocca"
)

// NewDevice creates an OCCA device, preferring parallel backends and
// falling back to Serial.
func NewDevice() (*gocca.OCCADevice, error) {
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	var lastErr error
	for _, props := range backends {
		dev, err := gocca.NewDevice(props)
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("occa: no backend available: %w", lastErr)
}
