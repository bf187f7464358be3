package store

import (
	"context"
	"sync"

	"github.com/linetiles/linetiles/gas"
)

// Memory keeps spectra for the lifetime of the process.
type Memory struct {
	mu      sync.RWMutex
	spectra map[gas.SpectrumKey]gas.Spectrum
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{spectra: make(map[gas.SpectrumKey]gas.Spectrum)}
}

// Load implements gas.SpectrumBacking.
func (m *Memory) Load(_ context.Context, key gas.SpectrumKey) (gas.Spectrum, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.spectra[key]
	if !ok {
		return gas.Spectrum{}, false, nil
	}
	return clone(s), true, nil
}

// Save implements gas.SpectrumBacking.
func (m *Memory) Save(_ context.Context, key gas.SpectrumKey, s gas.Spectrum) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spectra[key] = clone(s)
	return nil
}

// Len returns the number of stored spectra.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.spectra)
}

func (m *Memory) Driver() Driver { return DriverMemory }
func (m *Memory) Close() error   { return nil }

func clone(s gas.Spectrum) gas.Spectrum {
	return gas.Spectrum{
		X: append([]float64(nil), s.X...),
		Y: append([]float64(nil), s.Y...),
	}
}
