// Package soil acquires soil readings from a serial moisture probe and
// a pluggable nutrient source.
package soil

import "context"

// Reading is a single soil measurement. Moisture comes from the live
// (or mocked) sensor; N/P/K come from the configured nutrient source.
type Reading struct {
	Moisture int
	N        float32
	P        float32
	K        float32
}

// MoistureSource produces moisture readings. Implementations never
// surface read errors to the caller: a failed read degrades to the
// configured default value.
type MoistureSource interface {
	Read(ctx context.Context) int
	Close() error
}

// NutrientSource produces N/P/K values for a reading.
type NutrientSource interface {
	Sample() (n, p, k float32)
}

var _ MoistureSource = (*SerialMoisture)(nil)
var _ MoistureSource = (*MockMoisture)(nil)
var _ NutrientSource = (*RandomNutrients)(nil)
var _ NutrientSource = (*FixedNutrients)(nil)

// Sampler composes exactly one moisture source and one nutrient source
// into full readings.
type Sampler struct {
	moisture  MoistureSource
	nutrients NutrientSource
}

// NewSampler creates a sampler over the given sources.
func NewSampler(m MoistureSource, n NutrientSource) *Sampler {
	return &Sampler{moisture: m, nutrients: n}
}

// Acquire takes a fresh reading. It blocks for the duration of the
// moisture read.
func (s *Sampler) Acquire(ctx context.Context) Reading {
	n, p, k := s.nutrients.Sample()
	return Reading{
		Moisture: s.moisture.Read(ctx),
		N:        n,
		P:        p,
		K:        k,
	}
}

// Close releases the underlying moisture transport.
func (s *Sampler) Close() error {
	return s.moisture.Close()
}
