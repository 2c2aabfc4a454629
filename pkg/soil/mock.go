package soil

import (
	"context"
	"math/rand"

	"github.com/agrolab/soilanalyzer/pkg/config"
)

// MockMoisture substitutes for the serial probe when no sensor
// transport is available. Values are uniform over [min, max].
type MockMoisture struct {
	min, max int
}

// NewMockMoisture creates a mock moisture source over the given range.
func NewMockMoisture(min, max int) *MockMoisture {
	return &MockMoisture{min: min, max: max}
}

// Read returns a random moisture value within the configured range.
func (m *MockMoisture) Read(_ context.Context) int {
	return m.min + rand.Intn(m.max-m.min+1)
}

// Close is a no-op for the mock source.
func (m *MockMoisture) Close() error {
	return nil
}

// RandomNutrients generates random N/P/K values, used when no nutrient
// sensors are fitted.
type RandomNutrients struct {
	min, max int
}

// NewRandomNutrients creates a randomized nutrient source over the
// given integer range.
func NewRandomNutrients(min, max int) *RandomNutrients {
	return &RandomNutrients{min: min, max: max}
}

// Sample returns random N/P/K values within the configured range.
func (r *RandomNutrients) Sample() (n, p, k float32) {
	span := r.max - r.min + 1
	n = float32(r.min + rand.Intn(span))
	p = float32(r.min + rand.Intn(span))
	k = float32(r.min + rand.Intn(span))
	return n, p, k
}

// FixedNutrients returns the same configured N/P/K on every sample.
type FixedNutrients struct {
	N, P, K float32
}

// Sample returns the fixed N/P/K values.
func (f FixedNutrients) Sample() (n, p, k float32) {
	return f.N, f.P, f.K
}

// NewNutrientSource selects the nutrient strategy from configuration.
func NewNutrientSource(cfg config.SensorConfig) NutrientSource {
	if cfg.Nutrients == config.NutrientsFixed {
		return FixedNutrients{N: cfg.FixedN, P: cfg.FixedP, K: cfg.FixedK}
	}
	return NewRandomNutrients(cfg.MockNutrientMin, cfg.MockNutrientMax)
}
