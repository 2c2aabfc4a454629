// Package recommend computes water and fertilizer quantities for a
// selected crop from a soil reading, and renders them for the display
// and speech sinks.
package recommend

import (
	"github.com/chewxy/math32"

	"github.com/agrolab/soilanalyzer/pkg/crop"
	"github.com/agrolab/soilanalyzer/pkg/soil"
)

// quantityFactor converts a moisture or nitrogen deficit into liters
// of water / kilos of fertilizer per square meter.
const quantityFactor = 0.05

// Kind classifies a recommendation result.
type Kind int

const (
	Healthy Kind = iota
	WaterOnly
	FertilizerOnly
	Both
)

func (k Kind) String() string {
	switch k {
	case Healthy:
		return "healthy"
	case WaterOnly:
		return "water"
	case FertilizerOnly:
		return "fertilizer"
	case Both:
		return "water+fertilizer"
	default:
		return "unknown"
	}
}

// Result holds the computed quantities. Both are rounded to one
// decimal and never negative.
type Result struct {
	Water      float32 // liters per square meter
	Fertilizer float32 // kilos per square meter
	Kind       Kind
}

// Evaluate computes the recommendation for a crop and reading. A
// moisture value above the crop's dry threshold means the soil is too
// dry; nitrogen below the crop's target calls for fertilizer.
func Evaluate(p crop.Profile, r soil.Reading) Result {
	var res Result

	if r.Moisture > p.DryThreshold {
		res.Water = round1(float32(r.Moisture-p.DryThreshold) * quantityFactor)
	}
	if r.N < p.TargetN {
		res.Fertilizer = round1((p.TargetN - r.N) * quantityFactor)
	}

	switch {
	case res.Water == 0 && res.Fertilizer == 0:
		res.Kind = Healthy
	case res.Water > 0 && res.Fertilizer > 0:
		res.Kind = Both
	case res.Water > 0:
		res.Kind = WaterOnly
	default:
		res.Kind = FertilizerOnly
	}

	return res
}

// round1 rounds half away from zero to one decimal place.
func round1(v float32) float32 {
	return math32.Round(v*10) / 10
}
