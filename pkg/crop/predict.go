package crop

// Sample carries the soil parameters the prediction tree evaluates.
type Sample struct {
	N        float32
	P        float32
	K        float32
	PH       float32
	Moisture int
}

// Prediction is the crop suggested for a soil sample, with a localized
// label for the speech sink.
type Prediction struct {
	Label      string
	LocalLabel string
}

// Predict maps a soil sample to the best-suited crop using a fixed
// decision tree. Branch order matters: the first matching branch wins,
// so a sample satisfying several conditions always resolves to the
// earliest one.
func Predict(s Sample) Prediction {
	switch {
	case s.Moisture < 250:
		return Prediction{Label: "Rice", LocalLabel: "Dhaan"}
	case s.N > 80:
		return Prediction{Label: "Cotton", LocalLabel: "Kapas"}
	case s.PH < 5.5:
		return Prediction{Label: "Potato", LocalLabel: "Aloo"}
	case s.N <= 30:
		return Prediction{Label: "Legumes", LocalLabel: "Dalhan"}
	default:
		return Prediction{Label: "Maize", LocalLabel: "Makka"}
	}
}
