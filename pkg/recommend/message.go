package recommend

import (
	"fmt"
	"strconv"

	"github.com/agrolab/soilanalyzer/pkg/crop"
)

// LanguageHindi selects the Hindi speech register. Any other language
// code gets the English register (espeak-ng handles the voice).
const LanguageHindi = "hi"

// qty formats a quantity with one decimal. Display and speech both go
// through it so the two registers can never disagree on a number.
func qty(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 1, 32)
}

// DisplayLines renders the terse two-line display form of a result.
func DisplayLines(res Result) (line1, line2 string) {
	if res.Kind == Healthy {
		return "Soil healthy!", "No inputs needed"
	}
	return "Water: " + qty(res.Water) + "L", "Manure: " + qty(res.Fertilizer) + "Kg"
}

// Speech renders the spoken form of a result. When one quantity is
// zero and the other is not, the zero side gets an explicit
// "sufficient" confirmation.
func Speech(p crop.Profile, res Result, lang string) string {
	if lang == LanguageHindi {
		return speechHindi(p, res)
	}
	return speechEnglish(p, res)
}

func speechEnglish(p crop.Profile, res Result) string {
	msg := fmt.Sprintf("Result for %s per square meter. ", p.Name)

	if res.Kind == Healthy {
		return msg + "Soil is healthy. No water or fertilizer is needed."
	}

	if res.Water > 0 {
		msg += fmt.Sprintf("Add %s liters of water. ", qty(res.Water))
	} else {
		msg += "Water is sufficient. "
	}

	if res.Fertilizer > 0 {
		msg += fmt.Sprintf("Add %s kilos of %s fertilizer.", qty(res.Fertilizer), p.Fertilizer)
	} else {
		msg += "No fertilizer is needed."
	}

	return msg
}

func speechHindi(p crop.Profile, res Result) string {
	name := p.LocalName
	if name == "" {
		name = p.Name
	}

	if res.Kind == Healthy {
		return fmt.Sprintf("%s ke liye mitti swasth hai. Paani aur khaad ki avashyakta nahi hai.", name)
	}

	msg := fmt.Sprintf("%s ke liye parinaam prati varg meter. ", name)

	if res.Water > 0 {
		msg += fmt.Sprintf("%s litre paani daalein. ", qty(res.Water))
	} else {
		msg += "Paani paryaapt hai. "
	}

	if res.Fertilizer > 0 {
		msg += fmt.Sprintf("%s kilo %s khaad daalein.", qty(res.Fertilizer), p.Fertilizer)
	} else {
		msg += "Khaad ki avashyakta nahi hai."
	}

	return msg
}

// PredictionLines renders the two-line display form of a crop
// prediction.
func PredictionLines(pred crop.Prediction) (line1, line2 string) {
	return "Best crop:", "> " + pred.Label
}

// PredictionSpeech renders the spoken form of a crop prediction.
func PredictionSpeech(pred crop.Prediction, lang string) string {
	if lang == LanguageHindi {
		label := pred.LocalLabel
		if label == "" {
			label = pred.Label
		}
		return fmt.Sprintf("Is mitti ke liye sabse acchi fasal %s hai.", label)
	}
	return fmt.Sprintf("The best crop for this soil is %s.", pred.Label)
}
