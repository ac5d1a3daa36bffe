package scoring

import "math"

// PsychologyReport is the market-mood summary derived from the bundle's
// aggregate sentiment, the winning verdict's intensity, and coordination.
type PsychologyReport struct {
	Mood           string  // "Euforia", "Medo", or "Neutro"
	SentimentScore float64 // rounded to 3 decimals, display value
	RawSentiment   float64 // pre-rounding, for downstream classifier use
	IsCrowded      bool
	IsTrap         bool
	AsymmetryLevel string // "ALTA" or "BAIXA"
}

// AnalyzePsychology implements the mood-band, crowding and trap thresholds.
func AnalyzePsychology(sentiments []float64, winnerIntensity, coordination float64) PsychologyReport {
	avg := mean(sentiments)

	mood := "Neutro"
	if avg > 0.2 {
		mood = "Euforia"
	} else if avg < -0.2 {
		mood = "Medo"
	}

	isCrowded := winnerIntensity > 0.7 && math.Abs(avg) > 0.6
	isTrap := coordination > 0.5 && math.Abs(avg) > 0.7

	asymmetry := "BAIXA"
	if isTrap || !isCrowded {
		asymmetry = "ALTA"
	}

	return PsychologyReport{
		Mood:           mood,
		SentimentScore: round3(avg),
		RawSentiment:   avg,
		IsCrowded:      isCrowded,
		IsTrap:         isTrap,
		AsymmetryLevel: asymmetry,
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
