package usecases

import (
	"math"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

// Indicator labels, in display order.
const (
	LabelRelevance          = "Response Relevance"
	LabelHistoricalAccuracy = "Historical Accuracy"
	LabelSourceQuality      = "Source Quality"
)

// DeriveIndicators turns backend scores into display indicators.
// Nothing is invented: a score the backend did not send is reported as not
// provided with value 0, and so is any value outside [0,1].
func DeriveIndicators(scores *entities.Scores) []entities.Indicator {
	var s entities.Scores
	if scores != nil {
		s = *scores
	}
	return []entities.Indicator{
		indicator(LabelRelevance, s.Relevance),
		indicator(LabelHistoricalAccuracy, s.HistoricalAccuracy),
		indicator(LabelSourceQuality, s.SourceQuality),
	}
}

func indicator(label string, v *float64) entities.Indicator {
	value, ok := normalizeScore(v)
	return entities.Indicator{Label: label, Value: value, Provided: ok}
}

func normalizeScore(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || *v < 0 || *v > 1 {
		return 0, false
	}
	return *v, true
}
