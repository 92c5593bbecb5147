package report

import "github.com/madrasa-panel/madrasa/internal/model"

// Classify derives a report's condition from its three mistake counts.
//
// Rules are applied in order and each one that fires overwrites the previous
// result, so the last crossed threshold wins. Manzil is checked last: a manzil
// count above 3 always yields Need Focus.
func Classify(sabaqMistakes, sabqiMistakes, manzilMistakes int) model.Condition {
	cond := model.ConditionGood

	if sabaqMistakes > 2 {
		cond = model.ConditionBelowAverage
	} else if sabaqMistakes > 0 {
		cond = model.ConditionMedium
	}

	if sabqiMistakes > 2 {
		cond = model.ConditionBelowAverage
	} else if sabqiMistakes > 1 {
		cond = model.ConditionMedium
	}

	if manzilMistakes > 3 {
		cond = model.ConditionNeedFocus
	} else if manzilMistakes > 1 {
		cond = model.ConditionMedium
	}

	return cond
}
