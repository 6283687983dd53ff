// Package sentiment scores message text with the VADER lexicon model.
// Scoring happens once, at collection time, so the analysis pipeline only
// ever sees precomputed compound values and stays deterministic.
package sentiment

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Compound returns the VADER compound polarity of text in [-1, 1].
// Empty text is neutral.
func Compound(text string) float64 {
	if text == "" {
		return 0
	}
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound
}
