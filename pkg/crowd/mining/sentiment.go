package mining

import (
	"github.com/jonreiter/govader"
)

// Analyzer scores the polarity of a short text span. Compound scores lie
// in [-1, 1]; zero means neutral.
type Analyzer interface {
	Compound(text string) (float64, error)
}

// VaderAnalyzer is the lexicon and rule based VADER analyzer.
type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer loads the embedded VADER lexicon.
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the VADER compound score of text.
func (v *VaderAnalyzer) Compound(text string) (float64, error) {
	return v.sia.PolarityScores(text).Compound, nil
}
