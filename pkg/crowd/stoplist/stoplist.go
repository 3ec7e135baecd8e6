package stoplist

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultFeatureStops are nouns that show up often as features but tell a
// reader nothing about the product.
var DefaultFeatureStops = []string{
	"game",
	"games",
	"i",
	"thing",
	"things",
	"stuff",
	"fun",
	"way",
	"edition",
	"play",
	"review",
	"☐", // checkbox glyph from copy-pasted review templates
}

// invalidCharacters matches ASCII symbols that may not appear anywhere in a feature.
var invalidCharacters = regexp.MustCompile(`[@_!#$%^&*()<>?/\|}{~:]`)

// Set is a read-only collection of stopword features. It is safe for
// concurrent use because nothing mutates it after NewSet returns.
type Set struct {
	stops map[string]struct{}
}

// NewSet creates a stopword set. Terms are stored lower-cased.
func NewSet(terms []string) *Set {
	stops := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		stops[strings.ToLower(t)] = struct{}{}
	}
	return &Set{stops: stops}
}

// Default returns a set built from DefaultFeatureStops.
func Default() *Set {
	return NewSet(DefaultFeatureStops)
}

// IsStop reports whether the noun is a stopword feature. The lookup ignores case.
func (s *Set) IsStop(noun string) bool {
	_, ok := s.stops[strings.ToLower(noun)]
	return ok
}

// HasInvalidCharacters reports whether the noun contains a disallowed symbol.
func HasInvalidCharacters(noun string) bool {
	return invalidCharacters.MatchString(noun)
}

// Excluded reports whether a noun must never be recorded as a feature.
func (s *Set) Excluded(noun string) bool {
	return s.IsStop(noun) || HasInvalidCharacters(noun)
}

// Len returns the number of stopword features.
func (s *Set) Len() int {
	return len(s.stops)
}

// All returns all stopword features in sorted order
func (s *Set) All() []string {
	result := make([]string, 0, len(s.stops))
	for t := range s.stops {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

// Stats describes how a mined feature was talked about.
type Stats struct {
	Feature  string
	Mentions int64 // adjective pairings
	Rated    int64 // pairings with a non-neutral context
	Share    float64
}

// Candidate is a feature that looks like a stopword.
type Candidate struct {
	Feature string
	Score   float64
}

// Thresholds defines criteria for stopword feature suggestions
type Thresholds struct {
	MinShare        float64 // fraction of all mentions, e.g. 0.05
	MaxRatedPercent float64 // rated mentions as a percentage of all mentions
}

// DefaultThresholds returns sensible default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinShare:        0.05,
		MaxRatedPercent: 35,
	}
}

// SuggestCandidates suggests features that dominate the mentions while
// rarely carrying an opinion, the profile of "game" or "thing". Results
// are ordered by score, highest first.
func (s *Set) SuggestCandidates(stats []Stats, th Thresholds) []Candidate {
	var candidates []Candidate
	for _, st := range stats {
		if st.Mentions == 0 || s.Excluded(st.Feature) {
			continue
		}
		ratedPct := 100 * float64(st.Rated) / float64(st.Mentions)
		if st.Share < th.MinShare || ratedPct > th.MaxRatedPercent {
			continue
		}
		score := (st.Share + (1 - ratedPct/100)) / 2
		candidates = append(candidates, Candidate{Feature: st.Feature, Score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Feature < candidates[j].Feature
	})
	return candidates
}
