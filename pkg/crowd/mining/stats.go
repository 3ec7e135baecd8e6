package mining

import (
	"fmt"
	"sort"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/internalerr"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/stoplist"
)

// FeatureStats counts how a feature was described. Positive and Negative
// count contexts with a strictly positive or negative compound score, so
// AdjectiveCount is never below their sum.
type FeatureStats struct {
	AdjectiveCount int64 `json:"adjective_count"`
	Positive       int64 `json:"positive"`
	Negative       int64 `json:"negative"`
}

// Neutral returns the number of pairings whose context scored exactly zero.
func (s FeatureStats) Neutral() int64 {
	return s.AdjectiveCount - s.Positive - s.Negative
}

// Add returns the counter-wise sum of two stats.
func (s FeatureStats) Add(o FeatureStats) FeatureStats {
	return FeatureStats{
		AdjectiveCount: s.AdjectiveCount + o.AdjectiveCount,
		Positive:       s.Positive + o.Positive,
		Negative:       s.Negative + o.Negative,
	}
}

// Features maps a feature (a noun as produced by preprocessing) to its
// counters. Entries appear on first observation; nothing is ever removed.
type Features map[string]FeatureStats

// Record counts one adjective pairing for noun with the given compound score.
func (f Features) Record(noun string, compound float64) {
	s := f[noun]
	s.AdjectiveCount++
	switch {
	case compound > 0:
		s.Positive++
	case compound < 0:
		s.Negative++
	}
	f[noun] = s
}

// Merge adds every counter of other into f. Merging is commutative and
// associative, so partial results can be reduced in any order.
func (f Features) Merge(other Features) {
	for noun, s := range other {
		f[noun] = f[noun].Add(s)
	}
}

// Clone returns an independent copy.
func (f Features) Clone() Features {
	out := make(Features, len(f))
	for noun, s := range f {
		out[noun] = s
	}
	return out
}

// Equal reports whether both maps hold the same counters.
func (f Features) Equal(other Features) bool {
	if len(f) != len(other) {
		return false
	}
	for noun, s := range f {
		if o, ok := other[noun]; !ok || o != s {
			return false
		}
	}
	return true
}

// Check verifies the counter invariants of every feature.
func (f Features) Check() error {
	for noun, s := range f {
		if s.AdjectiveCount < 0 || s.Positive < 0 || s.Negative < 0 {
			return fmt.Errorf("%w: feature %q has a negative counter", internalerr.ErrInvalidInput, noun)
		}
		if s.Positive+s.Negative > s.AdjectiveCount {
			return fmt.Errorf("%w: feature %q has %d rated of %d mentions",
				internalerr.ErrInvalidInput, noun, s.Positive+s.Negative, s.AdjectiveCount)
		}
	}
	return nil
}

// Ranked is a feature with its counters.
type Ranked struct {
	Feature string
	FeatureStats
}

// Top returns the n most mentioned features, most mentioned first. Ties
// are ordered by feature name. n <= 0 returns every feature.
func (f Features) Top(n int) []Ranked {
	ranked := make([]Ranked, 0, len(f))
	for noun, s := range f {
		ranked = append(ranked, Ranked{Feature: noun, FeatureStats: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AdjectiveCount != ranked[j].AdjectiveCount {
			return ranked[i].AdjectiveCount > ranked[j].AdjectiveCount
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// StopwordStats summarises every feature for stopword suggestion.
func (f Features) StopwordStats() []stoplist.Stats {
	var total int64
	for _, s := range f {
		total += s.AdjectiveCount
	}

	out := make([]stoplist.Stats, 0, len(f))
	for noun, s := range f {
		st := stoplist.Stats{
			Feature:  noun,
			Mentions: s.AdjectiveCount,
			Rated:    s.Positive + s.Negative,
		}
		if total > 0 {
			st.Share = float64(s.AdjectiveCount) / float64(total)
		}
		out = append(out, st)
	}
	return out
}
