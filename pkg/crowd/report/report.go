package report

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/mining"
)

// Builder constructs feature reports
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Report is the ranked feature summary of one corpus.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

// Entry is one reported feature.
type Entry struct {
	Feature  string `json:"feature"`
	Positive int64  `json:"positive"`
	Negative int64  `json:"negative"`
	Total    int64  `json:"total"`

	// PercentPositive is only meaningful when Rated is true.
	PercentPositive float64 `json:"-"`
	Rated           bool    `json:"-"`
}

// PercentPositive returns 100*pos/(pos+neg). The second result is false
// when the feature has no rated mentions at all.
func PercentPositive(pos, neg int64) (float64, bool) {
	if pos+neg == 0 {
		return 0, false
	}
	return 100 * float64(pos) / float64(pos+neg), true
}

// Build ranks features by mention count and keeps the top n (n <= 0 keeps all).
func (b *Builder) Build(title string, features mining.Features, n int) Report {
	b.mu.Lock()
	now := b.now()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	top := features.Top(n)
	r := Report{
		ID:          id,
		Title:       title,
		GeneratedAt: now.UTC(),
		Entries:     make([]Entry, 0, len(top)),
	}
	for _, f := range top {
		pct, rated := PercentPositive(f.Positive, f.Negative)
		r.Entries = append(r.Entries, Entry{
			Feature:         f.Feature,
			Positive:        f.Positive,
			Negative:        f.Negative,
			Total:           f.AdjectiveCount,
			PercentPositive: pct,
			Rated:           rated,
		})
	}
	return r
}

// FormatPercent renders the entry's percent positive, or N/A.
func (e Entry) FormatPercent() string {
	if !e.Rated {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", e.PercentPositive)
}

// WriteText prints the report in its human-readable form.
func WriteText(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Feature report for %s:\n\n", r.Title); err != nil {
		return err
	}
	for _, e := range r.Entries {
		_, err := fmt.Fprintf(w, "%s (%s positive)\npositive = %d, negative = %d, total = %d\n\n",
			e.Feature, e.FormatPercent(), e.Positive, e.Negative, e.Total)
		if err != nil {
			return err
		}
	}
	return nil
}

type jsonEntry struct {
	Entry
	PercentPositive *float64 `json:"percent_positive"`
}

type jsonReport struct {
	Report
	Entries []jsonEntry `json:"entries"`
}

// WriteJSON writes the report as indented JSON. Unrated features have a
// null percent_positive.
func WriteJSON(w io.Writer, r Report) error {
	out := jsonReport{Report: r, Entries: make([]jsonEntry, len(r.Entries))}
	for i, e := range r.Entries {
		je := jsonEntry{Entry: e}
		if e.Rated {
			pct := e.PercentPositive
			je.PercentPositive = &pct
		}
		out.Entries[i] = je
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
