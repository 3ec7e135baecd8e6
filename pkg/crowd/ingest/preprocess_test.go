package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// periodSplitter splits on '.' so tests do not depend on the Punkt model.
type periodSplitter struct{}

func (periodSplitter) Split(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(sentence string) []string {
	return strings.Fields(sentence)
}

// panicTokenizer fails on any sentence containing "boom".
type panicTokenizer struct{}

func (panicTokenizer) Tokenize(sentence string) []string {
	if strings.Contains(sentence, "boom") {
		panic("tokenizer exploded")
	}
	return strings.Fields(sentence)
}

func newTestPreprocessor(opts Options) *Preprocessor {
	return NewPreprocessor(periodSplitter{}, fieldsTokenizer{}, opts)
}

func TestTokenizeReviewSentences(t *testing.T) {
	p := newTestPreprocessor(Options{})

	review, ok := p.TokenizeReview("Great graphics. Bad sound design")
	if !ok {
		t.Fatal("review should be kept")
	}
	if len(review) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(review))
	}
	if strings.Join(review[0], " ") != "Great graphics" {
		t.Errorf("Unexpected first sentence: %v", review[0])
	}
	if review.TokenCount() != 5 {
		t.Errorf("Expected 5 tokens, got %d", review.TokenCount())
	}
}

func TestTokenizeReviewLowerCase(t *testing.T) {
	p := newTestPreprocessor(Options{LowerCase: true})
	review, _ := p.TokenizeReview("GREAT Graphics")
	if review[0][0] != "great" || review[0][1] != "graphics" {
		t.Errorf("Tokens should be lower-cased, got %v", review[0])
	}

	p = newTestPreprocessor(Options{})
	review, _ = p.TokenizeReview("GREAT Graphics")
	if review[0][0] != "GREAT" {
		t.Errorf("Case should be preserved by default, got %v", review[0])
	}
}

func TestMinimumLengthBoundary(t *testing.T) {
	p := newTestPreprocessor(Options{MinimumLength: 5})

	// 4 tokens across two sentences
	if _, ok := p.TokenizeReview("one two. three four"); ok {
		t.Error("review with 4 tokens should be dropped")
	}

	// exactly 5 tokens across two sentences
	if _, ok := p.TokenizeReview("one two. three four five"); !ok {
		t.Error("review with exactly 5 tokens should be kept")
	}
}

func TestEmptyReview(t *testing.T) {
	p := newTestPreprocessor(Options{})
	review, ok := p.TokenizeReview("")
	if !ok {
		t.Fatal("empty review should be kept when MinimumLength is 0")
	}
	if len(review) != 0 {
		t.Errorf("Expected zero sentences, got %d", len(review))
	}

	p = newTestPreprocessor(Options{MinimumLength: 1})
	if _, ok := p.TokenizeReview(""); ok {
		t.Error("empty review should be dropped when MinimumLength is 1")
	}
}

func TestPreprocessFiltersAndKeepsOrder(t *testing.T) {
	p := newTestPreprocessor(Options{MinimumLength: 3})

	reviews := []string{
		"first review has words",
		"too short",
		"third review. also long",
		"",
	}
	out, err := p.Preprocess(context.Background(), reviews)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 reviews, got %d", len(out))
	}
	if out[0][0][0] != "first" || out[1][0][0] != "third" {
		t.Errorf("Order not preserved: %v", out)
	}
}

func TestPreprocessParallelMatchesSequential(t *testing.T) {
	var reviews []string
	for i := 0; i < 200; i++ {
		reviews = append(reviews, fmt.Sprintf("review %d has %s words. and more", i, strings.Repeat("x ", i%7)))
	}

	seq, err := newTestPreprocessor(Options{MinimumLength: 8}).Preprocess(context.Background(), reviews)
	if err != nil {
		t.Fatal(err)
	}
	par, err := newTestPreprocessor(Options{MinimumLength: 8, Workers: 4}).Preprocess(context.Background(), reviews)
	if err != nil {
		t.Fatal(err)
	}

	if len(seq) != len(par) {
		t.Fatalf("Sequential kept %d, parallel kept %d", len(seq), len(par))
	}
	for i := range seq {
		if fmt.Sprint(seq[i]) != fmt.Sprint(par[i]) {
			t.Fatalf("Review %d differs: %v vs %v", i, seq[i], par[i])
		}
	}
}

func TestPreprocessIsolatesTokenizerPanic(t *testing.T) {
	p := NewPreprocessor(periodSplitter{}, panicTokenizer{}, Options{Workers: 2})

	out, err := p.Preprocess(context.Background(), []string{"good one", "boom goes this", "good two"})
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected the panicking review to be dropped, got %d reviews", len(out))
	}
}

func TestPreprocessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPreprocessor(Options{})
	out, err := p.Preprocess(ctx, []string{"a b", "c d"})
	if err == nil {
		t.Fatal("Expected context error")
	}
	if len(out) != 0 {
		t.Errorf("Expected no output after cancellation, got %d", len(out))
	}
}

func TestDefaultTokenizers(t *testing.T) {
	p := NewDefaultPreprocessor(Options{LowerCase: true})

	review, ok := p.TokenizeReview("The graphics are amazing but the controls are terrible.")
	if !ok {
		t.Fatal("review should be kept")
	}
	if len(review) != 1 {
		t.Fatalf("Expected 1 sentence, got %d: %v", len(review), review)
	}

	want := []string{"the", "graphics", "are", "amazing", "but", "the", "controls", "are", "terrible", "."}
	if strings.Join(review[0], "|") != strings.Join(want, "|") {
		t.Errorf("Unexpected tokens: %q", review[0])
	}
}
