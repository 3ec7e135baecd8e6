package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/config"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/ingest"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/mining"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/stoplist"
)

func TestTitleFor(t *testing.T) {
	tests := []struct {
		input string
		title string
		want  string
	}{
		{"reviews/570.json", "", "570"},
		{"570", "", "570"},
		{"/tmp/a.b.json", "", "a.b"},
		{"reviews/570.json", "Dota 2", "Dota 2"},
	}

	for _, tt := range tests {
		if got := titleFor(tt.input, tt.title); got != tt.want {
			t.Errorf("titleFor(%q, %q) = %q, want %q", tt.input, tt.title, got, tt.want)
		}
	}
}

func TestWriteSuggestions(t *testing.T) {
	features := mining.Features{
		"menu":     {AdjectiveCount: 50, Positive: 1},
		"graphics": {AdjectiveCount: 40, Positive: 30, Negative: 8},
	}

	var buf bytes.Buffer
	writeSuggestions(&buf, stoplist.Default(), features)
	if !strings.Contains(buf.String(), "menu") {
		t.Errorf("Expected menu as a candidate, got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "graphics") {
		t.Errorf("graphics is well rated and should not be suggested:\n%s", buf.String())
	}

	buf.Reset()
	writeSuggestions(&buf, stoplist.Default(), mining.Features{})
	if !strings.Contains(buf.String(), "No stopword feature candidates") {
		t.Errorf("Unexpected output for empty features: %q", buf.String())
	}
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "570.json")
	reviews := []ingest.Review{
		{RecommendationID: "1", Text: "The graphics are amazing but the controls are terrible."},
		{RecommendationID: "2", Text: "Great story and a beautiful soundtrack."},
		{RecommendationID: "3", Text: "ok"},
	}
	if err := ingest.WriteCorpus(path, reviews); err != nil {
		t.Fatal(err)
	}
	return path
}

type entry struct {
	Feature         string   `json:"feature"`
	Positive        int64    `json:"positive"`
	Negative        int64    `json:"negative"`
	Total           int64    `json:"total"`
	PercentPositive *float64 `json:"percent_positive"`
}

func TestRunText(t *testing.T) {
	t.Setenv("CROWD_LOWER_CASE", "true")
	comp, err := (&config.Loader{}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var buf bytes.Buffer
	err = run(context.Background(), comp, options{Inputs: []string{writeCorpus(t)}, TopN: 5}, &buf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Feature report for 570:\n\n") {
		t.Errorf("Unexpected report header:\n%s", out)
	}
	for _, want := range []string{
		"graphics (100.00% positive)\npositive = 1, negative = 0, total = 1\n",
		"controls (0.00% positive)\npositive = 0, negative = 1, total = 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report is missing %q:\n%s", want, out)
		}
	}
}

func TestRunJSON(t *testing.T) {
	t.Setenv("CROWD_LOWER_CASE", "true")
	comp, err := (&config.Loader{}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var buf bytes.Buffer
	opts := options{Inputs: []string{writeCorpus(t)}, Title: "Dota 2", JSON: true}
	if err := run(context.Background(), comp, opts, &buf); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var decoded struct {
		Title   string  `json:"title"`
		Entries []entry `json:"entries"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded.Title != "Dota 2" {
		t.Errorf("Unexpected title %q", decoded.Title)
	}

	byFeature := make(map[string]entry)
	for _, e := range decoded.Entries {
		byFeature[e.Feature] = e
	}

	controls, ok := byFeature["controls"]
	if !ok {
		t.Fatalf("controls missing from report: %+v", decoded.Entries)
	}
	if controls.Positive != 0 || controls.Negative != 1 || controls.Total != 1 {
		t.Errorf("Unexpected controls entry: %+v", controls)
	}
	if controls.PercentPositive == nil || *controls.PercentPositive != 0 {
		t.Errorf("controls should be 0%% positive, got %v", controls.PercentPositive)
	}

	graphics, ok := byFeature["graphics"]
	if !ok {
		t.Fatalf("graphics missing from report: %+v", decoded.Entries)
	}
	if graphics.Positive != 1 || graphics.Negative != 0 || graphics.Total != 1 {
		t.Errorf("Unexpected graphics entry: %+v", graphics)
	}
}

func TestMineCorpusCancelledDropsNothing(t *testing.T) {
	comp, err := (&config.Loader{}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reviews := []ingest.Review{{Text: "Great graphics."}, {Text: "Bad servers."}}
	for _, progress := range []bool{false, true} {
		res, err := mineCorpus(ctx, comp.Pipeline(), reviews, progress)
		if err == nil {
			t.Errorf("progress=%v: expected cancellation error", progress)
		}
		if res.Dropped != 0 {
			t.Errorf("progress=%v: unprocessed reviews counted as dropped: %d", progress, res.Dropped)
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	comp, err := (&config.Loader{}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, err := os.Stat(missing); err == nil {
		t.Fatal("file should not exist")
	}
	if err := run(context.Background(), comp, options{Inputs: []string{missing}}, &bytes.Buffer{}); err == nil {
		t.Error("Should error on missing corpus file")
	}
}
