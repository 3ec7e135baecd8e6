package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gosuri/uiprogress"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/internal/logging"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/config"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/ingest"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/mining"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/report"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/stoplist"
)

type options struct {
	Inputs       []string
	Title        string
	TopN         int
	JSON         bool
	SuggestStops bool
	Progress     bool
}

func main() {
	var (
		settings     = flag.String("config", "", "Optional: settings YAML file")
		stoplistCfg  = flag.String("stoplist", "", "Optional: stopword feature YAML file (overrides config)")
		envFile      = flag.String("env-file", "", "Optional: .env file to load")
		title        = flag.String("title", "", "Report title (default: input file name)")
		topN         = flag.Int("top", -1, "Features to report (default: top_n from config, 0 = all)")
		jsonOut      = flag.Bool("json", false, "Write JSON instead of text")
		suggestStops = flag.Bool("suggest-stops", false, "Also list features that look like stopwords")
		noProgress   = flag.Bool("no-progress", false, "Disable the progress bar")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: feature-report [flags] <reviews.json>...")
	}

	loader := config.Loader{
		SettingsPath: *settings,
		StoplistPath: *stoplistCfg,
		EnvFile:      *envFile,
	}
	comp, err := loader.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Init(comp.Settings.Log.Level, comp.Settings.Log.Format, os.Stderr)
	comp.Preprocessor.SetLogger(logger)
	comp.Miner.SetLogger(logger)

	opts := options{
		Inputs:       flag.Args(),
		Title:        *title,
		TopN:         *topN,
		JSON:         *jsonOut,
		SuggestStops: *suggestStops,
		Progress:     !*noProgress,
	}
	if opts.TopN < 0 {
		opts.TopN = comp.Settings.TopN
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, comp, opts, os.Stdout); err != nil {
		stop()
		log.Fatal(err)
	}
}

func run(ctx context.Context, comp *config.Components, opts options, out io.Writer) error {
	builder := report.New()
	pipeline := comp.Pipeline()

	for _, input := range opts.Inputs {
		reviews, err := ingest.LoadCorpus(input, nil)
		if err != nil {
			return fmt.Errorf("load %s: %w", input, err)
		}

		res, err := mineCorpus(ctx, pipeline, reviews, opts.Progress)
		if err != nil {
			return fmt.Errorf("mine %s: %w", input, err)
		}
		slog.Info("mined corpus", "input", input, "reviews", res.Reviews, "dropped", res.Dropped, "features", len(res.Features))
		if res.SkippedSentences > 0 {
			slog.Warn("skipped sentences", "input", input, "skipped", res.SkippedSentences, "sentences", res.Sentences)
		}

		r := builder.Build(titleFor(input, opts.Title), res.Features, opts.TopN)
		if opts.JSON {
			err = report.WriteJSON(out, r)
		} else {
			err = report.WriteText(out, r)
		}
		if err != nil {
			return err
		}

		if opts.SuggestStops {
			writeSuggestions(out, pipeline.Miner().Stoplist(), res.Features)
		}
	}
	return nil
}

// mineCorpus runs the pipeline with a progress bar over the kept reviews.
func mineCorpus(ctx context.Context, pipeline *mining.Pipeline, reviews []ingest.Review, progress bool) (mining.Result, error) {
	if !progress {
		return pipeline.Run(ctx, reviews)
	}

	tokenized, err := pipeline.Preprocessor().Preprocess(ctx, ingest.Texts(reviews))
	if err != nil {
		return mining.Result{}, err
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(len(tokenized))
	bar.AppendCompleted()
	bar.PrependElapsed()

	miner := pipeline.Miner()
	miner.SetProgress(func() { bar.Incr() })
	defer miner.SetProgress(nil)

	res, err := miner.Mine(ctx, tokenized)
	uiprogress.Stop()

	// Preprocessing ran to completion, so every missing review was filtered.
	res.Dropped = len(reviews) - len(tokenized)
	return res, err
}

func writeSuggestions(out io.Writer, stops *stoplist.Set, features mining.Features) {
	candidates := stops.SuggestCandidates(features.StopwordStats(), stoplist.DefaultThresholds())
	if len(candidates) == 0 {
		fmt.Fprintln(out, "No stopword feature candidates.")
		return
	}
	fmt.Fprintln(out, "Stopword feature candidates:")
	for _, c := range candidates {
		fmt.Fprintf(out, "  %s (score %.3f)\n", c.Feature, c.Score)
	}
	fmt.Fprintln(out)
}

// titleFor names a report after its corpus file, e.g. reviews/570.json -> 570.
func titleFor(input, title string) string {
	if title != "" {
		return title
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
