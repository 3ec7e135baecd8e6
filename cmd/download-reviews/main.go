package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gosuri/uiprogress"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/internal/logging"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/internal/steam"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/config"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/ingest"
)

// Dota 2, PUBG, CS:GO, Warframe, Rainbow Six Siege
const defaultApps = "570,578080,730,230410,359550"

func main() {
	var (
		apps       = flag.String("apps", defaultApps, "Comma-separated Steam app IDs")
		outDir     = flag.String("out", "reviews", "Output directory, one <app>.json per app")
		settings   = flag.String("config", "", "Optional: settings YAML file")
		envFile    = flag.String("env-file", "", "Optional: .env file to load")
		maxPages   = flag.Int("max-pages", 0, "Maximum pages per app (0 = all)")
		noProgress = flag.Bool("no-progress", false, "Disable the progress bar")
	)
	flag.Parse()

	appIDs, err := parseAppIDs(*apps)
	if err != nil {
		log.Fatalf("invalid -apps: %v", err)
	}

	cfg := config.DefaultSettings()
	if *settings != "" {
		s, err := config.LoadSettings(*settings)
		if err != nil {
			log.Fatalf("load settings: %v", err)
		}
		cfg = *s
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		log.Fatalf("apply environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	logger := logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := clientOptions(cfg, *maxPages)
	opts.Logger = logger
	client := steam.NewClient(opts)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	var bar *uiprogress.Bar
	if !*noProgress {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(appIDs))
		bar.AppendCompleted()
		bar.PrependElapsed()
	}

	var incomplete []int
	total := 0
	for _, appID := range appIDs {
		res, err := client.Download(ctx, appID)
		if err != nil {
			if bar != nil {
				uiprogress.Stop()
			}
			log.Fatalf("download cancelled at app %d: %v", appID, err)
		}

		path := corpusPath(*outDir, appID)
		if err := ingest.WriteCorpus(path, res.Reviews); err != nil {
			if bar != nil {
				uiprogress.Stop()
			}
			log.Fatalf("write %s: %v", path, err)
		}

		if !res.Complete {
			incomplete = append(incomplete, appID)
		}
		total += len(res.Reviews)
		logger.Info("downloaded app", "app", appID, "reviews", len(res.Reviews), "pages", res.Pages, "complete", res.Complete, "path", path)
		if bar != nil {
			bar.Incr()
		}
	}
	if bar != nil {
		uiprogress.Stop()
	}

	fmt.Printf("Downloaded %d reviews for %d apps into %s\n", total, len(appIDs), *outDir)
	if len(incomplete) > 0 {
		fmt.Printf("Incomplete downloads: %s\n", joinInts(incomplete))
		stop()
		os.Exit(1)
	}
}

func clientOptions(cfg config.Settings, maxPages int) steam.Options {
	policy := steam.DefaultPolicy()
	policy.MaxAttempts = cfg.Source.MaxAttempts
	if cfg.Source.InitialBackoff > 0 {
		policy.InitialBackoff = cfg.Source.InitialBackoff
	}
	if cfg.Source.RateLimitBackoff > 0 {
		policy.RateLimitBackoff = cfg.Source.RateLimitBackoff
	}

	return steam.Options{
		BaseURL:           cfg.Source.BaseURL,
		HTTPClient:        &http.Client{Timeout: cfg.Source.Timeout},
		Policy:            policy,
		RequestsPerSecond: cfg.Source.RequestsPerSecond,
		MaxPages:          maxPages,
	}
}

func parseAppIDs(s string) ([]int, error) {
	var ids []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("bad app id %q", part)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no app ids given")
	}
	return ids, nil
}

func corpusPath(dir string, appID int) string {
	return filepath.Join(dir, strconv.Itoa(appID)+".json")
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
