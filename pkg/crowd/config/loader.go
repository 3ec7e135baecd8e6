package config

import (
	"fmt"
	"log/slog"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/ingest"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/mining"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/stoplist"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	SettingsPath string
	StoplistPath string // overrides the stoplist named in the settings
	EnvFile      string
	Logger       *slog.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Settings     Settings
	Stoplist     *stoplist.Set
	Preprocessor *ingest.Preprocessor
	Miner        *mining.Miner
}

// Pipeline wires the loaded preprocessor and miner together.
func (c *Components) Pipeline() *mining.Pipeline {
	return mining.NewPipeline(c.Preprocessor, c.Miner)
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	settings := DefaultSettings()
	if l.SettingsPath != "" {
		s, err := LoadSettings(l.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		settings = *s
	}
	if err := settings.ApplyEnv(l.EnvFile); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	comp := &Components{Settings: settings}

	stopPath := settings.Stoplist
	if l.StoplistPath != "" {
		stopPath = l.StoplistPath
	}
	if stopPath != "" {
		sl, err := LoadStoplist(stopPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stoplist = stoplist.NewSet(sl.Terms)
	} else {
		comp.Stoplist = stoplist.Default()
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	comp.Preprocessor = ingest.NewDefaultPreprocessor(ingest.Options{
		LowerCase:     settings.LowerCase,
		MinimumLength: settings.MinimumLength,
		Workers:       settings.Workers,
	})
	comp.Preprocessor.SetLogger(logger)

	comp.Miner = mining.NewDefaultMiner(comp.Stoplist)
	comp.Miner.SetWorkers(settings.Workers)
	comp.Miner.SetLogger(logger)

	return comp, nil
}
