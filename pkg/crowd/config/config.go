package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"gopkg.in/yaml.v3"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/internalerr"
)

// Settings represents the run configuration
type Settings struct {
	LowerCase     bool   `yaml:"lower_case"`
	MinimumLength int    `yaml:"minimum_length"`
	TopN          int    `yaml:"top_n"`
	Workers       int    `yaml:"workers"`
	Stoplist      string `yaml:"stoplist"`
	Source        Source `yaml:"source"`
	Log           Log    `yaml:"log"`
}

// Source configures the review download client.
type Source struct {
	BaseURL           string        `yaml:"base_url"`
	MaxAttempts       int           `yaml:"max_attempts"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	RateLimitBackoff  time.Duration `yaml:"rate_limit_backoff"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		TopN:    10,
		Workers: 1,
		Source: Source{
			BaseURL:           "https://store.steampowered.com",
			MaxAttempts:       10,
			InitialBackoff:    time.Second,
			RateLimitBackoff:  30 * time.Second,
			RequestsPerSecond: 1,
			Timeout:           30 * time.Second,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// LoadSettings loads settings from a YAML file. Keys missing from the file
// keep their defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	return &s, nil
}

// Validate checks the settings for values the pipeline cannot run with.
func (s *Settings) Validate() error {
	switch {
	case s.MinimumLength < 0:
		return fmt.Errorf("%w: minimum_length must be >= 0, got %d", internalerr.ErrInvalidConfig, s.MinimumLength)
	case s.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d", internalerr.ErrInvalidConfig, s.Workers)
	case s.Source.MaxAttempts < 1:
		return fmt.Errorf("%w: source.max_attempts must be >= 1, got %d", internalerr.ErrInvalidConfig, s.Source.MaxAttempts)
	case s.Source.RequestsPerSecond < 0:
		return fmt.Errorf("%w: source.requests_per_second must be >= 0", internalerr.ErrInvalidConfig)
	}
	return nil
}

// envSettings lists the environment overrides. Every field is a string so
// an unset variable can be told apart from a zero value.
type envSettings struct {
	LowerCase     string `env:"CROWD_LOWER_CASE"`
	MinimumLength string `env:"CROWD_MINIMUM_LENGTH"`
	TopN          string `env:"CROWD_TOP_N"`
	Workers       string `env:"CROWD_WORKERS"`
	Stoplist      string `env:"CROWD_STOPLIST"`
	BaseURL       string `env:"CROWD_STEAM_BASE_URL"`
	LogLevel      string `env:"CROWD_LOG_LEVEL"`
	LogFormat     string `env:"CROWD_LOG_FORMAT"`
}

// ApplyEnv overlays CROWD_* environment variables onto s. When envFile is
// not empty it is loaded first; variables already set in the process win.
func (s *Settings) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var e envSettings
	if err := env.Load(&e, nil); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	if e.LowerCase != "" {
		v, err := strconv.ParseBool(e.LowerCase)
		if err != nil {
			return fmt.Errorf("%w: CROWD_LOWER_CASE: %v", internalerr.ErrInvalidConfig, err)
		}
		s.LowerCase = v
	}
	for _, o := range []struct {
		name  string
		value string
		dst   *int
	}{
		{"CROWD_MINIMUM_LENGTH", e.MinimumLength, &s.MinimumLength},
		{"CROWD_TOP_N", e.TopN, &s.TopN},
		{"CROWD_WORKERS", e.Workers, &s.Workers},
	} {
		if o.value == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(o.value))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, o.name, err)
		}
		*o.dst = v
	}

	if e.Stoplist != "" {
		s.Stoplist = e.Stoplist
	}
	if e.BaseURL != "" {
		s.Source.BaseURL = e.BaseURL
	}
	if e.LogLevel != "" {
		s.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		s.Log.Format = e.LogFormat
	}
	return nil
}

// Stoplist represents the stopword feature list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopword features from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	return &sl, nil
}
