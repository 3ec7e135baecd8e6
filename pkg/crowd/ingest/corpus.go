package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// LoadCorpus reads a corpus file: one JSON array of review objects per
// catalog item. Records that are not valid reviews are skipped with a
// warning; a file that cannot be read or is not a JSON array is an error.
func LoadCorpus(path string, logger *slog.Logger) ([]Review, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}

	reviews := make([]Review, 0, len(records))
	for i, raw := range records {
		r, err := decodeReview(raw)
		if err != nil {
			logger.Warn("skipping malformed review", "path", path, "index", i, "error", err)
			continue
		}
		reviews = append(reviews, r)
	}

	if len(reviews) == 0 && len(records) > 0 {
		return nil, fmt.Errorf("%s: %w", path, errEmptyCorpus)
	}

	return reviews, nil
}

// WriteCorpus stores reviews as a JSON array, creating parent directories.
func WriteCorpus(path string, reviews []Review) error {
	if reviews == nil {
		reviews = []Review{}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create corpus directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(reviews, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write corpus %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
