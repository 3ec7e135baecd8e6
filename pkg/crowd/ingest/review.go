package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/internalerr"
)

// Review is one record of a persisted review corpus. Field names follow the
// Steam appreviews payload so downloaded pages can be stored as-is.
type Review struct {
	RecommendationID string `json:"recommendationid,omitempty"`
	Language         string `json:"language,omitempty"`
	Text             string `json:"review"`
	TimestampCreated int64  `json:"timestamp_created,omitempty"`
	VotedUp          bool   `json:"voted_up"`
	VotesUp          int    `json:"votes_up,omitempty"`
}

// Validate checks if the review text can be tokenized. Records decoded by
// LoadCorpus are checked on their raw bytes first, since encoding/json
// replaces invalid UTF-8 with U+FFFD.
func (r *Review) Validate() error {
	if !utf8.ValidString(r.Text) {
		return fmt.Errorf("%w: review text is not valid UTF-8", internalerr.ErrInvalidInput)
	}
	return nil
}

// decodeReview decodes a single corpus record. The review field must be
// present and a string; every other field is optional.
func decodeReview(raw json.RawMessage) (Review, error) {
	if !utf8.Valid(raw) {
		return Review{}, fmt.Errorf("%w: record is not valid UTF-8", internalerr.ErrInvalidInput)
	}

	var probe struct {
		Text *string `json:"review"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Review{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidInput, err)
	}
	if probe.Text == nil {
		return Review{}, fmt.Errorf("%w: review field is required", internalerr.ErrInvalidInput)
	}

	var r Review
	if err := json.Unmarshal(raw, &r); err != nil {
		return Review{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidInput, err)
	}
	if err := r.Validate(); err != nil {
		return Review{}, err
	}
	return r, nil
}

// Texts returns the raw review strings in corpus order.
func Texts(reviews []Review) []string {
	texts := make([]string, len(reviews))
	for i, r := range reviews {
		texts[i] = r.Text
	}
	return texts
}

var errEmptyCorpus = errors.New("corpus contains no valid reviews")
