package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Options controls review preprocessing.
type Options struct {
	LowerCase     bool // case-fold review text before tokenizing
	MinimumLength int  // drop reviews with fewer word tokens; 0 keeps everything
	Workers       int  // parallel tokenizers; values below 1 mean 1
}

// Preprocessor turns raw review text into sentence and word tokens.
// It holds no per-review state, so one Preprocessor can serve many workers.
type Preprocessor struct {
	sentences SentenceSplitter
	words     WordTokenizer
	opts      Options
	logger    *slog.Logger
}

// NewPreprocessor creates a preprocessor from the given tokenizers.
func NewPreprocessor(sentences SentenceSplitter, words WordTokenizer, opts Options) *Preprocessor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Preprocessor{
		sentences: sentences,
		words:     words,
		opts:      opts,
		logger:    slog.Default(),
	}
}

// NewDefaultPreprocessor uses the Punkt sentence splitter and the Treebank
// word tokenizer.
func NewDefaultPreprocessor(opts Options) *Preprocessor {
	return NewPreprocessor(NewPunktSplitter(), NewTreebankTokenizer(), opts)
}

// SetLogger replaces the logger used for dropped-review warnings.
func (p *Preprocessor) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Options returns the preprocessing options in effect.
func (p *Preprocessor) Options() Options {
	return p.opts
}

// TokenizeReview splits one review into sentences of word tokens. The
// second result is false when the review is shorter than MinimumLength.
func (p *Preprocessor) TokenizeReview(text string) (TokenizedReview, bool) {
	if p.opts.LowerCase {
		text = strings.ToLower(text)
	}

	sentences := p.sentences.Split(text)
	review := make(TokenizedReview, 0, len(sentences))
	tokenCount := 0
	for _, sentence := range sentences {
		tokens := p.words.Tokenize(sentence)
		tokenCount += len(tokens)
		review = append(review, Sentence(tokens))
	}

	if tokenCount < p.opts.MinimumLength {
		return nil, false
	}
	return review, true
}

// safeTokenize isolates a tokenizer fault to the review that caused it.
func (p *Preprocessor) safeTokenize(text string) (review TokenizedReview, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			review, ok, err = nil, false, fmt.Errorf("tokenizer panic: %v", r)
		}
	}()
	review, ok = p.TokenizeReview(text)
	return review, ok, nil
}

// Preprocess tokenizes every review and drops the ones below MinimumLength
// or that fail to tokenize. Output order follows input order. The only
// error is the context's, returned together with nothing processed after it.
func (p *Preprocessor) Preprocess(ctx context.Context, reviews []string) ([]TokenizedReview, error) {
	slots := make([]TokenizedReview, len(reviews))
	kept := make([]bool, len(reviews))

	process := func(i int) {
		review, ok, err := p.safeTokenize(reviews[i])
		if err != nil {
			p.logger.Warn("dropping review that failed to tokenize", "index", i, "error", err)
			return
		}
		slots[i], kept[i] = review, ok
	}

	var err error
	if p.opts.Workers == 1 || len(reviews) < 2 {
		for i := range reviews {
			if err = ctx.Err(); err != nil {
				break
			}
			process(i)
		}
	} else {
		err = runIndexed(ctx, len(reviews), p.opts.Workers, process)
	}

	out := make([]TokenizedReview, 0, len(reviews))
	for i := range slots {
		if kept[i] {
			out = append(out, slots[i])
		}
	}
	return out, err
}

// runIndexed feeds 0..n-1 to a fixed pool of workers. Each index is
// handled by exactly one worker, so fn may write to index-owned slots.
func runIndexed(ctx context.Context, n, workers int, fn func(i int)) error {
	if workers > n {
		workers = n
	}

	queue := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				fn(i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case queue <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(queue)
	wg.Wait()
	return err
}
