package mining

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/ingest"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/internalerr"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/stoplist"
)

// Miner pairs adjectives with their nearest noun and scores each pairing.
// The stoplist is only read, so one Miner is safe to share across workers
// as long as its Tagger and Analyzer are.
type Miner struct {
	tagger   Tagger
	analyzer Analyzer
	stops    *stoplist.Set
	workers  int
	logger   *slog.Logger
	progress func()
}

// NewMiner creates a miner. A nil stoplist means stoplist.Default().
func NewMiner(tagger Tagger, analyzer Analyzer, stops *stoplist.Set) *Miner {
	if stops == nil {
		stops = stoplist.Default()
	}
	return &Miner{
		tagger:   tagger,
		analyzer: analyzer,
		stops:    stops,
		workers:  1,
		logger:   slog.Default(),
	}
}

// NewDefaultMiner uses the perceptron tagger and the VADER analyzer.
func NewDefaultMiner(stops *stoplist.Set) *Miner {
	return NewMiner(NewPerceptronTagger(), NewVaderAnalyzer(), stops)
}

// SetWorkers sets how many reviews are mined concurrently.
func (m *Miner) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	m.workers = n
}

// SetLogger replaces the logger used for skipped sentences.
func (m *Miner) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// SetProgress registers a hook called once per mined review. With more
// than one worker it is called concurrently.
func (m *Miner) SetProgress(fn func()) {
	m.progress = fn
}

// Stoplist returns the stopword features the miner filters.
func (m *Miner) Stoplist() *stoplist.Set {
	return m.stops
}

// Result holds the features of one run plus bookkeeping counts.
type Result struct {
	Features         Features
	Reviews          int // reviews mined
	Dropped          int // reviews removed by preprocessing (Pipeline only)
	Sentences        int // sentences mined
	SkippedSentences int // sentences that failed to tag or score
}

func newResult() Result {
	return Result{Features: make(Features)}
}

func (r *Result) merge(o Result) {
	r.Features.Merge(o.Features)
	r.Reviews += o.Reviews
	r.Dropped += o.Dropped
	r.Sentences += o.Sentences
	r.SkippedSentences += o.SkippedSentences
}

// Summarise mines reviews and returns only the features.
func (m *Miner) Summarise(ctx context.Context, reviews []ingest.TokenizedReview) (Features, error) {
	res, err := m.Mine(ctx, reviews)
	return res.Features, err
}

// Mine mines every review. Failures are isolated per sentence and never
// abort the run. If ctx is cancelled, Mine stops taking new reviews and
// returns what was accumulated together with ctx.Err().
func (m *Miner) Mine(ctx context.Context, reviews []ingest.TokenizedReview) (Result, error) {
	if m.workers == 1 || len(reviews) < 2 {
		res := newResult()
		for _, review := range reviews {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			m.mineReview(review, &res)
		}
		return res, nil
	}

	return m.mineParallel(ctx, reviews)
}

// mineParallel gives each worker its own partial Result and reduces them
// once all workers are done.
func (m *Miner) mineParallel(ctx context.Context, reviews []ingest.TokenizedReview) (Result, error) {
	workers := m.workers
	if workers > len(reviews) {
		workers = len(reviews)
	}

	queue := make(chan ingest.TokenizedReview)
	partials := make([]Result, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		partials[w] = newResult()
		wg.Add(1)
		go func(part *Result) {
			defer wg.Done()
			for review := range queue {
				m.mineReview(review, part)
			}
		}(&partials[w])
	}

	var err error
feed:
	for _, review := range reviews {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case queue <- review:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(queue)
	wg.Wait()

	res := newResult()
	for _, part := range partials {
		res.merge(part)
	}
	return res, err
}

func (m *Miner) mineReview(review ingest.TokenizedReview, res *Result) {
	for i, sentence := range review {
		res.Sentences++
		if err := m.mineSentence(sentence, res.Features); err != nil {
			res.SkippedSentences++
			m.logger.Warn("skipping sentence", "sentence", i, "tokens", len(sentence), "error", err)
		}
	}
	res.Reviews++
	if m.progress != nil {
		m.progress()
	}
}

// mineSentence records the pairings of one sentence into features. The
// sentence is mined into a scratch map first so a failure part way through
// leaves features untouched.
func (m *Miner) mineSentence(sentence ingest.Sentence, features Features) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", internalerr.ErrTagging, r)
		}
	}()

	if len(sentence) == 0 {
		return nil
	}

	tagged, err := m.tagger.Tag(sentence)
	if err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrTagging, err)
	}
	if len(tagged) != len(sentence) {
		return fmt.Errorf("%w: got %d tags for %d tokens", internalerr.ErrTagging, len(tagged), len(sentence))
	}

	local := make(Features)
	for index, token := range tagged {
		if !IsAdjective(token.Tag) {
			continue
		}

		noun, ok := NearestNoun(tagged, index)
		if !ok {
			continue
		}
		feature := tagged[noun].Text
		if m.stops.Excluded(feature) {
			continue
		}

		compound, err := m.analyzer.Compound(Context(tagged, index, noun))
		if err != nil {
			return fmt.Errorf("score %q: %w", feature, err)
		}
		local.Record(feature, compound)
	}

	features.Merge(local)
	return nil
}
