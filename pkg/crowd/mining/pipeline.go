package mining

import (
	"context"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/ingest"
)

// Pipeline orchestrates the full summarisation flow:
// review records → sentence/word tokens → adjective/noun pairings
type Pipeline struct {
	preprocessor *ingest.Preprocessor
	miner        *Miner
}

// NewPipeline creates a pipeline with the given components
func NewPipeline(preprocessor *ingest.Preprocessor, miner *Miner) *Pipeline {
	return &Pipeline{
		preprocessor: preprocessor,
		miner:        miner,
	}
}

// Preprocessor returns the pipeline's preprocessor.
func (p *Pipeline) Preprocessor() *ingest.Preprocessor {
	return p.preprocessor
}

// Miner returns the pipeline's miner.
func (p *Pipeline) Miner() *Miner {
	return p.miner
}

// Run preprocesses and mines one corpus. The returned Result always holds
// whatever was mined, even when ctx is cancelled part way. Dropped is only
// set once preprocessing has finished.
func (p *Pipeline) Run(ctx context.Context, reviews []ingest.Review) (Result, error) {
	tokenized, err := p.preprocessor.Preprocess(ctx, ingest.Texts(reviews))
	if err != nil {
		// Dropped stays zero: unprocessed reviews were never filtered.
		return newResult(), err
	}

	res, err := p.miner.Mine(ctx, tokenized)
	res.Dropped = len(reviews) - len(tokenized)
	return res, err
}
