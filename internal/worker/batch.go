package worker

import (
	"context"
	"fmt"

	"github.com/avetisyan-lab/citewell/internal/model"
)

// Matcher defines the interface for ranking claims against a sentence
type Matcher interface {
	FindSimilarClaims(ctx context.Context, sentence string, threshold float64) []model.SimilarClaim
}

// MatchJob ranks existing claims against one manuscript sentence
type MatchJob struct {
	Key       string // Result key, e.g. "sentence_0"
	Sentence  string
	Threshold float64
	Matcher   Matcher
}

// Execute executes the match job
func (j *MatchJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &MatchResult{Key: j.Key, Err: err}
	}
	matches := j.Matcher.FindSimilarClaims(ctx, j.Sentence, j.Threshold)
	return &MatchResult{
		Key:     j.Key,
		Matches: matches,
	}
}

// MatchResult is the ranked claim list for one sentence
type MatchResult struct {
	Key     string
	Matches []model.SimilarClaim
	Err     error
}

// GetError returns the error from the match result
func (r *MatchResult) GetError() error {
	return r.Err
}

// BatchMatcher ranks claims for many sentences concurrently
type BatchMatcher struct {
	matcher     Matcher
	concurrency int
}

// NewBatchMatcher creates a new batch matcher
func NewBatchMatcher(matcher Matcher, concurrency int) *BatchMatcher {
	return &BatchMatcher{
		matcher:     matcher,
		concurrency: concurrency,
	}
}

// MatchSentences ranks claims for each sentence concurrently. Results are
// keyed "sentence_{index}" by input position; a failed sentence maps to an
// empty slice, never aborting the batch.
func (b *BatchMatcher) MatchSentences(ctx context.Context, sentences []string, threshold float64) map[string][]model.SimilarClaim {
	out := make(map[string][]model.SimilarClaim, len(sentences))
	if len(sentences) == 0 {
		return out
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, sentence := range sentences {
		pool.Submit(&MatchJob{
			Key:       fmt.Sprintf("sentence_%d", i),
			Sentence:  sentence,
			Threshold: threshold,
			Matcher:   b.matcher,
		})
	}

	results := pool.Wait()

	// Every key is present even when its sentence failed
	for i := range sentences {
		out[fmt.Sprintf("sentence_%d", i)] = []model.SimilarClaim{}
	}
	for _, result := range results {
		mr, ok := result.(*MatchResult)
		if !ok || mr.Err != nil {
			continue
		}
		if mr.Matches != nil {
			out[mr.Key] = mr.Matches
		}
	}

	return out
}
