// Package matching ranks existing claims against manuscript sentences by
// embedding similarity.
package matching

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/embedding"
	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/store"
	"github.com/avetisyan-lab/citewell/internal/vector"
	"github.com/avetisyan-lab/citewell/internal/worker"
)

// DefaultThreshold is the similarity floor applied when the caller does
// not supply one.
const DefaultThreshold = 0.5

// maxResults caps every ranking result.
const maxResults = 20

// Service ranks claims against sentences. Ranking is best-effort: every
// embedding failure degrades to "no match" for the affected claim or
// sentence, never to an error from the ranking call.
type Service struct {
	claims      *store.ClaimStore
	embedder    embedding.Embedder
	logger      *zap.Logger
	concurrency int
}

// NewService creates a matching service.
func NewService(claims *store.ClaimStore, embedder embedding.Embedder, concurrency int, logger *zap.Logger) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		claims:      claims,
		embedder:    embedder,
		logger:      logger,
		concurrency: concurrency,
	}
}

// FindSimilarClaims embeds the sentence, scores every stored claim by
// cosine similarity, keeps those at or above threshold, and returns them
// sorted descending, capped at 20. Ties keep claim iteration order. An
// unavailable sentence embedding yields an empty result.
func (s *Service) FindSimilarClaims(ctx context.Context, sentence string, threshold float64) []model.SimilarClaim {
	queryEmb, err := s.embedder.Embed(ctx, sentence)
	if err != nil || len(queryEmb) == 0 {
		if err != nil {
			s.logger.Debug("sentence embedding unavailable", zap.Error(err))
		}
		return []model.SimilarClaim{}
	}

	var matches []model.SimilarClaim
	for _, claim := range s.claims.ListClaims() {
		claimEmb, err := s.embedder.Embed(ctx, claim.Text)
		if err != nil || len(claimEmb) == 0 {
			// A single claim's failure is skipped, not fatal
			continue
		}

		similarity := vector.ClampUnit(vector.CosineSimilarity(queryEmb, claimEmb))
		if similarity < threshold {
			continue
		}
		matches = append(matches, model.SimilarClaim{
			ClaimID:    claim.ID,
			Text:       claim.Text,
			Category:   claim.Category,
			Source:     claimSource(claim),
			Similarity: similarity,
		})
	}

	// Stable: equal scores keep the store's claim iteration order
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	if matches == nil {
		matches = []model.SimilarClaim{}
	}
	return matches
}

// GetTopSimilarClaims returns the topN ranked claims with no threshold.
func (s *Service) GetTopSimilarClaims(ctx context.Context, text string, topN int) []model.SimilarClaim {
	matches := s.FindSimilarClaims(ctx, text, 0)
	if topN >= 0 && len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// IsSimilar reports whether the text and the claim meet the threshold.
// False when the claim is missing or either embedding is unavailable,
// regardless of the threshold.
func (s *Service) IsSimilar(ctx context.Context, text, claimID string, threshold float64) bool {
	score, ok := s.similarityScore(ctx, text, claimID)
	return ok && score >= threshold
}

// GetSimilarityScore returns the raw similarity between the text and the
// claim's text, 0 on any failure.
func (s *Service) GetSimilarityScore(ctx context.Context, text, claimID string) float64 {
	score, _ := s.similarityScore(ctx, text, claimID)
	return score
}

func (s *Service) similarityScore(ctx context.Context, text, claimID string) (float64, bool) {
	claim, err := s.claims.GetClaim(claimID)
	if err != nil {
		return 0, false
	}

	textEmb, err := s.embedder.Embed(ctx, text)
	if err != nil || len(textEmb) == 0 {
		return 0, false
	}
	claimEmb, err := s.embedder.Embed(ctx, claim.Text)
	if err != nil || len(claimEmb) == 0 {
		return 0, false
	}

	return vector.ClampUnit(vector.CosineSimilarity(textEmb, claimEmb)), true
}

// BatchFindSimilarClaims ranks claims for each sentence independently,
// keyed "sentence_{index}". Sentences fail independently.
func (s *Service) BatchFindSimilarClaims(ctx context.Context, sentences []string) map[string][]model.SimilarClaim {
	batch := worker.NewBatchMatcher(s, s.concurrency)
	return batch.MatchSentences(ctx, sentences, DefaultThreshold)
}

// claimSource picks the citation key shown for a ranked claim.
func claimSource(claim *model.Claim) string {
	if claim.PrimaryQuote != nil && claim.PrimaryQuote.Source != "" {
		return claim.PrimaryQuote.Source
	}
	for _, q := range claim.SupportingQuotes {
		if q.Source != "" {
			return q.Source
		}
	}
	return ""
}
