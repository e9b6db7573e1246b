package verify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/cache"
	"github.com/avetisyan-lab/citewell/internal/embedding"
	"github.com/avetisyan-lab/citewell/internal/literature"
	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/store"
	"github.com/avetisyan-lab/citewell/internal/vector"
)

// Loop drives iterative search-verify rounds to find literature
// quotations supporting a claim. One Session per claim-review context;
// rounds run sequentially while candidate verification inside a round
// fans out concurrently.
type Loop struct {
	searcher  Searcher
	judge     Judge
	claims    *store.ClaimStore
	embedder  embedding.Embedder
	valCache  cache.Cache
	loopCfg   model.LoopConfig
	searchCfg model.SearchConfig
	workers   int
	logger    *zap.Logger
	now       func() time.Time
}

// NewLoop creates a feedback loop. valCache may be nil to disable the
// claim-level validation cache; claims may be nil when no self-healing of
// quote provenance is wanted.
func NewLoop(
	searcher Searcher,
	judge Judge,
	claims *store.ClaimStore,
	embedder embedding.Embedder,
	valCache cache.Cache,
	loopCfg model.LoopConfig,
	searchCfg model.SearchConfig,
	workers int,
	logger *zap.Logger,
) *Loop {
	if workers <= 0 {
		workers = 4
	}
	return &Loop{
		searcher:  searcher,
		judge:     judge,
		claims:    claims,
		embedder:  embedder,
		valCache:  valCache,
		loopCfg:   loopCfg,
		searchCfg: searchCfg,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

// Options tunes one verification session
type Options struct {
	// ClaimID enables provenance self-healing on the stored claim.
	ClaimID string

	// MaxRounds overrides the configured round cap when > 0.
	MaxRounds int

	// SufficiencyTarget overrides the configured supporting-snippet
	// target when > 0.
	SufficiencyTarget int

	// Strategy overrides DefaultQueryStrategy.
	Strategy QueryStrategy

	// SkipCache forces a fresh validation even on a cache hit.
	SkipCache bool
}

// Session is one running claim verification. Consumers range over
// Events(); Result() blocks until the session settles. A cancelled
// session settles with a nil result and nil error: cancellation is a
// deliberate supersession, not a failure.
type Session struct {
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	result *model.ClaimValidation
	err    error
}

// Events returns the session's progress stream. The channel closes when
// the session settles; no event is delivered after cancellation.
// Consumers must drain the channel (or cancel the session) or the loop
// blocks on its next emit.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Cancel stops the session. Idempotent. In-flight judgments are allowed
// to finish but their results are discarded, not reported.
func (s *Session) Cancel() {
	s.cancel()
}

// Result blocks until the session settles and returns the aggregate
// validation. Both returns are nil when the session was cancelled.
func (s *Session) Result() (*model.ClaimValidation, error) {
	<-s.done
	return s.result, s.err
}

// emit delivers an event unless the session has been cancelled. Results
// arriving after cancellation are dropped here, keeping every consumer
// callback a no-op past the cancellation point.
func (s *Session) emit(ctx context.Context, ev Event) {
	if ctx.Err() != nil {
		return
	}
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

// Start begins a verification session for claimText. The returned session
// is already running; cancel it before starting another for the same
// review context.
func (l *Loop) Start(ctx context.Context, claimText string, opts Options) *Session {
	sessionCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		events: make(chan Event),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(s.done)
		defer close(s.events)

		result, err := l.run(sessionCtx, s, claimText, opts)
		if sessionCtx.Err() != nil {
			// Cancelled: settle without result and without error
			return
		}
		s.result = result
		s.err = err
	}()

	return s
}

// GetCachedValidation returns the cached claim-level validation for the
// exact claim text, if present. The copy is marked IsCached.
func (l *Loop) GetCachedValidation(claimText string) (*model.ClaimValidation, bool) {
	if l.valCache == nil {
		return nil, false
	}
	data, found := l.valCache.Get(cache.ValidationKey(claimText))
	if !found {
		return nil, false
	}
	var validation model.ClaimValidation
	if err := json.Unmarshal(data, &validation); err != nil {
		return nil, false
	}
	validation.IsCached = true
	return &validation, true
}

// storeValidation caches a completed claim-level validation. Staleness is
// the caller's concern: entries are only displaced by TTL or an explicit
// re-validation.
func (l *Loop) storeValidation(v *model.ClaimValidation) {
	if l.valCache == nil {
		return
	}
	stored := *v
	stored.IsCached = false
	data, err := json.Marshal(&stored)
	if err != nil {
		return
	}
	if err := l.valCache.Set(cache.ValidationKey(v.ClaimText), data, 0); err != nil {
		l.logger.Warn("cache validation failed", zap.Error(err))
	}
}

// run executes the rounds. It returns (nil, nil) only via the caller's
// cancellation check; internal per-round failures degrade rather than
// abort.
func (l *Loop) run(ctx context.Context, s *Session, claimText string, opts Options) (*model.ClaimValidation, error) {
	if !opts.SkipCache {
		if cached, ok := l.GetCachedValidation(claimText); ok {
			return cached, nil
		}
	}

	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = l.loopCfg.MaxRounds
	}
	if maxRounds <= 0 {
		maxRounds = 3
	}
	target := opts.SufficiencyTarget
	if target <= 0 {
		target = l.loopCfg.SufficiencyTarget
	}
	if target <= 0 {
		target = 1
	}
	strategy := opts.Strategy
	if strategy == nil {
		strategy = DefaultQueryStrategy
	}

	validation := &model.ClaimValidation{
		ClaimText: claimText,
	}
	var supporting []model.Snippet

	for round := 1; round <= maxRounds; round++ {
		if ctx.Err() != nil {
			return nil, nil
		}

		query := strategy(round, claimText, len(supporting))
		snippets, err := l.searcher.Search(ctx, query, l.searchCfg.TopK)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil
			}
			// SearchFailure is per-round: this round yields zero
			// candidates and the loop decides continuation as usual
			l.logger.Warn("literature search failed",
				zap.Int("round", round), zap.Error(err))
			snippets = nil
		}

		s.emit(ctx, Event{
			Type:       EventCandidatesFound,
			Round:      round,
			Candidates: snippets,
		})

		verifications := l.verifyRound(ctx, s, round, claimText, snippets)
		if ctx.Err() != nil {
			return nil, nil
		}

		roundRec := model.VerificationRound{
			Round:         round,
			Query:         query,
			Snippets:      snippets,
			Verifications: verifications,
		}
		for i, v := range verifications {
			if v.Supports {
				roundRec.SupportingSnippets = append(roundRec.SupportingSnippets, snippets[i])
			}
		}
		supporting = append(supporting, roundRec.SupportingSnippets...)

		s.emit(ctx, Event{
			Type:        EventRoundComplete,
			Round:       round,
			RoundRecord: &roundRec,
		})
		validation.Rounds = append(validation.Rounds, roundRec)

		if len(supporting) >= target {
			break
		}
	}

	if ctx.Err() != nil {
		return nil, nil
	}

	validation.Supported = len(supporting) > 0
	validation.SupportingSnippets = supporting
	validation.ValidatedAt = l.now().UTC()

	if opts.ClaimID != "" && l.claims != nil && validation.Supported {
		l.healProvenance(ctx, opts.ClaimID)
	}

	l.storeValidation(validation)
	return validation, nil
}

// verifyRound fans out per-candidate judgment, bounded by the worker
// count, and reports each verdict individually as it lands. The round is
// complete only when every candidate has been judged.
func (l *Loop) verifyRound(ctx context.Context, s *Session, round int, claimText string, snippets []model.Snippet) []model.VerificationResult {
	results := make([]model.VerificationResult, len(snippets))
	if len(snippets) == 0 {
		return results
	}

	semaphore := make(chan struct{}, l.workers)
	var wg sync.WaitGroup

	for i, snippet := range snippets {
		wg.Add(1)
		go func(idx int, sn model.Snippet) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.VerificationResult{SnippetID: sn.ID}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			verdict, err := l.judge.Verify(ctx, claimText, sn.Text)
			if err != nil {
				if ctx.Err() == nil {
					// VerificationFailure: the candidate counts as
					// non-supporting and is not retried this round
					l.logger.Debug("candidate verification failed",
						zap.String("snippet", sn.ID), zap.Error(err))
				}
				results[idx] = model.VerificationResult{SnippetID: sn.ID}
				return
			}

			result := model.VerificationResult{
				SnippetID:  sn.ID,
				Supports:   verdict.Supports,
				Confidence: verdict.Confidence,
				Reasoning:  verdict.Reasoning,
			}
			results[idx] = result

			s.emit(ctx, Event{
				Type:         EventVerificationUpdate,
				Round:        round,
				SnippetID:    sn.ID,
				Verification: &result,
			})
		}(i, snippet)
	}

	wg.Wait()
	return results
}

// healProvenance re-anchors the claim's quotes against the current
// literature index. When a quote's best verified match lives at a
// different source file or line range than recorded, the stored metadata,
// derived source key, and verified flag are updated and persisted.
// Verification is not read-only.
func (l *Loop) healProvenance(ctx context.Context, claimID string) {
	claim, err := l.claims.GetClaim(claimID)
	if err != nil {
		l.logger.Warn("provenance heal skipped", zap.String("claim", claimID), zap.Error(err))
		return
	}

	healQuote := func(q *model.Quote) bool {
		best, sim := l.bestMatch(ctx, q.Text)
		if best == nil || sim < model.VerifiedThreshold {
			return false
		}
		if !locationDiffers(q.Metadata, best) && q.Verified {
			return false
		}
		q.Metadata = &model.QuoteLocation{
			SourceFile: best.FileName,
			StartLine:  best.StartLine,
			EndLine:    best.EndLine,
		}
		if key := literature.KeyFromFileName(best.FileName); key != "" {
			q.Source = key
		}
		q.Confidence = sim
		q.Verified = sim >= model.VerifiedThreshold
		return true
	}

	changed := false
	if claim.PrimaryQuote != nil && healQuote(claim.PrimaryQuote) {
		changed = true
	}
	for i := range claim.SupportingQuotes {
		if healQuote(&claim.SupportingQuotes[i]) {
			changed = true
		}
	}
	if !changed {
		return
	}

	_, err = l.claims.UpdateClaim(claimID, func(c *model.Claim) error {
		c.PrimaryQuote = claim.PrimaryQuote
		c.SupportingQuotes = claim.SupportingQuotes
		c.RecomputeVerified()
		return nil
	})
	if err != nil {
		l.logger.Warn("provenance heal persist failed", zap.String("claim", claimID), zap.Error(err))
		return
	}
	l.logger.Info("healed stale quote provenance", zap.String("claim", claimID))
}

// bestMatch finds the indexed snippet most similar to the quote text.
func (l *Loop) bestMatch(ctx context.Context, quoteText string) (*model.Snippet, float64) {
	candidates, err := l.searcher.Search(ctx, quoteText, 3)
	if err != nil || len(candidates) == 0 {
		return nil, 0
	}

	quoteEmb, err := l.embedder.Embed(ctx, quoteText)
	if err != nil || len(quoteEmb) == 0 {
		return nil, 0
	}

	var best *model.Snippet
	bestSim := 0.0
	for i := range candidates {
		candEmb, err := l.embedder.Embed(ctx, candidates[i].Text)
		if err != nil || len(candEmb) == 0 {
			continue
		}
		sim := vector.ClampUnit(vector.CosineSimilarity(quoteEmb, candEmb))
		if sim > bestSim {
			bestSim = sim
			best = &candidates[i]
		}
	}
	return best, bestSim
}

// locationDiffers reports whether the stored location disagrees with the
// matched snippet.
func locationDiffers(stored *model.QuoteLocation, matched *model.Snippet) bool {
	if stored == nil {
		return true
	}
	return stored.SourceFile != matched.FileName ||
		stored.StartLine != matched.StartLine ||
		stored.EndLine != matched.EndLine
}
