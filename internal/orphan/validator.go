// Package orphan classifies citation health on claims and resolves
// orphan citations against the literature corpus.
package orphan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/embedding"
	"github.com/avetisyan-lab/citewell/internal/literature"
	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/store"
	"github.com/avetisyan-lab/citewell/internal/vector"
)

// FileSearcher searches snippets within one extracted text file
type FileSearcher interface {
	SearchInFile(ctx context.Context, query, fileName string, limit int) ([]model.Snippet, error)
}

// Validator classifies each citation on a claim as verified, unsupported,
// or orphan, and drives the resolution workflow. Statuses are computed on
// demand from current quotes and source mappings, never persisted.
type Validator struct {
	claims   *store.ClaimStore
	sources  *literature.SourceMapper
	searcher FileSearcher
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewValidator creates a citation validator.
func NewValidator(claims *store.ClaimStore, sources *literature.SourceMapper, searcher FileSearcher, embedder embedding.Embedder, logger *zap.Logger) *Validator {
	return &Validator{
		claims:   claims,
		sources:  sources,
		searcher: searcher,
		embedder: embedder,
		logger:   logger,
	}
}

// ValidateClaimCitations classifies every citation key referenced by the
// claim's quotes, plus any citedKeys asserted by the surrounding prose.
// A key cited with zero quotes on the claim is an orphan citation.
func (v *Validator) ValidateClaimCitations(claimID string, citedKeys ...string) ([]model.CitationValidation, error) {
	claim, err := v.claims.GetClaim(claimID)
	if err != nil {
		return nil, err
	}

	keys := claim.CitationKeys()
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range citedKeys {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	results := make([]model.CitationValidation, 0, len(keys))
	for _, key := range keys {
		results = append(results, v.classify(claim, key))
	}
	return results, nil
}

// classify derives the status of one (claim, authorYear) pair.
func (v *Validator) classify(claim *model.Claim, authorYear string) model.CitationValidation {
	result := model.CitationValidation{
		ClaimID:    claim.ID,
		AuthorYear: authorYear,
	}

	if mapping, err := v.sources.Resolve(authorYear); err == nil {
		result.SourceFile = mapping.ExtractedTextFile
	}

	verified := false
	for _, q := range claim.AllQuotes() {
		if q.Source != authorYear {
			continue
		}
		result.QuoteCount++
		if q.Verified {
			verified = true
		}
	}

	switch {
	case result.QuoteCount == 0:
		result.Status = model.CitationOrphan
		result.Message = "cited in prose with no evidentiary backing"
	case verified:
		result.Status = model.CitationVerified
	default:
		result.Status = model.CitationUnsupported
		result.Message = fmt.Sprintf("%d quote(s) attached, none verified", result.QuoteCount)
	}
	return result
}

// FindQuotesFromPaper searches only within the mapped source's extracted
// text and returns candidate quotes ranked by similarity to the claim.
// Requires loaded source mappings.
func (v *Validator) FindQuotesFromPaper(ctx context.Context, claimID, authorYear string, limit int) ([]model.Quote, error) {
	claim, err := v.claims.GetClaim(claimID)
	if err != nil {
		return nil, err
	}

	mapping, err := v.sources.Resolve(authorYear)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 5
	}
	snippets, err := v.searcher.SearchInFile(ctx, claim.Text, mapping.ExtractedTextFile, limit*2)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", mapping.ExtractedTextFile, err)
	}

	claimEmb, embErr := v.embedder.Embed(ctx, claim.Text)

	var quotes []model.Quote
	for _, sn := range snippets {
		confidence := 0.0
		if embErr == nil && len(claimEmb) > 0 {
			snEmb, err := v.embedder.Embed(ctx, sn.Text)
			if err == nil && len(snEmb) > 0 {
				confidence = vector.ClampUnit(vector.CosineSimilarity(claimEmb, snEmb))
			}
		}
		quotes = append(quotes, model.Quote{
			Text:   strings.TrimSpace(sn.Text),
			Source: authorYear,
			Metadata: &model.QuoteLocation{
				SourceFile: sn.FileName,
				StartLine:  sn.StartLine,
				EndLine:    sn.EndLine,
			},
			Confidence: confidence,
			Verified:   confidence >= model.VerifiedThreshold,
		})
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Confidence > quotes[j].Confidence
	})
	if len(quotes) > limit {
		quotes = quotes[:limit]
	}
	return quotes, nil
}

// AttachQuoteToClaim appends a candidate quote as new supporting evidence,
// implicitly resolving the source's orphan status. The quote's verified
// flag follows the similarity threshold.
func (v *Validator) AttachQuoteToClaim(claimID string, quote model.Quote) error {
	quote.Verified = quote.Confidence >= model.VerifiedThreshold

	_, err := v.claims.UpdateClaim(claimID, func(c *model.Claim) error {
		c.SupportingQuotes = append(c.SupportingQuotes, quote)
		c.RecomputeVerified()
		return nil
	})
	return err
}

// RemoveOrphanCitation strips every quote from the given source off the
// claim, nulling the primary quote when it came from that source. The
// caller is responsible for updating the manuscript's citation reference.
func (v *Validator) RemoveOrphanCitation(claimID, authorYear string) error {
	_, err := v.claims.UpdateClaim(claimID, func(c *model.Claim) error {
		if c.PrimaryQuote != nil && c.PrimaryQuote.Source == authorYear {
			c.PrimaryQuote = nil
		}
		kept := c.SupportingQuotes[:0]
		for _, q := range c.SupportingQuotes {
			if q.Source != authorYear {
				kept = append(kept, q)
			}
		}
		c.SupportingQuotes = kept
		c.RecomputeVerified()
		return nil
	})
	if err != nil {
		return err
	}
	v.logger.Info("removed orphan citation",
		zap.String("claim", claimID), zap.String("source", authorYear))
	return nil
}
