// Package verify implements evidence judgment and the iterative
// search-verify feedback loop that finds supporting quotations for a
// claim.
package verify

import (
	"context"
	"strings"

	"github.com/avetisyan-lab/citewell/internal/model"
)

// Judge decides whether a literature snippet supports a claim
type Judge interface {
	// Verify returns the judgment for one claim/snippet pair. The
	// verdict's confidence is in [0,1].
	Verify(ctx context.Context, claimText, snippetText string) (*Verdict, error)
}

// Verdict is a single support judgment
type Verdict struct {
	Supports   bool    `json:"supports"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// Searcher is the literature search capability consumed by the loop
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.Snippet, error)
}

// MockJudge is a deterministic judge for tests and offline runs: a
// snippet supports the claim when it shares at least half of the claim's
// significant terms.
type MockJudge struct{}

// NewMockJudge creates a mock judge.
func NewMockJudge() *MockJudge {
	return &MockJudge{}
}

// Verify applies the term-overlap heuristic.
func (j *MockJudge) Verify(ctx context.Context, claimText, snippetText string) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claimTerms := significantTerms(claimText)
	if len(claimTerms) == 0 {
		return &Verdict{Supports: false, Confidence: 0, Reasoning: "claim has no significant terms"}, nil
	}

	snippetLower := strings.ToLower(snippetText)
	matched := 0
	for _, term := range claimTerms {
		if strings.Contains(snippetLower, term) {
			matched++
		}
	}

	overlap := float64(matched) / float64(len(claimTerms))
	return &Verdict{
		Supports:   overlap >= 0.5,
		Confidence: overlap,
		Reasoning:  "term overlap heuristic",
	}, nil
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "is": true, "it": true,
	"of": true, "on": true, "or": true, "that": true, "the": true,
	"this": true, "to": true, "was": true, "were": true, "with": true,
	"which": true, "their": true, "these": true, "those": true,
}

// significantTerms lowercases and strips stopwords and punctuation.
func significantTerms(text string) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		if len(word) < 3 || stopwords[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}
