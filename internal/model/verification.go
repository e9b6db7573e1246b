package model

import "time"

// Snippet is a candidate passage returned by literature search
type Snippet struct {
	ID        string  `json:"id"`                  // Stable per-chunk identifier
	Text      string  `json:"text"`                // Extracted passage text
	FileName  string  `json:"file_name"`           // Base name of the extracted-text file
	FilePath  string  `json:"file_path"`           // Full path within the corpus
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Score     float64 `json:"score,omitempty"`     // Search score, index-specific scale
}

// VerificationResult is the judge's verdict on whether a snippet supports a claim
type VerificationResult struct {
	SnippetID  string  `json:"snippet_id"`
	Supports   bool    `json:"supports"`
	Confidence float64 `json:"confidence"`          // [0,1]
	Reasoning  string  `json:"reasoning,omitempty"`
}

// VerificationRound captures one search-then-verify iteration.
// Rounds are numbered from 1, strictly increasing, never replayed.
type VerificationRound struct {
	Round              int                  `json:"round"`
	Query              string               `json:"query"`
	Snippets           []Snippet            `json:"snippets"`
	Verifications      []VerificationResult `json:"verifications"`
	SupportingSnippets []Snippet            `json:"supporting_snippets"`
}

// ClaimValidation is the aggregate claim-level judgment produced by a
// completed verification session.
type ClaimValidation struct {
	ClaimText          string              `json:"claim_text"`
	Supported          bool                `json:"supported"`
	SupportingSnippets []Snippet           `json:"supporting_snippets"`
	Rounds             []VerificationRound `json:"rounds,omitempty"`
	IsCached           bool                `json:"is_cached"` // True when served from the validation cache
	ValidatedAt        time.Time           `json:"validated_at"`
}

// CitationStatus classifies the evidentiary health of a citation on a claim
type CitationStatus string

const (
	CitationVerified    CitationStatus = "verified"        // A verified quote from the source exists
	CitationUnsupported CitationStatus = "unsupported"     // Quotes exist but none is verified
	CitationOrphan      CitationStatus = "orphan-citation" // Cited with zero quotes from the source
)

// CitationValidation is the per-citation classification for one claim
type CitationValidation struct {
	ClaimID    string         `json:"claim_id"`
	AuthorYear string         `json:"author_year"`
	Status     CitationStatus `json:"status"`
	QuoteCount int            `json:"quote_count"`        // Quotes on the claim from this source
	SourceFile string         `json:"source_file,omitempty"` // Mapped extracted-text file, if known
	Message    string         `json:"message,omitempty"`
}
