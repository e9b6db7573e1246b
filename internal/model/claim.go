package model

// VerifiedThreshold is the similarity boundary above which a quote counts
// as verified against the literature index. Quotes below it may stay
// attached to a claim but keep Verified == false.
const VerifiedThreshold = 0.9

// Claim represents an atomic factual assertion requiring evidentiary support
type Claim struct {
	ID               string        `json:"id"`                          // Stable claim identifier
	Text             string        `json:"text"`                        // The assertion itself
	Category         ClaimCategory `json:"category,omitempty"`          // Nature of the claim
	PrimaryQuote     *Quote        `json:"primary_quote,omitempty"`     // Main supporting excerpt, if chosen
	SupportingQuotes []Quote       `json:"supporting_quotes"`           // Additional excerpts, owned by this claim
	Sections         []string      `json:"sections,omitempty"`          // Manuscript sections referencing the claim
	Verified         bool          `json:"verified"`                    // True when at least one quote is verified
}

// ClaimCategory categorizes the nature of the claim
type ClaimCategory string

const (
	CategoryMethod     ClaimCategory = "method"      // Claims about methodology
	CategoryResult     ClaimCategory = "result"      // Claims about findings/outcomes
	CategoryBackground ClaimCategory = "background"  // Claims about established context
	CategoryContrast   ClaimCategory = "contrast"    // Claims comparing approaches
)

// Quote is a literal excerpt from a source document attached to a claim
type Quote struct {
	Text       string         `json:"text"`                 // The excerpt, verbatim
	Source     string         `json:"source"`               // Author-year citation key, e.g. "Leek2010"
	Metadata   *QuoteLocation `json:"metadata,omitempty"`   // Where in the corpus the text lives
	Confidence float64        `json:"confidence"`           // Similarity score in [0,1]
	Verified   bool           `json:"verified"`             // Confidence >= VerifiedThreshold at last check
}

// QuoteLocation records the provenance of a quote in the extracted corpus
type QuoteLocation struct {
	SourceFile string `json:"source_file"`          // Extracted-text file the quote came from
	StartLine  int    `json:"start_line,omitempty"`
	EndLine    int    `json:"end_line,omitempty"`
}

// RecomputeVerified derives the claim-level verified flag from its quotes.
func (c *Claim) RecomputeVerified() {
	if c.PrimaryQuote != nil && c.PrimaryQuote.Verified {
		c.Verified = true
		return
	}
	for _, q := range c.SupportingQuotes {
		if q.Verified {
			c.Verified = true
			return
		}
	}
	c.Verified = false
}

// AllQuotes returns the primary quote (if set) followed by the supporting
// quotes. The returned slice is a fresh copy; mutating it does not touch
// the claim.
func (c *Claim) AllQuotes() []Quote {
	quotes := make([]Quote, 0, len(c.SupportingQuotes)+1)
	if c.PrimaryQuote != nil {
		quotes = append(quotes, *c.PrimaryQuote)
	}
	quotes = append(quotes, c.SupportingQuotes...)
	return quotes
}

// CitationKeys returns the distinct author-year keys referenced by the
// claim's quotes, in first-seen order.
func (c *Claim) CitationKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, q := range c.AllQuotes() {
		if q.Source == "" || seen[q.Source] {
			continue
		}
		seen[q.Source] = true
		keys = append(keys, q.Source)
	}
	return keys
}
