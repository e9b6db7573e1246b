package model

import (
	"fmt"
	"strings"
)

// ValidationError describes a record rejected at the store boundary
type ValidationError struct {
	Record string // "claim", "quote", "mapping"
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Record, e.Field, e.Reason)
}

// ValidateClaim checks a claim before it crosses into the store.
func ValidateClaim(c *Claim) error {
	if c == nil {
		return &ValidationError{Record: "claim", Field: "claim", Reason: "is nil"}
	}
	if strings.TrimSpace(c.ID) == "" {
		return &ValidationError{Record: "claim", Field: "id", Reason: "is empty"}
	}
	if strings.TrimSpace(c.Text) == "" {
		return &ValidationError{Record: "claim", Field: "text", Reason: "is empty"}
	}
	if c.PrimaryQuote != nil {
		if err := ValidateQuote(c.PrimaryQuote); err != nil {
			return err
		}
	}
	for i := range c.SupportingQuotes {
		if err := ValidateQuote(&c.SupportingQuotes[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuote checks a quote's fields and confidence range.
func ValidateQuote(q *Quote) error {
	if q == nil {
		return &ValidationError{Record: "quote", Field: "quote", Reason: "is nil"}
	}
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Record: "quote", Field: "text", Reason: "is empty"}
	}
	if q.Confidence < 0 || q.Confidence > 1 {
		return &ValidationError{Record: "quote", Field: "confidence", Reason: "outside [0,1]"}
	}
	return nil
}

// ValidateMapping checks the mapping invariants: non-empty sentence ID and
// at least one claim, with no duplicate claim IDs.
func ValidateMapping(m *SentenceClaimMapping) error {
	if m == nil {
		return &ValidationError{Record: "mapping", Field: "mapping", Reason: "is nil"}
	}
	if strings.TrimSpace(m.SentenceID) == "" {
		return &ValidationError{Record: "mapping", Field: "sentence_id", Reason: "is empty"}
	}
	if len(m.ClaimIDs) == 0 {
		return &ValidationError{Record: "mapping", Field: "claim_ids", Reason: "is empty"}
	}
	seen := make(map[string]bool, len(m.ClaimIDs))
	for _, id := range m.ClaimIDs {
		if seen[id] {
			return &ValidationError{Record: "mapping", Field: "claim_ids", Reason: "contains duplicate " + id}
		}
		seen[id] = true
	}
	return nil
}
