package orphan

import (
	"fmt"
	"math"

	"github.com/avetisyan-lab/citewell/internal/model"
)

// Health summarizes citation health across a set of validations with a
// transparent scoring breakdown.
type Health struct {
	Index       int      `json:"index"`      // Overall support index (0-100)
	Confidence  string   `json:"confidence"` // "low", "medium", "high"
	Total       int      `json:"total"`
	Verified    int      `json:"verified"`
	Unsupported int      `json:"unsupported"`
	Orphans     int      `json:"orphans"`
	Notes       []string `json:"notes,omitempty"`
}

// Summarize folds per-citation validations into a manuscript-level health
// report. Verified citations score full weight, unsupported half, orphans
// nothing.
func Summarize(validations []model.CitationValidation) Health {
	h := Health{Total: len(validations)}
	for _, v := range validations {
		switch v.Status {
		case model.CitationVerified:
			h.Verified++
		case model.CitationUnsupported:
			h.Unsupported++
		case model.CitationOrphan:
			h.Orphans++
		}
	}

	if h.Total == 0 {
		h.Confidence = "low"
		h.Notes = append(h.Notes, "no citations to evaluate")
		return h
	}

	raw := (float64(h.Verified) + 0.5*float64(h.Unsupported)) / float64(h.Total)
	h.Index = int(math.Round(raw * 100))

	switch {
	case h.Index >= 80 && h.Orphans == 0:
		h.Confidence = "high"
	case h.Index >= 50:
		h.Confidence = "medium"
	default:
		h.Confidence = "low"
	}

	if h.Orphans > 0 {
		h.Notes = append(h.Notes, fmt.Sprintf("%d orphan citation(s) need evidence or removal", h.Orphans))
	}
	if h.Unsupported > 0 {
		h.Notes = append(h.Notes, fmt.Sprintf("%d citation(s) have only unverified quotes", h.Unsupported))
	}
	return h
}
