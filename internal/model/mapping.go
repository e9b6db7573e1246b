package model

import "time"

// SentenceClaimMapping links one manuscript sentence to the claims it
// references. Many-to-many: a sentence may cite several claims and a claim
// may back several sentences. A mapping with zero claim IDs must never be
// stored; the mapper prunes it on the last unlink.
type SentenceClaimMapping struct {
	SentenceID string    `json:"sentence_id"`
	ClaimIDs   []string  `json:"claim_ids"` // Unique, insertion order preserved
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasClaim reports whether the mapping already references the claim.
func (m *SentenceClaimMapping) HasClaim(claimID string) bool {
	for _, id := range m.ClaimIDs {
		if id == claimID {
			return true
		}
	}
	return false
}

// SimilarClaim is a ranked projection of a claim for a query sentence.
// Transient: computed per query, never persisted.
type SimilarClaim struct {
	ClaimID    string        `json:"claim_id"`
	Text       string        `json:"text"`
	Category   ClaimCategory `json:"category,omitempty"`
	Source     string        `json:"source,omitempty"` // Primary quote's citation key, if any
	Similarity float64       `json:"similarity"`       // Cosine similarity in [0,1]
}
