// Package mapper maintains the persisted many-to-many graph between
// manuscript sentences and claims.
package mapper

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/store"
)

const mappingTableKey = "sentence_claim_mappings"

// Mapper links sentence identifiers to claim identifiers. Claims outlive
// their originating sentences: deleting a sentence removes only the
// mapping, never the claims. Every mutation flushes the full table to the
// KV store; persistence failures are logged and never surfaced to the
// editing flow.
type Mapper struct {
	kv     *store.KV
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	mappings map[string]*model.SentenceClaimMapping
}

// New creates a mapper backed by kv, loading any persisted table.
func New(kv *store.KV, logger *zap.Logger) (*Mapper, error) {
	m := &Mapper{
		kv:       kv,
		logger:   logger,
		now:      time.Now,
		mappings: make(map[string]*model.SentenceClaimMapping),
	}

	var stored []*model.SentenceClaimMapping
	found, err := kv.Get(mappingTableKey, &stored)
	if err != nil {
		return nil, err
	}
	if found {
		for _, mapping := range stored {
			// Empty mappings must never be stored; drop them on load
			if model.ValidateMapping(mapping) != nil {
				continue
			}
			m.mappings[mapping.SentenceID] = mapping
		}
	}
	return m, nil
}

// LinkSentenceToClaim links a sentence to a claim. Idempotent: linking an
// already-present pair only refreshes the mapping's timestamp.
func (m *Mapper) LinkSentenceToClaim(sentenceID, claimID string) {
	if sentenceID == "" || claimID == "" {
		return
	}

	m.mu.Lock()
	mapping, ok := m.mappings[sentenceID]
	if !ok {
		now := m.now()
		mapping = &model.SentenceClaimMapping{
			SentenceID: sentenceID,
			ClaimIDs:   []string{claimID},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		m.mappings[sentenceID] = mapping
	} else {
		if !mapping.HasClaim(claimID) {
			mapping.ClaimIDs = append(mapping.ClaimIDs, claimID)
		}
		mapping.UpdatedAt = m.now()
	}
	m.mu.Unlock()

	m.persist()
}

// UnlinkSentenceFromClaim removes the claim from the sentence's mapping.
// When the last claim is removed the mapping record itself is deleted.
func (m *Mapper) UnlinkSentenceFromClaim(sentenceID, claimID string) {
	m.mu.Lock()
	mapping, ok := m.mappings[sentenceID]
	if !ok {
		m.mu.Unlock()
		return
	}

	removed := false
	for i, id := range mapping.ClaimIDs {
		if id == claimID {
			mapping.ClaimIDs = append(mapping.ClaimIDs[:i], mapping.ClaimIDs[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		m.mu.Unlock()
		return
	}

	if len(mapping.ClaimIDs) == 0 {
		delete(m.mappings, sentenceID)
	} else {
		mapping.UpdatedAt = m.now()
	}
	m.mu.Unlock()

	m.persist()
}

// GetClaimsForSentence returns the claim IDs linked to the sentence, in
// insertion order. The returned slice is a defensive copy.
func (m *Mapper) GetClaimsForSentence(sentenceID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.mappings[sentenceID]
	if !ok {
		return []string{}
	}
	return append([]string{}, mapping.ClaimIDs...)
}

// GetSentencesForClaim returns the IDs of sentences referencing the claim.
// Linear scan: the table is bounded by manuscript size.
func (m *Mapper) GetSentencesForClaim(claimID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sentences []string
	for sentenceID, mapping := range m.mappings {
		if mapping.HasClaim(claimID) {
			sentences = append(sentences, sentenceID)
		}
	}
	return sentences
}

// DeleteSentence removes the sentence's mapping. The linked claims are
// untouched: evidentiary work survives prose restructuring.
func (m *Mapper) DeleteSentence(sentenceID string) {
	m.mu.Lock()
	_, ok := m.mappings[sentenceID]
	delete(m.mappings, sentenceID)
	m.mu.Unlock()

	if ok {
		m.persist()
	}
}

// DeleteClaim removes the claim ID from every mapping, pruning mappings
// left empty.
func (m *Mapper) DeleteClaim(claimID string) {
	m.mu.Lock()
	changed := false
	for sentenceID, mapping := range m.mappings {
		for i, id := range mapping.ClaimIDs {
			if id == claimID {
				mapping.ClaimIDs = append(mapping.ClaimIDs[:i], mapping.ClaimIDs[i+1:]...)
				changed = true
				if len(mapping.ClaimIDs) == 0 {
					delete(m.mappings, sentenceID)
				} else {
					mapping.UpdatedAt = m.now()
				}
				break
			}
		}
	}
	m.mu.Unlock()

	if changed {
		m.persist()
	}
}

// MappingCount returns the number of stored mappings.
func (m *Mapper) MappingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.mappings)
}

// AllMappings returns copies of every mapping record.
func (m *Mapper) AllMappings() []model.SentenceClaimMapping {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.SentenceClaimMapping, 0, len(m.mappings))
	for _, mapping := range m.mappings {
		copied := *mapping
		copied.ClaimIDs = append([]string{}, mapping.ClaimIDs...)
		out = append(out, copied)
	}
	return out
}

// persist flushes the full mapping table. Best-effort: a write failure
// leaves in-memory state authoritative and is only logged.
func (m *Mapper) persist() {
	m.mu.RLock()
	table := make([]*model.SentenceClaimMapping, 0, len(m.mappings))
	for _, mapping := range m.mappings {
		table = append(table, mapping)
	}
	m.mu.RUnlock()

	if err := m.kv.Put(mappingTableKey, table); err != nil {
		m.logger.Warn("persist sentence-claim mappings failed", zap.Error(err))
	}
}
