// Package store provides the persisted claim table and the key-value
// store backing mapping tables and caches.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/model"
)

// ErrClaimNotFound is returned when a claim ID has no record.
var ErrClaimNotFound = errors.New("claim not found")

// ClaimStore is the persisted claim table. All reads return copies so
// callers cannot mutate stored state; all writes go through per-claim
// locking so two verification sessions updating the same claim serialize
// instead of racing last-writer-wins.
type ClaimStore struct {
	path   string
	logger *zap.Logger

	mu     sync.RWMutex
	claims map[string]*model.Claim

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewClaimStore creates a claim store persisting to path. Existing state
// is loaded from disk; a missing file is an empty table.
func NewClaimStore(path string, logger *zap.Logger) (*ClaimStore, error) {
	s := &ClaimStore{
		path:   path,
		logger: logger,
		claims: make(map[string]*model.Claim),
		locks:  make(map[string]*sync.Mutex),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read claim table: %w", err)
	}

	var claims []*model.Claim
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("parse claim table: %w", err)
	}
	for _, c := range claims {
		s.claims[c.ID] = c
	}
	return s, nil
}

// claimLock returns the mutex serializing writes to one claim record.
func (s *ClaimStore) claimLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}

// CreateClaim creates and persists a new claim with a fresh ID.
func (s *ClaimStore) CreateClaim(text string, category model.ClaimCategory) (*model.Claim, error) {
	claim := &model.Claim{
		ID:               uuid.NewString(),
		Text:             text,
		Category:         category,
		SupportingQuotes: []model.Quote{},
	}
	if err := model.ValidateClaim(claim); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.claims[claim.ID] = claim
	s.mu.Unlock()

	s.persist()
	return copyClaim(claim), nil
}

// GetClaim returns a copy of the claim with the given ID.
func (s *ClaimStore) GetClaim(id string) (*model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}
	return copyClaim(claim), nil
}

// ListClaims returns copies of every claim, ordered by ID for determinism.
func (s *ClaimStore) ListClaims() []*model.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		out = append(out, copyClaim(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SaveClaim validates and stores a full claim record, replacing any
// existing record with the same ID.
func (s *ClaimStore) SaveClaim(claim *model.Claim) error {
	if err := model.ValidateClaim(claim); err != nil {
		return err
	}

	lock := s.claimLock(claim.ID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	s.claims[claim.ID] = copyClaim(claim)
	s.mu.Unlock()

	s.persist()
	return nil
}

// UpdateClaim applies mutate to the claim under its per-claim lock and
// persists the result. The callback receives a working copy; returning an
// error discards the update.
func (s *ClaimStore) UpdateClaim(id string, mutate func(*model.Claim) error) (*model.Claim, error) {
	lock := s.claimLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	current, ok := s.claims[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}

	working := copyClaim(current)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id // The callback cannot re-key the record
	if err := model.ValidateClaim(working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.claims[id] = working
	s.mu.Unlock()

	s.persist()
	return copyClaim(working), nil
}

// DeleteClaim removes the claim. Deletion is explicit, never implicit;
// the caller is responsible for cascading mapper cleanup.
func (s *ClaimStore) DeleteClaim(id string) error {
	lock := s.claimLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	_, ok := s.claims[id]
	delete(s.claims, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}

	s.persist()
	return nil
}

// Count returns the number of stored claims.
func (s *ClaimStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}

// persist flushes the full claim table to disk. Failures are logged, not
// returned: in-memory state stays authoritative for the session and the
// editing flow is never blocked on disk.
func (s *ClaimStore) persist() {
	s.mu.RLock()
	claims := make([]*model.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		claims = append(claims, c)
	}
	s.mu.RUnlock()

	sort.Slice(claims, func(i, j int) bool { return claims[i].ID < claims[j].ID })

	data, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		s.logger.Warn("marshal claim table failed", zap.Error(err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		s.logger.Warn("create claim table dir failed", zap.Error(err))
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.logger.Warn("write claim table failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn("replace claim table failed", zap.Error(err))
	}
}

func copyClaim(c *model.Claim) *model.Claim {
	out := *c
	if c.PrimaryQuote != nil {
		pq := *c.PrimaryQuote
		if c.PrimaryQuote.Metadata != nil {
			md := *c.PrimaryQuote.Metadata
			pq.Metadata = &md
		}
		out.PrimaryQuote = &pq
	}
	out.SupportingQuotes = make([]model.Quote, len(c.SupportingQuotes))
	for i, q := range c.SupportingQuotes {
		out.SupportingQuotes[i] = q
		if q.Metadata != nil {
			md := *q.Metadata
			out.SupportingQuotes[i].Metadata = &md
		}
	}
	if c.Sections != nil {
		out.Sections = append([]string(nil), c.Sections...)
	}
	return &out
}
