// Package session enforces the one-active-verification rule per
// claim-review context.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/verify"
)

// Manager owns the single active verification session of a review
// context. Starting a new session cancels the previous one before any
// new work begins, so a superseded session's late results can never leak
// into the consumer.
type Manager struct {
	loop   *verify.Loop
	logger *zap.Logger

	mu     sync.Mutex
	active *verify.Session
}

// NewManager creates a session manager over a feedback loop.
func NewManager(loop *verify.Loop, logger *zap.Logger) *Manager {
	return &Manager{
		loop:   loop,
		logger: logger,
	}
}

// Start cancels any active session and begins a new one for claimText.
func (m *Manager) Start(ctx context.Context, claimText string, opts verify.Options) *verify.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.active.Cancel()
		m.logger.Debug("superseded active verification session")
	}

	s := m.loop.Start(ctx, claimText, opts)
	m.active = s
	return s
}

// CancelActive cancels the active session, if any.
func (m *Manager) CancelActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active.Cancel()
		m.active = nil
	}
}

// GetCachedValidation is the pre-flight cache query surfaced to callers.
func (m *Manager) GetCachedValidation(claimText string) (*model.ClaimValidation, bool) {
	return m.loop.GetCachedValidation(claimText)
}
