// Package session owns the lifecycle of game sessions: an in-memory registry
// with one exclusive lock per session, plus every bookkeeping operation the
// purchase and encounter engines compose. Mutator methods take a *GameSession
// and must be called while the session's lock is held (see With).
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scratchden/platform/internal/domain"
)

// Store is the session registry. Sessions for different ids are fully
// independent; operations against the same id serialize on the entry lock.
type Store struct {
	mu       sync.RWMutex
	entries  map[uuid.UUID]*entry
	settings domain.GameSettings
}

type entry struct {
	mu      sync.Mutex
	session *domain.GameSession
}

// NewStore creates an empty registry governed by the given game settings.
func NewStore(settings domain.GameSettings) *Store {
	return &Store{
		entries:  make(map[uuid.UUID]*entry),
		settings: settings,
	}
}

// Create registers a new active session funded with the configured initial
// balance. playerID may be empty for anonymous play.
func (s *Store) Create(playerID string) *domain.GameSession {
	now := time.Now().UTC()
	sess := &domain.GameSession{
		ID:               uuid.New(),
		PlayerID:         playerID,
		InitialBalance:   s.settings.InitialBalance,
		TargetBalance:    s.settings.TargetBalance,
		Balance:          s.settings.InitialBalance,
		MaxBalance:       s.settings.InitialBalance,
		State:            domain.StateActive,
		StartedAt:        now,
		Transactions:     []domain.Transaction{},
		Tickets:          []domain.TicketInstance{},
		ActiveModifiers:  []domain.ActiveModifier{},
		EncounterCounts:  map[string]int{},
		OptionCooldowns:  map[string]int{},
		EncounterHistory: []domain.EncounterHistoryEntry{},
	}

	s.mu.Lock()
	s.entries[sess.ID] = &entry{session: sess}
	s.mu.Unlock()

	return sess.Clone()
}

// Snapshot returns a deep copy of the session, safe to read without a lock.
func (s *Store) Snapshot(id uuid.UUID) (*domain.GameSession, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// List returns snapshots of every registered session, in no particular order.
func (s *Store) List() []*domain.GameSession {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*domain.GameSession, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.session.Clone())
		e.mu.Unlock()
	}
	return out
}

// With runs fn against the live session while holding its exclusive lock.
// This is the session's critical section: the whole purchase protocol runs
// inside one With call.
func (s *Store) With(id uuid.UUID, fn func(sess *domain.GameSession) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

func (s *Store) lookup(id uuid.UUID) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound("session", id.String())
	}
	return e, nil
}

// EnsureActive fails unless the session can still be mutated.
func (s *Store) EnsureActive(sess *domain.GameSession) error {
	if sess.State.Terminal() {
		return domain.ErrSessionNotActive(sess.State)
	}
	return nil
}

// EnsurePurchaseInterval enforces the minimum wall-clock gap between
// purchases. The failure carries the remaining wait for the caller to retry.
func (s *Store) EnsurePurchaseInterval(sess *domain.GameSession, now time.Time) error {
	interval := time.Duration(s.settings.MinPurchaseInterval) * time.Millisecond
	if interval <= 0 || sess.LastPurchaseAt.IsZero() {
		return nil
	}
	elapsed := now.Sub(sess.LastPurchaseAt)
	if elapsed < interval {
		return domain.ErrRateLimited(interval - elapsed)
	}
	return nil
}

// ApplyBalanceDelta posts a ledger entry. The delta is clamped so the balance
// never goes below zero; the transaction records the applied delta.
func (s *Store) ApplyBalanceDelta(sess *domain.GameSession, delta int64, txType domain.TransactionType, ticketID *uuid.UUID, meta map[string]any) domain.Transaction {
	applied := delta
	if sess.Balance+delta < 0 {
		applied = -sess.Balance
	}
	sess.Balance += applied
	if sess.Balance > sess.MaxBalance {
		sess.MaxBalance = sess.Balance
	}

	tx := domain.Transaction{
		ID:           uuid.New(),
		SessionID:    sess.ID,
		TicketID:     ticketID,
		Type:         txType,
		Delta:        applied,
		BalanceAfter: sess.Balance,
		CreatedAt:    time.Now().UTC(),
		Metadata:     meta,
	}
	sess.Transactions = append(sess.Transactions, tx)
	return tx
}

// RecordNonMonetaryTransaction appends a zero-delta audit entry, e.g. a free
// ticket redemption.
func (s *Store) RecordNonMonetaryTransaction(sess *domain.GameSession, txType domain.TransactionType, ticketID *uuid.UUID, meta map[string]any) domain.Transaction {
	tx := domain.Transaction{
		ID:           uuid.New(),
		SessionID:    sess.ID,
		TicketID:     ticketID,
		Type:         txType,
		BalanceAfter: sess.Balance,
		CreatedAt:    time.Now().UTC(),
		Metadata:     meta,
	}
	sess.Transactions = append(sess.Transactions, tx)
	return tx
}

// UpdateStateFromBalance transitions active sessions to won or lost based on
// the current balance. Terminal states are never left; FinishedAt is set once.
func (s *Store) UpdateStateFromBalance(sess *domain.GameSession) {
	if sess.State.Terminal() {
		return
	}
	switch {
	case sess.Balance >= sess.TargetBalance:
		sess.State = domain.StateWon
		s.stampFinished(sess)
	case sess.Balance <= 0:
		sess.Balance = 0
		sess.State = domain.StateLost
		s.stampFinished(sess)
	}
}

func (s *Store) stampFinished(sess *domain.GameSession) {
	if sess.FinishedAt == nil {
		now := time.Now().UTC()
		sess.FinishedAt = &now
	}
}

// RecordTicket appends an issued ticket to the session.
func (s *Store) RecordTicket(sess *domain.GameSession, ticket domain.TicketInstance) {
	sess.Tickets = append(sess.Tickets, ticket)
}

// IncrementScratchCount bumps the purchase counter.
func (s *Store) IncrementScratchCount(sess *domain.GameSession) {
	sess.ScratchCount++
}

// StampPurchase records the wall-clock time of the latest purchase for the
// rate-limit check.
func (s *Store) StampPurchase(sess *domain.GameSession, at time.Time) {
	sess.LastPurchaseAt = at
}

// Terminate forcibly closes a session and leaves an audit trail in the
// encounter history.
func (s *Store) Terminate(id uuid.UUID, reason string) (*domain.GameSession, error) {
	var snapshot *domain.GameSession
	err := s.With(id, func(sess *domain.GameSession) error {
		sess.State = domain.StateTerminated
		s.stampFinished(sess)
		if reason != "" {
			now := time.Now().UTC()
			sess.EncounterHistory = append(sess.EncounterHistory, domain.EncounterHistoryEntry{
				EventID:     "session-terminated",
				TriggeredAt: now,
				ResolvedAt:  &now,
				Outcome:     domain.OutcomeExpired,
				Metadata:    map[string]any{"reason": reason},
			})
		}
		snapshot = sess.Clone()
		return nil
	})
	return snapshot, err
}

// Settings returns the game settings the store was created with.
func (s *Store) Settings() domain.GameSettings { return s.settings }

// OptionKey builds the per-(event,option) cooldown key.
func OptionKey(eventID, optionID string) string {
	return fmt.Sprintf("%s:%s", eventID, optionID)
}
