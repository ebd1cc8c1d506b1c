package session

import (
	"time"

	"github.com/scratchden/platform/internal/domain"
)

// Encounter bookkeeping. The encounter engine decides what happens; the
// store records it.

// SetPendingEncounter installs the session's single pending encounter.
func (s *Store) SetPendingEncounter(sess *domain.GameSession, pending *domain.PendingEncounter) {
	sess.PendingEncounter = pending
}

// ClearPendingEncounter removes the pending encounter.
func (s *Store) ClearPendingEncounter(sess *domain.GameSession) {
	sess.PendingEncounter = nil
}

// RegisterEncounterTrigger bumps the session and per-event counters and
// appends an unresolved history entry, which it returns for annotation.
func (s *Store) RegisterEncounterTrigger(sess *domain.GameSession, eventID string, meta map[string]any) *domain.EncounterHistoryEntry {
	sess.EncounterCount++
	sess.EncounterCounts[eventID]++
	sess.EncounterHistory = append(sess.EncounterHistory, domain.EncounterHistoryEntry{
		EventID:     eventID,
		TriggeredAt: time.Now().UTC(),
		Metadata:    meta,
	})
	return &sess.EncounterHistory[len(sess.EncounterHistory)-1]
}

// ResolveEncounterHistoryEntry stamps the most recent unresolved entry for
// the event with the chosen option and outcome.
func (s *Store) ResolveEncounterHistoryEntry(sess *domain.GameSession, eventID, optionID string, outcome domain.EncounterOutcome) {
	for i := len(sess.EncounterHistory) - 1; i >= 0; i-- {
		e := &sess.EncounterHistory[i]
		if e.EventID == eventID && e.ResolvedAt == nil {
			now := time.Now().UTC()
			e.OptionID = optionID
			e.Outcome = outcome
			e.ResolvedAt = &now
			return
		}
	}
}

// SetOptionCooldown starts (or clears, for cooldown <= 0) the purchase
// countdown for an (event,option) pair.
func (s *Store) SetOptionCooldown(sess *domain.GameSession, key string, cooldown int) {
	if cooldown <= 0 {
		delete(sess.OptionCooldowns, key)
		return
	}
	sess.OptionCooldowns[key] = cooldown
}

// IsOptionOnCooldown reports whether the (event,option) pair is cooling down.
func (s *Store) IsOptionOnCooldown(sess *domain.GameSession, key string) bool {
	return sess.OptionCooldowns[key] > 0
}

// TickEncounterCooldowns decrements every cooldown by one purchase, removing
// those that expire.
func (s *Store) TickEncounterCooldowns(sess *domain.GameSession) {
	for key, remaining := range sess.OptionCooldowns {
		if remaining <= 1 {
			delete(sess.OptionCooldowns, key)
			continue
		}
		sess.OptionCooldowns[key] = remaining - 1
	}
}
