package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of a game session. Every state except
// StateActive is absorbing.
type SessionState string

const (
	StateActive     SessionState = "active"
	StateWon        SessionState = "won"
	StateLost       SessionState = "lost"
	StateTerminated SessionState = "terminated"
)

// Terminal reports whether the state permits no further mutation.
func (s SessionState) Terminal() bool { return s != StateActive }

// ActiveModifier is an instantiated encounter effect that alters upcoming
// purchases. RemainingPurchases is decremented once per completed purchase;
// the modifier is dropped when it reaches zero.
type ActiveModifier struct {
	ID                 uuid.UUID       `json:"id"`
	Effect             EncounterEffect `json:"effect"`
	RemainingPurchases int             `json:"remaining_purchases"`
	AppliedAt          time.Time       `json:"applied_at"`
}

// PurchaseModifiers is the aggregate of all active modifiers for one purchase.
type PurchaseModifiers struct {
	PriceMultiplier float64 `json:"price_multiplier"`
	PriceOffset     int64   `json:"price_offset"`
	RTPMultiplier   float64 `json:"rtp_multiplier"`
}

// EncounterOutcome records how a triggered encounter ended.
type EncounterOutcome string

const (
	OutcomeSelected EncounterOutcome = "selected"
	OutcomeSkipped  EncounterOutcome = "skipped"
	OutcomeExpired  EncounterOutcome = "expired"
)

// EncounterHistoryEntry is one triggered encounter in a session's history.
// The entry is mutated in place to attach the resolution.
type EncounterHistoryEntry struct {
	EventID     string           `json:"event_id"`
	OptionID    string           `json:"option_id,omitempty"`
	TriggeredAt time.Time        `json:"triggered_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
	Outcome     EncounterOutcome `json:"outcome,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// PendingEncounter snapshots a triggered encounter event with only its
// currently-eligible options. At most one exists per session; it blocks
// purchase completion until resolved.
type PendingEncounter struct {
	Event       EncounterEvent `json:"event"`
	TriggeredAt time.Time      `json:"triggered_at"`
}

// EncounterResolution is the full audit record of resolving one encounter
// option, returned to the caller for response shaping.
type EncounterResolution struct {
	EventID            string           `json:"event_id"`
	Option             EncounterOption  `json:"option"`
	Transactions       []Transaction    `json:"transactions"`
	ModifiersApplied   []ActiveModifier `json:"modifiers_applied"`
	FreeTicketsGranted int              `json:"free_tickets_granted"`
}

// GameSession is the sole unit of mutable state and of concurrency isolation.
// All mutation goes through the session store while the per-session lock is
// held.
type GameSession struct {
	ID                   uuid.UUID               `json:"id"`
	PlayerID             string                  `json:"player_id,omitempty"`
	InitialBalance       int64                   `json:"initial_balance"`
	TargetBalance        int64                   `json:"target_balance"`
	Balance              int64                   `json:"balance"`
	MaxBalance           int64                   `json:"max_balance"`
	ScratchCount         int                     `json:"scratch_count"`
	EncounterCount       int                     `json:"encounter_count"`
	State                SessionState            `json:"state"`
	StartedAt            time.Time               `json:"started_at"`
	FinishedAt           *time.Time              `json:"finished_at,omitempty"`
	Transactions         []Transaction           `json:"transactions"`
	Tickets              []TicketInstance        `json:"tickets"`
	PendingEncounter     *PendingEncounter       `json:"pending_encounter,omitempty"`
	ActiveModifiers      []ActiveModifier        `json:"active_modifiers"`
	FreeTicketsRemaining int                     `json:"free_tickets_remaining"`
	EncounterCounts      map[string]int          `json:"encounter_counts"`
	OptionCooldowns      map[string]int          `json:"option_cooldowns"`
	EncounterHistory     []EncounterHistoryEntry `json:"encounter_history"`
	LastPurchaseAt       time.Time               `json:"last_purchase_at,omitzero"`
}

// Clone returns a deep copy safe to read outside the session lock.
func (s *GameSession) Clone() *GameSession {
	out := *s
	out.Transactions = append([]Transaction(nil), s.Transactions...)
	out.Tickets = append([]TicketInstance(nil), s.Tickets...)
	out.ActiveModifiers = append([]ActiveModifier(nil), s.ActiveModifiers...)
	out.EncounterHistory = append([]EncounterHistoryEntry(nil), s.EncounterHistory...)
	out.EncounterCounts = make(map[string]int, len(s.EncounterCounts))
	for k, v := range s.EncounterCounts {
		out.EncounterCounts[k] = v
	}
	out.OptionCooldowns = make(map[string]int, len(s.OptionCooldowns))
	for k, v := range s.OptionCooldowns {
		out.OptionCooldowns[k] = v
	}
	if s.PendingEncounter != nil {
		pe := *s.PendingEncounter
		pe.Event = s.PendingEncounter.Event.Clone()
		out.PendingEncounter = &pe
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}
