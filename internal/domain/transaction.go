package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates all session ledger entry types.
type TransactionType string

const (
	TxPurchase         TransactionType = "purchase"
	TxWin              TransactionType = "win"
	TxEncounterBonus   TransactionType = "encounter_bonus"
	TxEncounterPenalty TransactionType = "encounter_penalty"
	TxFreeTicket       TransactionType = "free_ticket"
)

// Transaction is an append-only session ledger entry. Entries are never
// edited or removed; Delta records the applied (post-clamp) amount.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	SessionID    uuid.UUID       `json:"session_id"`
	TicketID     *uuid.UUID      `json:"ticket_id,omitempty"`
	Type         TransactionType `json:"type"`
	Delta        int64           `json:"delta"`
	BalanceAfter int64           `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}
