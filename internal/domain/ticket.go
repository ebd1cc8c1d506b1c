package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketInstance is one issued scratch ticket. Seed and Signature form an
// audit trail (a hash over type/seed/creation time), not a fairness proof.
type TicketInstance struct {
	ID             uuid.UUID `json:"id"`
	TicketTypeID   string    `json:"ticket_type_id"`
	Code           string    `json:"code"`
	Seed           string    `json:"seed"`
	Signature      string    `json:"signature"`
	CreatedAt      time.Time `json:"created_at"`
	PrizeAwarded   int64     `json:"prize_awarded"`
	PrizeTierLabel string    `json:"prize_tier_label,omitempty"`
}
