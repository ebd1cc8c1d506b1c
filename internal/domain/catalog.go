package domain

// Catalog entry types. All are immutable once loaded; the catalog hands out
// copies so callers can never reach the shared originals.

// PrizeTier is one payout band of a ticket type. Exactly one sizing hint is
// set per tier set: either Share (normalized slice of the payout budget) or
// Weight (relative draw weight). The two modes are never mixed within one
// ticket type.
type PrizeTier struct {
	Label  string   `json:"label"`
	Amount int64    `json:"amount"`
	Share  *float64 `json:"share,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

// TicketType is a purchasable scratch ticket definition.
type TicketType struct {
	ID          string            `json:"id"`
	Name        map[string]string `json:"name"`
	FaceValue   int64             `json:"faceValue"`
	RTPTarget   float64           `json:"rtpTarget"`
	MaxPrize    int64             `json:"maxPrize"`
	Description string            `json:"description,omitempty"`
	PrizeTiers  []PrizeTier       `json:"prizeTiers"`
}

// PrizeDistributionEntry pairs a tier with its calibrated win probability.
type PrizeDistributionEntry struct {
	Tier         PrizeTier `json:"tier"`
	Probability  float64   `json:"probability"`
	ExpectedWins float64   `json:"expectedWins"`
}

// PrizeDistribution is the calibrated per-ticket-type distribution. The tier
// probabilities plus NonWinningProbability sum to 1 within floating tolerance.
type PrizeDistribution struct {
	Entries               []PrizeDistributionEntry `json:"entries"`
	NonWinningProbability float64                  `json:"nonWinningProbability"`
}

// PrizeOutcome is the result of a winning roll.
type PrizeOutcome struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// EncounterEffect is the bundle of consequences an encounter option carries.
// Monetary fields are cents; zero or nil means absent.
type EncounterEffect struct {
	PriceMultiplier  *float64 `json:"priceMultiplier,omitempty"`
	PriceOffset      *int64   `json:"priceOffset,omitempty"`
	RTPMultiplier    *float64 `json:"rtpMultiplier,omitempty"`
	BalanceBonus     int64    `json:"balanceBonus,omitempty"`
	BalancePenalty   int64    `json:"balancePenalty,omitempty"`
	FreeTickets      int      `json:"freeTickets,omitempty"`
	ModifierDuration int      `json:"modifierDuration,omitempty"`
}

// HasModifier reports whether the effect carries any price/RTP field that can
// become an ActiveModifier.
func (e EncounterEffect) HasModifier() bool {
	return e.PriceMultiplier != nil || e.PriceOffset != nil || e.RTPMultiplier != nil
}

// EncounterOption is one player choice within an encounter event.
type EncounterOption struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Effect   EncounterEffect `json:"effect"`
	Cooldown int             `json:"cooldown,omitempty"` // purchases
}

// EncounterEvent is a random interruption that can fire before a purchase.
type EncounterEvent struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	TriggerChance float64           `json:"triggerChance"`
	MaxPerSession int               `json:"maxPerSession,omitempty"` // 0 = unlimited
	Narrative     map[string]string `json:"narrative,omitempty"`
	Options       []EncounterOption `json:"options"`
}

// Clone returns a deep copy of the event.
func (ev EncounterEvent) Clone() EncounterEvent {
	out := ev
	out.Options = make([]EncounterOption, len(ev.Options))
	copy(out.Options, ev.Options)
	if ev.Narrative != nil {
		out.Narrative = make(map[string]string, len(ev.Narrative))
		for k, v := range ev.Narrative {
			out.Narrative[k] = v
		}
	}
	return out
}

// GameSettings are the session-economy knobs loaded with the catalog.
type GameSettings struct {
	InitialBalance      int64  `json:"initialBalance"`
	TargetBalance       int64  `json:"targetBalance"`
	MinPurchaseInterval int    `json:"minPurchaseIntervalMs,omitempty"` // milliseconds
	MaxSessionsPerDay   int    `json:"maxSessionsPerDay,omitempty"`
	AnalyticsStream     string `json:"analyticsStream,omitempty"`
}
