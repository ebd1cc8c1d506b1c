package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/scratchden/platform/internal/domain"
)

// File schema for the game config. Money is expressed in currency units in
// the file and converted to cents at the boundary.

type configFile struct {
	TicketTypes     []fileTicketType     `yaml:"ticketTypes" json:"ticketTypes" validate:"required,min=1,dive"`
	EncounterEvents []fileEncounterEvent `yaml:"encounterEvents" json:"encounterEvents" validate:"dive"`
	Game            fileGameSettings     `yaml:"game" json:"game" validate:"required"`
}

type filePrizeTier struct {
	Label  string   `yaml:"label" json:"label" validate:"required"`
	Amount float64  `yaml:"amount" json:"amount" validate:"gte=0"`
	Share  *float64 `yaml:"share" json:"share,omitempty" validate:"omitempty,gte=0,lte=1"`
	Weight *float64 `yaml:"weight" json:"weight,omitempty" validate:"omitempty,gte=0"`
}

type fileTicketType struct {
	ID          string            `yaml:"id" json:"id" validate:"required"`
	Name        map[string]string `yaml:"name" json:"name" validate:"required,min=1"`
	FaceValue   float64           `yaml:"faceValue" json:"faceValue" validate:"gte=0"`
	RTPTarget   float64           `yaml:"rtpTarget" json:"rtpTarget" validate:"gte=0,lte=1"`
	MaxPrize    float64           `yaml:"maxPrize" json:"maxPrize" validate:"gte=0"`
	Description string            `yaml:"description" json:"description,omitempty"`
	PrizeTiers  []filePrizeTier   `yaml:"prizeTiers" json:"prizeTiers" validate:"required,min=1,dive"`
}

type fileEncounterEffect struct {
	PriceMultiplier  *float64 `yaml:"priceMultiplier" json:"priceMultiplier,omitempty" validate:"omitempty,gte=0"`
	PriceOffset      *float64 `yaml:"priceOffset" json:"priceOffset,omitempty"`
	RTPMultiplier    *float64 `yaml:"rtpMultiplier" json:"rtpMultiplier,omitempty" validate:"omitempty,gt=0"`
	BalanceBonus     float64  `yaml:"balanceBonus" json:"balanceBonus,omitempty"`
	BalancePenalty   float64  `yaml:"balancePenalty" json:"balancePenalty,omitempty"`
	FreeTickets      int      `yaml:"freeTickets" json:"freeTickets,omitempty" validate:"gte=0"`
	ModifierDuration int      `yaml:"modifierDuration" json:"modifierDuration,omitempty" validate:"gte=0"`
}

type fileEncounterOption struct {
	ID       string              `yaml:"id" json:"id" validate:"required"`
	Label    string              `yaml:"label" json:"label" validate:"required"`
	Effect   fileEncounterEffect `yaml:"effect" json:"effect"`
	Cooldown int                 `yaml:"cooldown" json:"cooldown,omitempty" validate:"gte=0"`
}

type fileEncounterEvent struct {
	ID            string                `yaml:"id" json:"id" validate:"required"`
	Name          string                `yaml:"name" json:"name" validate:"required"`
	TriggerChance float64               `yaml:"triggerChance" json:"triggerChance" validate:"gte=0,lte=1"`
	MaxPerSession int                   `yaml:"maxPerSession" json:"maxPerSession,omitempty" validate:"gte=0"`
	Narrative     map[string]string     `yaml:"narrative" json:"narrative,omitempty"`
	Options       []fileEncounterOption `yaml:"options" json:"options" validate:"required,min=1,dive"`
}

type fileAnalytics struct {
	Provider string `yaml:"provider" json:"provider,omitempty"`
	Stream   string `yaml:"stream" json:"stream,omitempty"`
}

type fileGameSettings struct {
	InitialBalance        float64        `yaml:"initialBalance" json:"initialBalance" validate:"gte=0"`
	TargetBalance         float64        `yaml:"targetBalance" json:"targetBalance" validate:"gte=0"`
	MinPurchaseIntervalMs int            `yaml:"minPurchaseIntervalMs" json:"minPurchaseIntervalMs,omitempty" validate:"gte=0"`
	MaxSessionsPerDay     int            `yaml:"maxSessionsPerDay" json:"maxSessionsPerDay,omitempty" validate:"gte=0"`
	Analytics             *fileAnalytics `yaml:"analytics" json:"analytics,omitempty"`
}

var validate = validator.New()

// validateConfig applies struct-tag validation plus the cross-field rules the
// tags cannot express: sizing hints must not mix modes within a ticket type.
func validateConfig(file configFile) error {
	if err := validate.Struct(file); err != nil {
		return domain.ErrValidation(fmt.Sprintf("catalog config invalid: %v", err))
	}

	for _, ticket := range file.TicketTypes {
		var shares, weights int
		for _, tier := range ticket.PrizeTiers {
			if tier.Share != nil {
				shares++
			}
			if tier.Weight != nil {
				weights++
			}
			if tier.Share != nil && tier.Weight != nil {
				return domain.ErrValidation(fmt.Sprintf(
					"ticket type %q tier %q carries both share and weight", ticket.ID, tier.Label))
			}
		}
		if shares > 0 && weights > 0 {
			return domain.ErrValidation(fmt.Sprintf(
				"ticket type %q mixes share and weight tiers", ticket.ID))
		}
		if shares == 0 && weights == 0 {
			return domain.ErrValidation(fmt.Sprintf(
				"ticket type %q tiers carry neither share nor weight", ticket.ID))
		}
	}
	return nil
}

func (t fileTicketType) toDomain() domain.TicketType {
	tiers := make([]domain.PrizeTier, len(t.PrizeTiers))
	for i, tier := range t.PrizeTiers {
		tiers[i] = domain.PrizeTier{
			Label:  tier.Label,
			Amount: domain.Cents(tier.Amount),
			Share:  tier.Share,
			Weight: tier.Weight,
		}
	}
	return domain.TicketType{
		ID:          t.ID,
		Name:        t.Name,
		FaceValue:   domain.Cents(t.FaceValue),
		RTPTarget:   t.RTPTarget,
		MaxPrize:    domain.Cents(t.MaxPrize),
		Description: t.Description,
		PrizeTiers:  tiers,
	}
}

func (e fileEncounterEvent) toDomain() domain.EncounterEvent {
	opts := make([]domain.EncounterOption, len(e.Options))
	for i, opt := range e.Options {
		opts[i] = domain.EncounterOption{
			ID:       opt.ID,
			Label:    opt.Label,
			Effect:   opt.Effect.toDomain(),
			Cooldown: opt.Cooldown,
		}
	}
	return domain.EncounterEvent{
		ID:            e.ID,
		Name:          e.Name,
		TriggerChance: e.TriggerChance,
		MaxPerSession: e.MaxPerSession,
		Narrative:     e.Narrative,
		Options:       opts,
	}
}

func (f fileEncounterEffect) toDomain() domain.EncounterEffect {
	effect := domain.EncounterEffect{
		PriceMultiplier:  f.PriceMultiplier,
		RTPMultiplier:    f.RTPMultiplier,
		BalanceBonus:     domain.Cents(f.BalanceBonus),
		BalancePenalty:   domain.Cents(f.BalancePenalty),
		FreeTickets:      f.FreeTickets,
		ModifierDuration: f.ModifierDuration,
	}
	if f.PriceOffset != nil {
		offset := domain.Cents(*f.PriceOffset)
		effect.PriceOffset = &offset
	}
	return effect
}
