package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/scratchden/platform/internal/domain"
)

// AddActiveModifier instantiates a modifier from an encounter effect.
// Returns nil if the duration is non-positive or the effect carries no
// price/RTP field.
func (s *Store) AddActiveModifier(sess *domain.GameSession, effect domain.EncounterEffect, duration int) *domain.ActiveModifier {
	if duration <= 0 || !effect.HasModifier() {
		return nil
	}
	sanitized := domain.EncounterEffect{
		PriceMultiplier: effect.PriceMultiplier,
		PriceOffset:     effect.PriceOffset,
		RTPMultiplier:   effect.RTPMultiplier,
	}
	mod := domain.ActiveModifier{
		ID:                 uuid.New(),
		Effect:             sanitized,
		RemainingPurchases: duration,
		AppliedAt:          time.Now().UTC(),
	}
	sess.ActiveModifiers = append(sess.ActiveModifiers, mod)
	return &mod
}

// PreviewActiveModifiers aggregates all active modifiers without mutating
// anything: multipliers multiply, offsets add. A non-positive multiplier
// product falls back to 1.
func (s *Store) PreviewActiveModifiers(sess *domain.GameSession) domain.PurchaseModifiers {
	agg := domain.PurchaseModifiers{PriceMultiplier: 1, RTPMultiplier: 1}
	for _, mod := range sess.ActiveModifiers {
		if mod.Effect.PriceMultiplier != nil {
			agg.PriceMultiplier *= *mod.Effect.PriceMultiplier
		}
		if mod.Effect.PriceOffset != nil {
			agg.PriceOffset += *mod.Effect.PriceOffset
		}
		if mod.Effect.RTPMultiplier != nil {
			agg.RTPMultiplier *= *mod.Effect.RTPMultiplier
		}
	}
	if agg.PriceMultiplier <= 0 {
		agg.PriceMultiplier = 1
	}
	if agg.RTPMultiplier <= 0 {
		agg.RTPMultiplier = 1
	}
	return agg
}

// ConsumeActiveModifiers returns the same aggregate as Preview and then
// decrements every modifier's remaining-use count, dropping those that hit
// zero. Consumption does not change the aggregate for the current purchase.
func (s *Store) ConsumeActiveModifiers(sess *domain.GameSession) domain.PurchaseModifiers {
	agg := s.PreviewActiveModifiers(sess)
	if len(sess.ActiveModifiers) == 0 {
		return agg
	}
	remaining := sess.ActiveModifiers[:0]
	for _, mod := range sess.ActiveModifiers {
		mod.RemainingPurchases--
		if mod.RemainingPurchases > 0 {
			remaining = append(remaining, mod)
		}
	}
	sess.ActiveModifiers = remaining
	return agg
}

// GrantFreeTickets adds to the session's free ticket counter.
func (s *Store) GrantFreeTickets(sess *domain.GameSession, count int) {
	if count <= 0 {
		return
	}
	sess.FreeTicketsRemaining += count
}

// DecrementFreeTicket consumes one free ticket if any remain.
func (s *Store) DecrementFreeTicket(sess *domain.GameSession) {
	if sess.FreeTicketsRemaining > 0 {
		sess.FreeTicketsRemaining--
	}
}
