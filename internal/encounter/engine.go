// Package encounter decides whether an encounter interrupts a purchase and
// resolves the player's chosen option against the pending encounter.
package encounter

import (
	"time"

	"github.com/scratchden/platform/internal/catalog"
	"github.com/scratchden/platform/internal/domain"
	"github.com/scratchden/platform/internal/prize"
	"github.com/scratchden/platform/internal/session"
)

// Engine evaluates encounter triggers and resolutions. All session mutation
// goes through the store; the caller holds the session lock.
type Engine struct {
	catalog  *catalog.Catalog
	sessions *session.Store
	source   prize.RandomSource
}

// NewEngine creates an encounter engine. source drives trigger rolls and the
// candidate shuffle; pass nil for the production default.
func NewEngine(cat *catalog.Catalog, sessions *session.Store, source prize.RandomSource) *Engine {
	if source == nil {
		source = prize.DefaultSource()
	}
	return &Engine{catalog: cat, sessions: sessions, source: source}
}

// MaybeTrigger tests each eligible encounter event against one trigger roll,
// in shuffled order so configuration order carries no bias. The first event
// whose roll lands under its trigger chance becomes the session's pending
// encounter; later candidates are never evaluated. Returns nil if nothing
// fires.
func (e *Engine) MaybeTrigger(sess *domain.GameSession) *domain.PendingEncounter {
	events := e.catalog.EncounterEvents()
	if len(events) == 0 {
		return nil
	}

	eligible := make([]domain.EncounterEvent, 0, len(events))
	for _, event := range events {
		if filtered, ok := e.eligibleEvent(sess, event); ok {
			eligible = append(eligible, filtered)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	shuffle(eligible, e.source)

	for _, event := range eligible {
		roll := e.source.Float64()
		if roll >= event.TriggerChance {
			continue
		}

		pending := &domain.PendingEncounter{
			Event:       event,
			TriggeredAt: nowUTC(),
		}
		e.sessions.SetPendingEncounter(sess, pending)
		e.sessions.RegisterEncounterTrigger(sess, event.ID, map[string]any{
			"triggerChance": event.TriggerChance,
			"roll":          roll,
		})
		return pending
	}
	return nil
}

// eligibleEvent filters an event for the session: dropped entirely once its
// per-session trigger cap is reached, otherwise reduced to the options not
// on cooldown. Events left with no options are ineligible.
func (e *Engine) eligibleEvent(sess *domain.GameSession, event domain.EncounterEvent) (domain.EncounterEvent, bool) {
	if event.MaxPerSession > 0 && sess.EncounterCounts[event.ID] >= event.MaxPerSession {
		return domain.EncounterEvent{}, false
	}
	options := make([]domain.EncounterOption, 0, len(event.Options))
	for _, opt := range event.Options {
		if !e.sessions.IsOptionOnCooldown(sess, session.OptionKey(event.ID, opt.ID)) {
			options = append(options, opt)
		}
	}
	if len(options) == 0 {
		return domain.EncounterEvent{}, false
	}
	event.Options = options
	return event, true
}

// ResolveOption applies the chosen option of the pending encounter: balance
// bonus, penalty (always negative), free tickets, modifier install, cooldown,
// then clears the pending encounter and re-evaluates the session state (a
// penalty can end the session).
func (e *Engine) ResolveOption(sess *domain.GameSession, optionID string) (*domain.EncounterResolution, error) {
	pending := sess.PendingEncounter
	if pending == nil {
		return nil, domain.ErrNoPendingEncounter()
	}

	var option *domain.EncounterOption
	for i := range pending.Event.Options {
		if pending.Event.Options[i].ID == optionID {
			option = &pending.Event.Options[i]
			break
		}
	}
	if option == nil {
		return nil, domain.ErrInvalidEncounterOption(optionID)
	}

	key := session.OptionKey(pending.Event.ID, option.ID)
	if e.sessions.IsOptionOnCooldown(sess, key) {
		return nil, domain.ErrEncounterOptionOnCooldown(pending.Event.ID, option.ID)
	}

	resolution := &domain.EncounterResolution{
		EventID: pending.Event.ID,
		Option:  *option,
	}
	effect := option.Effect
	meta := map[string]any{"eventId": pending.Event.ID, "optionId": option.ID}

	if effect.BalanceBonus != 0 {
		tx := e.sessions.ApplyBalanceDelta(sess, effect.BalanceBonus, domain.TxEncounterBonus, nil, meta)
		resolution.Transactions = append(resolution.Transactions, tx)
	}
	if effect.BalancePenalty != 0 {
		penalty := effect.BalancePenalty
		if penalty > 0 {
			penalty = -penalty
		}
		tx := e.sessions.ApplyBalanceDelta(sess, penalty, domain.TxEncounterPenalty, nil, meta)
		resolution.Transactions = append(resolution.Transactions, tx)
	}
	if effect.FreeTickets > 0 {
		e.sessions.GrantFreeTickets(sess, effect.FreeTickets)
		resolution.FreeTicketsGranted = effect.FreeTickets
	}

	duration := effect.ModifierDuration
	if duration == 0 {
		duration = 1
	}
	if mod := e.sessions.AddActiveModifier(sess, effect, duration); mod != nil {
		resolution.ModifiersApplied = append(resolution.ModifiersApplied, *mod)
	}

	if option.Cooldown > 0 {
		e.sessions.SetOptionCooldown(sess, key, option.Cooldown)
	}

	e.sessions.ClearPendingEncounter(sess)
	e.sessions.ResolveEncounterHistoryEntry(sess, pending.Event.ID, option.ID, domain.OutcomeSelected)
	e.sessions.UpdateStateFromBalance(sess)

	return resolution, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

// shuffle is a Fisher-Yates pass driven by the injected source.
func shuffle(events []domain.EncounterEvent, source prize.RandomSource) {
	for i := len(events) - 1; i > 0; i-- {
		j := int(source.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		if j < 0 {
			j = 0
		}
		events[i], events[j] = events[j], events[i]
	}
}
