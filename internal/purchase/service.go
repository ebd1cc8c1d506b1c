// Package purchase is the top-level orchestrator: it sequences encounter
// checks, pricing, prize rolling, and session updates into one
// atomic-per-session operation.
package purchase

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scratchden/platform/internal/catalog"
	"github.com/scratchden/platform/internal/domain"
	"github.com/scratchden/platform/internal/encounter"
	"github.com/scratchden/platform/internal/guard"
	"github.com/scratchden/platform/internal/infra"
	"github.com/scratchden/platform/internal/prize"
	"github.com/scratchden/platform/internal/session"
)

// Status is the terminal result of one purchase call.
type Status string

const (
	StatusEncounterRequired Status = "encounter_required"
	StatusCompleted         Status = "completed"
	StatusSessionClosed     Status = "session_closed"
)

// Result carries one of the three purchase outcomes plus the session
// snapshot taken at the end of the critical section.
type Result struct {
	Status         Status
	Session        *domain.GameSession
	Encounter      *domain.PendingEncounter
	Resolution     *domain.EncounterResolution
	Ticket         *domain.TicketInstance
	PricePaid      int64
	Prize          *domain.PrizeOutcome
	FreeTicketUsed bool

	// newEncounter distinguishes a freshly fired encounter from a retry
	// that re-reports an unresolved one.
	newEncounter bool
}

// Service wires the session store, encounter engine, prize engine, and
// catalog behind the three adapter-facing operations.
type Service struct {
	catalog    *catalog.Catalog
	sessions   *session.Store
	encounters *encounter.Engine
	source     prize.RandomSource
	limiter    *guard.SessionLimiter
	analytics  *infra.Analytics
	logger     *slog.Logger
}

// NewService creates the orchestrator. source drives prize rolls; pass nil
// for the production default.
func NewService(
	cat *catalog.Catalog,
	sessions *session.Store,
	encounters *encounter.Engine,
	source prize.RandomSource,
	limiter *guard.SessionLimiter,
	analytics *infra.Analytics,
	logger *slog.Logger,
) *Service {
	if source == nil {
		source = prize.DefaultSource()
	}
	return &Service{
		catalog:    cat,
		sessions:   sessions,
		encounters: encounters,
		source:     source,
		limiter:    limiter,
		analytics:  analytics,
		logger:     logger,
	}
}

// CreateSession opens a new active session, subject to the per-player daily
// session limit.
func (s *Service) CreateSession(playerID string) (*domain.GameSession, error) {
	if s.limiter != nil {
		if ok, retryAfter := s.limiter.Allow(playerID); !ok {
			return nil, domain.ErrSessionLimit(retryAfter)
		}
	}

	sess := s.sessions.Create(playerID)

	infra.SessionsStarted.Inc()
	s.emit("session.created", map[string]any{
		"sessionId": sess.ID.String(),
		"playerId":  playerID,
		"balance":   sess.Balance,
	})
	s.logger.Info("session created", "session_id", sess.ID, "player_id", playerID)
	return sess, nil
}

// GetSession returns a point-in-time snapshot of the session.
func (s *Service) GetSession(sessionID string) (*domain.GameSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, domain.ErrNotFound("session", sessionID)
	}
	return s.sessions.Snapshot(id)
}

// ListSessions returns snapshots of all sessions.
func (s *Service) ListSessions() []*domain.GameSession {
	return s.sessions.List()
}

// TerminateSession forcibly closes a session.
func (s *Service) TerminateSession(sessionID, reason string) (*domain.GameSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, domain.ErrNotFound("session", sessionID)
	}
	sess, err := s.sessions.Terminate(id, reason)
	if err != nil {
		return nil, err
	}
	infra.SessionsFinished.WithLabelValues(string(domain.StateTerminated)).Inc()
	s.emit("session.terminated", map[string]any{"sessionId": sessionID, "reason": reason})
	return sess, nil
}

// HandlePurchase runs the full purchase protocol for one session. The whole
// sequence executes inside the session's exclusive section; concurrent calls
// against the same session serialize, calls against different sessions run
// in parallel.
func (s *Service) HandlePurchase(sessionID, ticketTypeID, encounterOptionID string) (*Result, error) {
	start := time.Now()
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, domain.ErrNotFound("session", sessionID)
	}

	var result *Result
	err = s.sessions.With(id, func(sess *domain.GameSession) error {
		var ferr error
		result, ferr = s.purchaseLocked(sess, ticketTypeID, encounterOptionID)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	s.observe(result, time.Since(start))
	return result, nil
}

// purchaseLocked is the purchase protocol body. The caller holds the
// session lock.
func (s *Service) purchaseLocked(sess *domain.GameSession, ticketTypeID, encounterOptionID string) (*Result, error) {
	if err := s.sessions.EnsureActive(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.EnsurePurchaseInterval(sess, time.Now()); err != nil {
		return nil, err
	}

	var resolution *domain.EncounterResolution

	if sess.PendingEncounter != nil {
		// An unresolved encounter blocks the purchase until an option is
		// chosen.
		if encounterOptionID == "" {
			return &Result{
				Status:    StatusEncounterRequired,
				Session:   sess.Clone(),
				Encounter: sess.Clone().PendingEncounter,
			}, nil
		}
		res, err := s.encounters.ResolveOption(sess, encounterOptionID)
		if err != nil {
			return nil, err
		}
		resolution = res
		if sess.State.Terminal() {
			return &Result{
				Status:     StatusSessionClosed,
				Session:    sess.Clone(),
				Resolution: resolution,
			}, nil
		}
		// Still active: fall through and complete the purchase in this call.
	} else if pending := s.encounters.MaybeTrigger(sess); pending != nil {
		// A fresh encounter defers the purchase entirely; no money moves.
		return &Result{
			Status:       StatusEncounterRequired,
			Session:      sess.Clone(),
			Encounter:    sess.Clone().PendingEncounter,
			newEncounter: true,
		}, nil
	}

	ticketType, err := s.catalog.TicketType(ticketTypeID)
	if err != nil {
		return nil, err
	}

	preview := s.sessions.PreviewActiveModifiers(sess)
	price := domain.ClampNonNegative(
		domain.ScaleAmount(ticketType.FaceValue, preview.PriceMultiplier) + preview.PriceOffset)

	freeTicketUsed := false
	if sess.FreeTicketsRemaining > 0 {
		price = 0
		freeTicketUsed = true
		s.sessions.DecrementFreeTicket(sess)
	}

	if price > sess.Balance {
		return nil, domain.ErrInsufficientFunds(sess.Balance, price)
	}

	// Consumption decrements remaining-use counts but yields the same
	// aggregate the preview did for this purchase.
	modifiers := s.sessions.ConsumeActiveModifiers(sess)
	if !freeTicketUsed {
		price = domain.ClampNonNegative(
			domain.ScaleAmount(ticketType.FaceValue, modifiers.PriceMultiplier) + modifiers.PriceOffset)
	}

	ticket := s.issueTicket(ticketType)

	if price > 0 {
		s.sessions.ApplyBalanceDelta(sess, -price, domain.TxPurchase, &ticket.ID, map[string]any{
			"ticketTypeId":    ticketType.ID,
			"priceMultiplier": modifiers.PriceMultiplier,
			"priceOffset":     modifiers.PriceOffset,
			"freeTicketUsed":  freeTicketUsed,
		})
	} else {
		s.sessions.RecordNonMonetaryTransaction(sess, domain.TxFreeTicket, &ticket.ID, map[string]any{
			"ticketTypeId": ticketType.ID,
		})
	}

	dist, err := s.catalog.PrizeDistribution(ticketType.ID)
	if err != nil {
		return nil, err
	}
	var outcome *domain.PrizeOutcome
	if won := prize.Roll(dist, modifiers.RTPMultiplier, s.source); won != nil && won.Amount > 0 {
		ticket.PrizeAwarded = won.Amount
		ticket.PrizeTierLabel = won.Label
		outcome = won
		s.sessions.ApplyBalanceDelta(sess, won.Amount, domain.TxWin, &ticket.ID, map[string]any{
			"ticketTypeId": ticketType.ID,
			"prizeLabel":   won.Label,
		})
	}

	s.sessions.RecordTicket(sess, ticket)
	s.sessions.IncrementScratchCount(sess)
	s.sessions.StampPurchase(sess, time.Now())
	s.sessions.UpdateStateFromBalance(sess)
	s.sessions.TickEncounterCooldowns(sess)

	return &Result{
		Status:         StatusCompleted,
		Session:        sess.Clone(),
		Resolution:     resolution,
		Ticket:         &ticket,
		PricePaid:      price,
		Prize:          outcome,
		FreeTicketUsed: freeTicketUsed,
	}, nil
}

// observe records metrics and analytics for a finished call, outside the
// session critical section.
func (s *Service) observe(result *Result, elapsed time.Duration) {
	infra.PurchaseLatency.Observe(elapsed.Seconds())

	if result.Resolution != nil {
		infra.EncountersResolved.WithLabelValues(result.Resolution.EventID).Inc()
		s.emit("encounter.resolved", map[string]any{
			"sessionId": result.Session.ID.String(),
			"eventId":   result.Resolution.EventID,
			"optionId":  result.Resolution.Option.ID,
		})
	}

	switch result.Status {
	case StatusEncounterRequired:
		if result.newEncounter {
			infra.EncountersTriggered.WithLabelValues(result.Encounter.Event.ID).Inc()
		}
	case StatusCompleted:
		infra.TicketsSold.WithLabelValues(result.Ticket.TicketTypeID).Inc()
		if result.Prize != nil {
			infra.PrizesWon.WithLabelValues(result.Ticket.TicketTypeID).Inc()
		}
		s.emit("purchase.completed", map[string]any{
			"sessionId":    result.Session.ID.String(),
			"ticketId":     result.Ticket.ID.String(),
			"ticketTypeId": result.Ticket.TicketTypeID,
			"pricePaid":    result.PricePaid,
			"prize":        result.Ticket.PrizeAwarded,
			"freeTicket":   result.FreeTicketUsed,
		})
	}

	if result.Session.State.Terminal() {
		infra.SessionsFinished.WithLabelValues(string(result.Session.State)).Inc()
		s.emit("session.finished", map[string]any{
			"sessionId": result.Session.ID.String(),
			"state":     string(result.Session.State),
			"balance":   result.Session.Balance,
		})
	}
}

func (s *Service) emit(eventType string, payload map[string]any) {
	if s.analytics != nil {
		s.analytics.Emit(eventType, payload)
	}
}
