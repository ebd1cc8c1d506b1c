package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scratchden/platform/internal/domain"
	"github.com/scratchden/platform/internal/purchase"
)

// SessionHandler handles session lifecycle and ticket purchase endpoints.
type SessionHandler struct {
	svc *purchase.Service
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc *purchase.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type createSessionRequest struct {
	PlayerID string `json:"player_id"`
}

type sessionResponse struct {
	Session *domain.GameSession `json:"session"`
}

// CreateSession handles POST /sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			RespondError(w, domain.ErrValidation("invalid request body"))
			return
		}
	}

	sess, err := h.svc.CreateSession(req.PlayerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, sessionResponse{Session: sess})
}

// sessionSummary is the per-session shape of the listing endpoint.
type sessionSummary struct {
	ID             string              `json:"id"`
	PlayerID       string              `json:"player_id,omitempty"`
	State          domain.SessionState `json:"state"`
	Balance        int64               `json:"balance"`
	MaxBalance     int64               `json:"max_balance"`
	ScratchCount   int                 `json:"scratch_count"`
	EncounterCount int                 `json:"encounter_count"`
	StartedAt      string              `json:"started_at"`
}

// ListSessions handles GET /sessions.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.svc.ListSessions()
	summaries := make([]sessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, sessionSummary{
			ID:             s.ID.String(),
			PlayerID:       s.PlayerID,
			State:          s.State,
			Balance:        s.Balance,
			MaxBalance:     s.MaxBalance,
			ScratchCount:   s.ScratchCount,
			EncounterCount: s.EncounterCount,
			StartedAt:      s.StartedAt.Format(time.RFC3339),
		})
	}
	RespondJSON(w, http.StatusOK, map[string]any{"sessions": summaries})
}

// GetSession handles GET /sessions/{sessionID}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

type purchaseRequest struct {
	TicketTypeID      string `json:"ticket_type_id"`
	EncounterOptionID string `json:"encounter_option_id,omitempty"`
}

// purchaseResponse is the shape of POST /sessions/{sessionID}/purchase. Only
// the fields relevant to the returned status are populated.
type purchaseResponse struct {
	Status         purchase.Status             `json:"status"`
	Session        *domain.GameSession         `json:"session"`
	Encounter      *domain.PendingEncounter    `json:"encounter,omitempty"`
	Resolution     *domain.EncounterResolution `json:"resolution,omitempty"`
	Ticket         *domain.TicketInstance      `json:"ticket,omitempty"`
	PricePaid      int64                       `json:"price_paid"`
	Prize          *domain.PrizeOutcome        `json:"prize,omitempty"`
	FreeTicketUsed bool                        `json:"free_ticket_used"`
}

// Purchase handles POST /sessions/{sessionID}/purchase.
func (h *SessionHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.TicketTypeID == "" {
		RespondError(w, domain.ErrValidation("ticket_type_id is required"))
		return
	}

	result, err := h.svc.HandlePurchase(chi.URLParam(r, "sessionID"), req.TicketTypeID, req.EncounterOptionID)
	if err != nil {
		RespondError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == purchase.StatusSessionClosed {
		status = http.StatusConflict
	}
	RespondJSON(w, status, purchaseResponse{
		Status:         result.Status,
		Session:        result.Session,
		Encounter:      result.Encounter,
		Resolution:     result.Resolution,
		Ticket:         result.Ticket,
		PricePaid:      result.PricePaid,
		Prize:          result.Prize,
		FreeTicketUsed: result.FreeTicketUsed,
	})
}

type terminateRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Terminate handles DELETE /sessions/{sessionID}.
func (h *SessionHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	var req terminateRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			RespondError(w, domain.ErrValidation("invalid request body"))
			return
		}
	}
	if req.Reason == "" {
		req.Reason = "client_request"
	}

	sess, err := h.svc.TerminateSession(chi.URLParam(r, "sessionID"), req.Reason)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sessionResponse{Session: sess})
}
