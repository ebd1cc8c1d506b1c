package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scratchden/platform/internal/catalog"
	"github.com/scratchden/platform/internal/domain"
)

// CatalogHandler exposes the read-only ticket catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// ticketTypeView pairs a ticket type with its calibrated prize distribution.
type ticketTypeView struct {
	Ticket       domain.TicketType        `json:"ticket"`
	Distribution domain.PrizeDistribution `json:"distribution"`
}

// ListTickets handles GET /catalog/tickets.
func (h *CatalogHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets := h.catalog.ListTicketTypes()
	views := make([]ticketTypeView, 0, len(tickets))
	for _, t := range tickets {
		dist, err := h.catalog.PrizeDistribution(t.ID)
		if err != nil {
			RespondError(w, err)
			return
		}
		views = append(views, ticketTypeView{Ticket: t, Distribution: dist})
	}
	RespondJSON(w, http.StatusOK, map[string]any{"tickets": views})
}

// GetTicket handles GET /catalog/tickets/{ticketTypeID}.
func (h *CatalogHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketTypeID")
	ticket, err := h.catalog.TicketType(id)
	if err != nil {
		RespondError(w, err)
		return
	}
	dist, err := h.catalog.PrizeDistribution(id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ticketTypeView{Ticket: ticket, Distribution: dist})
}

// ListEncounters handles GET /catalog/encounters.
func (h *CatalogHandler) ListEncounters(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{"events": h.catalog.EncounterEvents()})
}
