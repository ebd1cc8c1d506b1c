// Package catalog loads and validates the game configuration file and serves
// it as an immutable, precomputed catalog: ticket types, encounter events,
// game settings, and one calibrated prize distribution per ticket type.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scratchden/platform/internal/domain"
	"github.com/scratchden/platform/internal/prize"
)

// Catalog is read-only after Load and safe to share without locking.
type Catalog struct {
	tickets       []domain.TicketType
	ticketIndex   map[string]domain.TicketType
	events        []domain.EncounterEvent
	settings      domain.GameSettings
	distributions map[string]domain.PrizeDistribution
}

// Load reads, validates, and precomputes a catalog from a YAML or JSON file.
func Load(path string) (*Catalog, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file configFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(contents, &file)
	} else {
		err = yaml.Unmarshal(contents, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	return build(file)
}

func build(file configFile) (*Catalog, error) {
	if err := validateConfig(file); err != nil {
		return nil, err
	}

	c := &Catalog{
		ticketIndex:   make(map[string]domain.TicketType, len(file.TicketTypes)),
		distributions: make(map[string]domain.PrizeDistribution, len(file.TicketTypes)),
		settings: domain.GameSettings{
			InitialBalance:      domain.Cents(file.Game.InitialBalance),
			TargetBalance:       domain.Cents(file.Game.TargetBalance),
			MinPurchaseInterval: file.Game.MinPurchaseIntervalMs,
			MaxSessionsPerDay:   file.Game.MaxSessionsPerDay,
		},
	}
	if file.Game.Analytics != nil {
		c.settings.AnalyticsStream = file.Game.Analytics.Stream
	}

	for _, ft := range file.TicketTypes {
		ticket := ft.toDomain()
		if _, dup := c.ticketIndex[ticket.ID]; dup {
			return nil, domain.ErrValidation(fmt.Sprintf("duplicate ticket type id %q", ticket.ID))
		}
		c.tickets = append(c.tickets, ticket)
		c.ticketIndex[ticket.ID] = ticket
		c.distributions[ticket.ID] = prize.Calibrate(ticket, prize.DefaultPoolSize)
	}

	for _, fe := range file.EncounterEvents {
		c.events = append(c.events, fe.toDomain())
	}

	return c, nil
}

// ListTicketTypes returns copies of all ticket types in file order.
func (c *Catalog) ListTicketTypes() []domain.TicketType {
	out := make([]domain.TicketType, len(c.tickets))
	for i, t := range c.tickets {
		out[i] = cloneTicket(t)
	}
	return out
}

// TicketType looks up one ticket type by id.
func (c *Catalog) TicketType(id string) (domain.TicketType, error) {
	t, ok := c.ticketIndex[id]
	if !ok {
		return domain.TicketType{}, domain.ErrNotFound("ticket type", id)
	}
	return cloneTicket(t), nil
}

// EncounterEvents returns copies of all encounter event definitions.
func (c *Catalog) EncounterEvents() []domain.EncounterEvent {
	out := make([]domain.EncounterEvent, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Clone()
	}
	return out
}

// PrizeDistribution returns the precomputed distribution for a ticket type.
func (c *Catalog) PrizeDistribution(ticketTypeID string) (domain.PrizeDistribution, error) {
	dist, ok := c.distributions[ticketTypeID]
	if !ok {
		return domain.PrizeDistribution{}, domain.ErrNotFound("prize distribution", ticketTypeID)
	}
	entries := make([]domain.PrizeDistributionEntry, len(dist.Entries))
	copy(entries, dist.Entries)
	dist.Entries = entries
	return dist, nil
}

// Settings returns the game settings.
func (c *Catalog) Settings() domain.GameSettings { return c.settings }

func cloneTicket(t domain.TicketType) domain.TicketType {
	tiers := make([]domain.PrizeTier, len(t.PrizeTiers))
	copy(tiers, t.PrizeTiers)
	t.PrizeTiers = tiers
	name := make(map[string]string, len(t.Name))
	for k, v := range t.Name {
		name[k] = v
	}
	t.Name = name
	return t
}
