package purchase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scratchden/platform/internal/domain"
)

// --- Ticket Issuance Tests ---

func TestIssueTicket(t *testing.T) {
	svc := &Service{}

	t.Run("mints a signed instance bound to the type", func(t *testing.T) {
		ticket := svc.issueTicket(domain.TicketType{ID: "gold-rush"})

		assert.Equal(t, "gold-rush", ticket.TicketTypeID)
		assert.NotEqual(t, "", ticket.ID.String())
		assert.NotEmpty(t, ticket.Seed)
		assert.Len(t, ticket.Signature, 64)
		assert.False(t, ticket.CreatedAt.IsZero())
		assert.True(t, strings.HasPrefix(ticket.Code, "GOLD-RUS-"))
	})

	t.Run("successive tickets differ", func(t *testing.T) {
		a := svc.issueTicket(domain.TicketType{ID: "basic"})
		b := svc.issueTicket(domain.TicketType{ID: "basic"})
		require.NotEqual(t, a.ID, b.ID)
		assert.NotEqual(t, a.Seed, b.Seed)
		assert.NotEqual(t, a.Signature, b.Signature)
	})

	t.Run("code prefix truncates long type ids", func(t *testing.T) {
		ticket := svc.issueTicket(domain.TicketType{ID: "superduperlong"})
		prefix, _, ok := strings.Cut(ticket.Code, "-")
		require.True(t, ok)
		assert.Equal(t, "SUPERDUP", prefix)
		assert.Len(t, ticket.Code, 8+1+10)
	})
}
