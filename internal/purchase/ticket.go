package purchase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scratchden/platform/internal/domain"
)

// issueTicket mints a fresh instance of the ticket type. The signature is an
// audit hash binding the ticket to its seed and mint time, checkable after
// the fact.
func (s *Service) issueTicket(t domain.TicketType) domain.TicketInstance {
	id := uuid.New()
	seed := uuid.NewString()
	createdAt := time.Now().UTC()

	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%s:%s", t.ID, seed, createdAt.Format(time.RFC3339Nano)))
	sig := hex.EncodeToString(sum[:])

	return domain.TicketInstance{
		ID:           id,
		TicketTypeID: t.ID,
		Code:         ticketCode(t.ID, sig),
		Seed:         seed,
		Signature:    sig,
		CreatedAt:    createdAt,
	}
}

// ticketCode renders a short human-readable code, e.g. "GOLD-1A2B3C4D5E".
func ticketCode(typeID, sig string) string {
	prefix := strings.ToUpper(typeID)
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return prefix + "-" + strings.ToUpper(sig[:10])
}
