package encounter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scratchden/platform/internal/catalog"
	"github.com/scratchden/platform/internal/domain"
	"github.com/scratchden/platform/internal/session"
)

// stubSource replays a fixed sequence of draws.
type stubSource struct {
	vals []float64
	i    int
}

func (s *stubSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

const testConfig = `
ticketTypes:
  - id: basic
    name:
      en: Basic
    faceValue: 1.00
    rtpTarget: 0.5
    maxPrize: 50.00
    prizeTiers:
      - label: win
        amount: 5.00
        share: 1.0

encounterEvents:
  - id: spirit
    name: Spirit
    triggerChance: 0.1
    maxPerSession: 2
    options:
      - id: bless
        label: Blessing
        effect:
          freeTickets: 1
      - id: bargain
        label: Bargain
        effect:
          balanceBonus: 5.00
          priceMultiplier: 2.0
          modifierDuration: 3
        cooldown: 4
      - id: curse
        label: Curse
        effect:
          balancePenalty: 200.00

game:
  initialBalance: 100.00
  targetBalance: 500.00
`

func newFixture(t *testing.T, source *stubSource) (*Engine, *session.Store, *domain.GameSession) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	cat, err := catalog.Load(path)
	require.NoError(t, err)

	sessions := session.NewStore(cat.Settings())
	engine := NewEngine(cat, sessions, source)
	created := sessions.Create("")
	return engine, sessions, created
}

// withLive runs fn against the live session under its lock.
func withLive(t *testing.T, s *session.Store, sess *domain.GameSession, fn func(live *domain.GameSession)) {
	t.Helper()
	require.NoError(t, s.With(sess.ID, func(live *domain.GameSession) error {
		fn(live)
		return nil
	}))
}

// --- MaybeTrigger Tests ---

func TestMaybeTrigger(t *testing.T) {
	t.Run("roll under trigger chance fires", func(t *testing.T) {
		// one eligible event: no shuffle draw is consumed, the first draw is
		// the trigger roll
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.05}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			pending := engine.MaybeTrigger(live)
			require.NotNil(t, pending)
			assert.Equal(t, "spirit", pending.Event.ID)
			assert.Same(t, live.PendingEncounter, pending)
			assert.Equal(t, 1, live.EncounterCount)
			require.Len(t, live.EncounterHistory, 1)
			assert.Nil(t, live.EncounterHistory[0].ResolvedAt)
		})
	})

	t.Run("roll at or above trigger chance does not fire", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.1}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			assert.Nil(t, engine.MaybeTrigger(live))
			assert.Nil(t, live.PendingEncounter)
			assert.Zero(t, live.EncounterCount)
		})
	})

	t.Run("per-session cap exhausts the event", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			for i := 0; i < 2; i++ {
				require.NotNil(t, engine.MaybeTrigger(live))
				sessions.ClearPendingEncounter(live)
			}
			assert.Nil(t, engine.MaybeTrigger(live))
			assert.Equal(t, 2, live.EncounterCount)
		})
	})

	t.Run("options on cooldown are filtered from the pending event", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			sessions.SetOptionCooldown(live, session.OptionKey("spirit", "bargain"), 3)
			pending := engine.MaybeTrigger(live)
			require.NotNil(t, pending)
			require.Len(t, pending.Event.Options, 2)
			for _, opt := range pending.Event.Options {
				assert.NotEqual(t, "bargain", opt.ID)
			}
		})
	})
}

// --- ResolveOption Tests ---

func TestResolveOption(t *testing.T) {
	t.Run("no pending encounter", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.5}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			_, err := engine.ResolveOption(live, "bless")
			var appErr *domain.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "NO_PENDING_ENCOUNTER", appErr.Code)
		})
	})

	t.Run("unknown option", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			require.NotNil(t, engine.MaybeTrigger(live))
			_, err := engine.ResolveOption(live, "nope")
			var appErr *domain.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "ENCOUNTER_OPTION_INVALID", appErr.Code)
			// pending encounter survives a failed resolution
			assert.NotNil(t, live.PendingEncounter)
		})
	})

	t.Run("free ticket option", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			require.NotNil(t, engine.MaybeTrigger(live))
			res, err := engine.ResolveOption(live, "bless")
			require.NoError(t, err)
			assert.Equal(t, 1, res.FreeTicketsGranted)
			assert.Equal(t, 1, live.FreeTicketsRemaining)
			assert.Empty(t, res.Transactions)
			assert.Nil(t, live.PendingEncounter)
			assert.Equal(t, domain.OutcomeSelected, live.EncounterHistory[0].Outcome)
		})
	})

	t.Run("bonus plus modifier plus cooldown", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			require.NotNil(t, engine.MaybeTrigger(live))
			res, err := engine.ResolveOption(live, "bargain")
			require.NoError(t, err)

			require.Len(t, res.Transactions, 1)
			assert.Equal(t, domain.TxEncounterBonus, res.Transactions[0].Type)
			assert.Equal(t, int64(500), res.Transactions[0].Delta)
			assert.Equal(t, int64(10_500), live.Balance)

			require.Len(t, res.ModifiersApplied, 1)
			assert.Equal(t, 3, res.ModifiersApplied[0].RemainingPurchases)
			require.Len(t, live.ActiveModifiers, 1)

			assert.True(t, sessions.IsOptionOnCooldown(live, session.OptionKey("spirit", "bargain")))
		})
	})

	t.Run("penalty is forced negative and can end the session", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			require.NotNil(t, engine.MaybeTrigger(live))
			res, err := engine.ResolveOption(live, "curse")
			require.NoError(t, err)

			require.Len(t, res.Transactions, 1)
			assert.Equal(t, domain.TxEncounterPenalty, res.Transactions[0].Type)
			// 200.00 penalty exceeds the 100.00 balance; the applied delta
			// clamps and the session is lost
			assert.Equal(t, int64(-10_000), res.Transactions[0].Delta)
			assert.Equal(t, int64(0), live.Balance)
			assert.Equal(t, domain.StateLost, live.State)
		})
	})

	t.Run("option on cooldown is rejected", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			require.NotNil(t, engine.MaybeTrigger(live))
			// cooldown applied after the trigger snapshot was taken
			sessions.SetOptionCooldown(live, session.OptionKey("spirit", "bless"), 2)
			_, err := engine.ResolveOption(live, "bless")
			var appErr *domain.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "ENCOUNTER_OPTION_COOLDOWN", appErr.Code)
		})
	})

	t.Run("modifier duration defaults to one purchase", func(t *testing.T) {
		engine, sessions, sess := newFixture(t, &stubSource{vals: []float64{0.0}})
		withLive(t, sessions, sess, func(live *domain.GameSession) {
			require.NotNil(t, engine.MaybeTrigger(live))
			sessions.ClearPendingEncounter(live)
			sessions.SetPendingEncounter(live, &domain.PendingEncounter{
				Event: domain.EncounterEvent{
					ID: "spirit",
					Options: []domain.EncounterOption{{
						ID:     "boost",
						Label:  "Boost",
						Effect: domain.EncounterEffect{RTPMultiplier: fptr(2)},
					}},
				},
			})
			res, err := engine.ResolveOption(live, "boost")
			require.NoError(t, err)
			require.Len(t, res.ModifiersApplied, 1)
			assert.Equal(t, 1, res.ModifiersApplied[0].RemainingPurchases)
		})
	})
}

func fptr(v float64) *float64 { return &v }
