// Package prize calibrates prize distributions against a ticket type's RTP
// target and samples outcomes from them.
package prize

import (
	"math"

	"github.com/scratchden/platform/internal/domain"
)

// DefaultPoolSize is the notional ticket pool used for calibration.
const DefaultPoolSize = 100_000

func clampProbability(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// Calibrate derives a prize distribution from the ticket's tiers. Share mode
// is used when every tier carries a share; otherwise the tiers' weights are
// scaled so the expected payout per ticket matches faceValue*rtpTarget.
func Calibrate(ticket domain.TicketType, poolSize int) domain.PrizeDistribution {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	tiers := ticket.PrizeTiers
	if len(tiers) == 0 {
		return domain.PrizeDistribution{NonWinningProbability: 1}
	}

	allShares := true
	for _, tier := range tiers {
		if tier.Share == nil {
			allShares = false
			break
		}
	}
	if allShares {
		return calibrateShares(ticket, poolSize)
	}
	return calibrateWeights(ticket, poolSize)
}

func calibrateShares(ticket domain.TicketType, poolSize int) domain.PrizeDistribution {
	tiers := ticket.PrizeTiers

	var totalShare float64
	for _, tier := range tiers {
		totalShare += *tier.Share
	}

	// payoutTarget is the budget for the whole notional pool, in cents.
	payoutTarget := float64(poolSize) * float64(ticket.FaceValue) * ticket.RTPTarget

	entries := make([]domain.PrizeDistributionEntry, 0, len(tiers))
	var cumulative float64
	for _, tier := range tiers {
		share := 0.0
		if totalShare > 0 {
			share = *tier.Share / totalShare
		}
		entry := domain.PrizeDistributionEntry{Tier: tier}
		if tier.Amount > 0 && share > 0 {
			expectedWins := payoutTarget * share / float64(tier.Amount)
			if expectedWins >= 1 {
				expectedWins = math.Floor(expectedWins)
			}
			entry.ExpectedWins = expectedWins
			entry.Probability = clampProbability(expectedWins / float64(poolSize))
		}
		cumulative += entry.Probability
		entries = append(entries, entry)
	}

	return domain.PrizeDistribution{
		Entries:               entries,
		NonWinningProbability: math.Max(0, 1-cumulative),
	}
}

func calibrateWeights(ticket domain.TicketType, poolSize int) domain.PrizeDistribution {
	tiers := ticket.PrizeTiers

	var totalWeight float64
	for _, tier := range tiers {
		if tier.Weight != nil {
			totalWeight += *tier.Weight
		}
	}
	if totalWeight <= 0 {
		entries := make([]domain.PrizeDistributionEntry, len(tiers))
		for i, tier := range tiers {
			entries[i] = domain.PrizeDistributionEntry{Tier: tier}
		}
		return domain.PrizeDistribution{Entries: entries, NonWinningProbability: 1}
	}

	raw := make([]float64, len(tiers))
	var expectedPayout float64
	for i, tier := range tiers {
		w := 0.0
		if tier.Weight != nil {
			w = *tier.Weight
		}
		raw[i] = w / totalWeight
		expectedPayout += raw[i] * float64(tier.Amount)
	}

	targetPayout := float64(ticket.FaceValue) * ticket.RTPTarget
	scaling := 0.0
	if expectedPayout > 0 {
		scaling = targetPayout / expectedPayout
	}

	entries := make([]domain.PrizeDistributionEntry, len(tiers))
	var sum float64
	for i, tier := range tiers {
		p := clampProbability(raw[i] * scaling)
		entries[i] = domain.PrizeDistributionEntry{Tier: tier, Probability: p}
		sum += p
	}
	if sum > 1 {
		for i := range entries {
			entries[i].Probability /= sum
		}
		sum = 1
	}

	return domain.PrizeDistribution{
		Entries:               entries,
		NonWinningProbability: math.Max(0, 1-sum),
	}
}

// Roll samples one outcome from the distribution. Tier probabilities are
// scaled by rtpMultiplier and renormalized if the scaled sum exceeds 1; an
// rtpMultiplier of 0 therefore never wins. Deterministic for a fixed source.
func Roll(dist domain.PrizeDistribution, rtpMultiplier float64, source RandomSource) *domain.PrizeOutcome {
	if source == nil {
		source = DefaultSource()
	}

	scaled := make([]float64, len(dist.Entries))
	var total float64
	for i, entry := range dist.Entries {
		scaled[i] = clampProbability(entry.Probability * rtpMultiplier)
		total += scaled[i]
	}
	if total > 1 {
		for i := range scaled {
			scaled[i] /= total
		}
	}

	draw := foldDraw(source.Float64())

	var cumulative float64
	for i, entry := range dist.Entries {
		cumulative += scaled[i]
		if draw < cumulative {
			return &domain.PrizeOutcome{Label: entry.Tier.Label, Amount: entry.Tier.Amount}
		}
	}
	return nil
}

// foldDraw forces an arbitrary draw back into range: negative values clamp
// to 0, values above 1 keep their fractional part, and non-finite values
// fall back to a fresh default draw.
func foldDraw(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultSource().Float64()
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return v - math.Floor(v)
	}
	return v
}
