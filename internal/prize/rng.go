package prize

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// RandomSource yields uniform draws in [0,1). It is injected everywhere
// randomness is consumed so rolls are reproducible under test.
type RandomSource interface {
	Float64() float64
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// 53 random bits, matching float64 mantissa width.
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

// DefaultSource returns the crypto-backed production source.
func DefaultSource() RandomSource { return cryptoSource{} }

type seededSource struct{ r *rand.Rand }

// NewSeededSource returns a deterministic source for reproducible rolls.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewSource(int64(seed)))}
}

func (s *seededSource) Float64() float64 { return s.r.Float64() }
