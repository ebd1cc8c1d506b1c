package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCents(t *testing.T) {
	assert.Equal(t, int64(100), Cents(1.00))
	assert.Equal(t, int64(150), Cents(1.499999999))
	assert.Equal(t, int64(-250), Cents(-2.50))
	assert.Equal(t, int64(0), Cents(0))

	// classic float representation case
	assert.Equal(t, int64(29), Cents(0.29))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, 1.0, Units(100))
	assert.Equal(t, -0.5, Units(-50))
}

func TestScaleAmount(t *testing.T) {
	assert.Equal(t, int64(200), ScaleAmount(100, 2))
	assert.Equal(t, int64(50), ScaleAmount(100, 0.5))
	assert.Equal(t, int64(33), ScaleAmount(100, 0.333))
	assert.Equal(t, int64(0), ScaleAmount(100, 0))

	// non-finite factors leave the amount untouched
	assert.Equal(t, int64(100), ScaleAmount(100, math.NaN()))
	assert.Equal(t, int64(100), ScaleAmount(100, math.Inf(1)))
}

func TestClampNonNegative(t *testing.T) {
	assert.Equal(t, int64(0), ClampNonNegative(-5))
	assert.Equal(t, int64(0), ClampNonNegative(0))
	assert.Equal(t, int64(7), ClampNonNegative(7))
}
