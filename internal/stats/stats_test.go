package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinRate(t *testing.T) {
	tests := []struct {
		name                string
		wins, losses, draws int
		want                float64
	}{
		{"no games is zero, not NaN", 0, 0, 0, 0},
		{"all wins", 10, 0, 0, 1},
		{"half", 5, 5, 0, 0.5},
		{"draws count in denominator", 2, 1, 1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WinRate(tt.wins, tt.losses, tt.draws)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, ConversionRate(3, 0))
	assert.InDelta(t, 0.25, ConversionRate(4, 16), 1e-9)
}

func TestConversionScoreSentinels(t *testing.T) {
	// No expectation is neutral, not underperformance.
	assert.Equal(t, 100.0, ConversionScore(0, 0))
	assert.Equal(t, 100.0, ConversionScore(7, 0))

	// Twice the expected top cuts.
	assert.InDelta(t, 200.0, ConversionScore(10, 5), 1e-9)

	assert.InDelta(t, 100.0, ConversionScore(5, 5), 1e-9)
	assert.InDelta(t, 50.0, ConversionScore(1, 2), 1e-9)
}

func TestInclusionRate(t *testing.T) {
	assert.Equal(t, 0.0, InclusionRate(10, 0))
	assert.InDelta(t, 80.0, InclusionRate(40, 50), 1e-9)
}

func TestCohenH(t *testing.T) {
	assert.InDelta(t, 0, CohenH(0.5, 0.5), 1e-9)
	assert.Greater(t, CohenH(0.7, 0.3), 0.0)
	assert.Less(t, CohenH(0.3, 0.7), 0.0)
	assert.False(t, math.IsNaN(CohenH(0, 1)))
}

func TestEffectSizeSign(t *testing.T) {
	// Card above baseline gives a positive h, below gives negative, and the
	// two are symmetric.
	above := EffectSize(60, 40, 400, 600)
	below := EffectSize(40, 60, 600, 400)

	assert.Greater(t, above.EffectSize, 0.0)
	assert.Less(t, below.EffectSize, 0.0)
	assert.InDelta(t, above.EffectSize, -below.EffectSize, 1e-9)

	// CI brackets the point estimate.
	assert.Less(t, above.LowerCI, above.EffectSize)
	assert.Greater(t, above.UpperCI, above.EffectSize)
}

func TestEffectSizeEmptySamples(t *testing.T) {
	assert.Equal(t, EffectSizeResult{}, EffectSize(0, 0, 100, 100))
	assert.Equal(t, EffectSizeResult{}, EffectSize(50, 50, 0, 0))
}

func TestChiSquareEmptySamples(t *testing.T) {
	got := ChiSquare(0, 0, 100, 100)
	assert.Equal(t, 0.0, got.ChiSquare)
	assert.Equal(t, 1.0, got.PValue)
}

func TestChiSquareLargeSample(t *testing.T) {
	// All cells >= 5, Yates-corrected chi-square path.
	got := ChiSquare(50, 30, 500, 400)

	assert.Greater(t, got.ChiSquare, 0.0)
	assert.Greater(t, got.PValue, 0.0)
	assert.LessOrEqual(t, got.PValue, 1.0)

	// Strongly divergent proportions are more significant than mild ones.
	strong := ChiSquare(90, 10, 500, 500)
	assert.Less(t, strong.PValue, got.PValue)
}

func TestChiSquareSmallSampleUsesExactTest(t *testing.T) {
	// A cell below 5 takes the exact-test path; p stays a valid probability.
	got := ChiSquare(3, 2, 500, 400)

	assert.GreaterOrEqual(t, got.ChiSquare, 0.0)
	assert.Greater(t, got.PValue, 0.0)
	assert.LessOrEqual(t, got.PValue, 1.0)
}

func TestConfidenceBounds(t *testing.T) {
	// No data at all.
	assert.Equal(t, 0, Confidence(0, 0, 0, 0, 0, 0, 0, 0))
	assert.Equal(t, 0, Confidence(5, 5, 0, 0, 100, 100, 0, 50))

	// Large sample, strong effect, still within [0, 100].
	high := Confidence(180, 20, 0, 120, 500, 500, 0, 400)
	assert.GreaterOrEqual(t, high, 0)
	assert.LessOrEqual(t, high, 100)

	// Tiny sample scores lower than a large one with the same proportions.
	low := Confidence(2, 2, 0, 3, 500, 500, 0, 400)
	big := Confidence(200, 200, 0, 300, 500, 500, 0, 400)
	assert.Less(t, low, big)
}

func TestConfidenceSampleSizeSaturates(t *testing.T) {
	// The sample component follows a sigmoid: growth beyond the target adds
	// little.
	at := Confidence(100, 100, 0, 150, 1000, 1000, 0, 800)
	beyond := Confidence(500, 500, 0, 700, 5000, 5000, 0, 4000)

	assert.LessOrEqual(t, beyond-at, 10)
}
