// Package stats computes performance metrics and confidence scoring for
// commander and card aggregates. All functions are pure and total: every
// input produces a finite result, never NaN or Inf.
package stats

import "math"

// Target sample size for full sample-size score, from a power analysis at
// alpha 0.05 and power 0.8.
const TargetSampleSize = 100

// Z-score for a 95% confidence level.
const ZScore95 = 1.96

// Confidence score component caps. They sum to 100.
const (
	MaxSampleSizeScore   = 40.0
	MaxSignificanceScore = 30.0
	MaxEffectSizeScore   = 30.0
)

// pValueFloor avoids -log10(0) blowing up the significance score.
const pValueFloor = 1e-10

// EffectSizeResult holds Cohen's h with its 95% confidence interval.
type EffectSizeResult struct {
	EffectSize float64
	LowerCI    float64
	UpperCI    float64
}

// ChiSquareResult holds a test statistic and its approximate p-value.
type ChiSquareResult struct {
	ChiSquare float64
	PValue    float64
}

// WinRate returns wins/(wins+losses+draws) as a 0..1 fraction, 0 when no
// games were played.
func WinRate(wins, losses, draws int) float64 {
	total := wins + losses + draws
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// ConversionRate returns topCuts/entries as a 0..1 fraction, 0 when there
// are no entries.
func ConversionRate(topCuts, entries int) float64 {
	if entries == 0 {
		return 0
	}
	return float64(topCuts) / float64(entries)
}

// ConversionScore compares achieved top cuts against the expected count
// implied by tournament sizes, as a percentage. 100 means exactly as many
// top cuts as expected. When nothing was expected the score is the neutral
// 100, not 0: absence of expectation is not underperformance.
func ConversionScore(topCuts int, expectedTopCuts float64) float64 {
	if expectedTopCuts == 0 {
		return 100
	}
	return float64(topCuts) / expectedTopCuts * 100
}

// InclusionRate returns how often a card appears in a commander's decks as
// a percentage, 0 when the commander has no entries.
func InclusionRate(cardEntries, commanderEntries int) float64 {
	if commanderEntries == 0 {
		return 0
	}
	return float64(cardEntries) / float64(commanderEntries) * 100
}

// CohenH returns Cohen's h distance between two proportions:
// 2*asin(sqrt(p1)) - 2*asin(sqrt(p2)). The arcsine transform stabilizes
// variance across proportion values. |h| of 0.2 is conventionally a small
// effect, 0.5 medium, 0.8 large.
func CohenH(p1, p2 float64) float64 {
	return 2*math.Asin(math.Sqrt(p1)) - 2*math.Asin(math.Sqrt(p2))
}

// EffectSize computes Cohen's h for a card's win proportion against the
// commander baseline, with a 95% CI. The SE of an arcsine-transformed
// proportion approximates 1/sqrt(n); the two samples are combined by the
// variance addition rule. Returns the zero result when either sample is
// empty.
func EffectSize(cardWins, cardLosses, commanderWins, commanderLosses int) EffectSizeResult {
	cardTotal := cardWins + cardLosses
	commanderTotal := commanderWins + commanderLosses

	if cardTotal == 0 || commanderTotal == 0 {
		return EffectSizeResult{}
	}

	cardP := float64(cardWins) / float64(cardTotal)
	commanderP := float64(commanderWins) / float64(commanderTotal)

	h := CohenH(cardP, commanderP)

	cardSE := 1 / math.Sqrt(float64(cardTotal))
	commanderSE := 1 / math.Sqrt(float64(commanderTotal))
	combinedSE := math.Sqrt(cardSE*cardSE + commanderSE*commanderSE)

	return EffectSizeResult{
		EffectSize: h,
		LowerCI:    h - ZScore95*combinedSE,
		UpperCI:    h + ZScore95*combinedSE,
	}
}

// ChiSquare tests whether a card's win rate differs from the commander
// baseline using a 2x2 contingency table:
//
//	                   | Wins | Losses |
//	Card played        | a    | b      |
//	Commander baseline | c    | d      |
//
// Any cell below 5 switches to Fisher's exact test, where the chi-square
// approximation breaks down. Larger samples use chi-square with Yates'
// continuity correction. The p-value uses the 1-df exponential
// approximation P(x² > x) = e^(-x/2).
func ChiSquare(cardWins, cardLosses, commanderWins, commanderLosses int) ChiSquareResult {
	cardTotal := cardWins + cardLosses
	commanderTotal := commanderWins + commanderLosses
	total := cardTotal + commanderTotal

	if cardTotal == 0 || commanderTotal == 0 {
		return ChiSquareResult{ChiSquare: 0, PValue: 1}
	}

	if cardWins < 5 || cardLosses < 5 || commanderWins < 5 || commanderLosses < 5 {
		return fisherExact(cardWins, cardLosses, commanderWins, commanderLosses, total)
	}

	expectedWins := float64(cardTotal) * float64(commanderWins+cardWins) / float64(total)
	expectedLosses := float64(cardTotal) * float64(commanderLosses+cardLosses) / float64(total)

	chi := math.Pow(math.Abs(float64(cardWins)-expectedWins)-0.5, 2)/expectedWins +
		math.Pow(math.Abs(float64(cardLosses)-expectedLosses)-0.5, 2)/expectedLosses

	return ChiSquareResult{ChiSquare: chi, PValue: math.Exp(-chi / 2)}
}

// fisherExact computes the table probability
// (a+b)!(c+d)!(a+c)!(b+d)! / (a!b!c!d!n!) in log space to avoid overflow,
// then maps it onto the chi-square scale so callers see a uniform result
// shape.
func fisherExact(a, b, c, d, n int) ChiSquareResult {
	logProb := logFactorial(a+b) + logFactorial(c+d) + logFactorial(a+c) + logFactorial(b+d) -
		logFactorial(a) - logFactorial(b) - logFactorial(c) - logFactorial(d) - logFactorial(n)

	chi := -2 * logProb
	return ChiSquareResult{ChiSquare: chi, PValue: math.Exp(-chi / 2)}
}

// logFactorial returns ln(n!) via the log-gamma function.
func logFactorial(n int) float64 {
	if n < 2 {
		return 0
	}
	lg, _ := math.Lgamma(float64(n) + 1)
	return lg
}

// Confidence combines three components into a 0..100 score:
//
//  1. Sample size (0-40): sigmoid over total card games, full marks near
//     TargetSampleSize.
//  2. Significance (0-30): -log10(p) * 10 from the contingency test, p
//     floored at 1e-10.
//  3. Effect size (0-30): |h| * 37.5 penalized by CI width.
//
// Returns 0 when either side has no games or no entries.
func Confidence(
	cardWins, cardLosses, cardDraws, cardEntries,
	commanderWins, commanderLosses, commanderDraws, commanderEntries int,
) int {
	cardGames := cardWins + cardLosses + cardDraws
	commanderGames := commanderWins + commanderLosses + commanderDraws

	if cardGames == 0 || commanderGames == 0 || cardEntries == 0 || commanderEntries == 0 {
		return 0
	}

	sampleSizeScore := MaxSampleSizeScore /
		(1 + math.Exp(-(float64(cardGames)-TargetSampleSize/2)/(TargetSampleSize/4)))

	test := ChiSquare(cardWins, cardLosses, commanderWins, commanderLosses)
	significanceScore := math.Min(
		MaxSignificanceScore,
		-math.Log10(math.Max(test.PValue, pValueFloor))*10,
	)

	es := EffectSize(cardWins, cardLosses, commanderWins, commanderLosses)
	ciWidth := math.Max(0, es.UpperCI-es.LowerCI)
	effectScore := math.Min(
		MaxEffectSizeScore,
		math.Abs(es.EffectSize)*37.5*(1-ciWidth/2),
	)

	final := math.Round(sampleSizeScore + significanceScore + effectScore)
	return int(math.Max(0, math.Min(100, final)))
}
