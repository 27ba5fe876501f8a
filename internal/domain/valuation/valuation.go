// Package valuation derives player output and the internal market value.
//
// Market value is a deliberately simple linear score, not a market model:
// basis points times a fixed rate, halved for players who are out.
package valuation

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PointRate converts one basis point into market value credits.
	PointRate = 300000
	// FloorBasisPoints keeps rostered players with no data above zero.
	FloorBasisPoints = 5.0
)

var (
	rate           = decimal.NewFromInt(PointRate)
	injuryDiscount = decimal.NewFromFloat(0.5)
)

// Source names the step of the fallback chain that produced the basis.
type Source string

const (
	SourceActual        Source = "actual"
	SourcePoints        Source = "points"
	SourcePrediction    Source = "prediction"
	SourceSeasonAverage Source = "season_average"
	SourceFloor         Source = "floor"
)

var outStatuses = map[string]struct{}{
	"O":     {},
	"OUT":   {},
	"INJ":   {},
	"IR":    {},
	"IR-LT": {},
	"IR-NR": {},
	"IL":    {},
	"IL10":  {},
	"IL15":  {},
	"IL60":  {},
}

// Inputs are the statistics the normalizer could find for one player.
// Points keeps payload order; the first entry is the actual total.
type Inputs struct {
	Points      []float64
	Predictions []float64
	SeasonTotal float64
	GamesPlayed float64
	Status      string
}

type Result struct {
	FantasyPoints   float64
	ProjectedPoints float64
	BasisPoints     float64
	Source          Source
	MarketValue     int64
}

// Evaluate walks the fallback chain and stops at the first positive source.
// When actual points are missing, the estimate is mirrored into FantasyPoints.
func Evaluate(in Inputs) Result {
	res := evaluateBasis(in)
	res.MarketValue = ComputeValuation(res.BasisPoints, in.Status)
	return res
}

func evaluateBasis(in Inputs) Result {
	if len(in.Points) > 0 && in.Points[0] > 0 {
		actual := in.Points[0]
		projected := firstPositive(in.Points[1:])
		if projected == 0 {
			projected = firstPositive(in.Predictions)
		}
		if projected == 0 {
			projected = actual
		}
		return Result{FantasyPoints: actual, ProjectedPoints: projected, BasisPoints: actual, Source: SourceActual}
	}

	if v := firstPositive(in.Points); v > 0 {
		return mirrored(v, SourcePoints)
	}
	if v := firstPositive(in.Predictions); v > 0 {
		return mirrored(v, SourcePrediction)
	}
	if avg := SeasonAverage(in.SeasonTotal, in.GamesPlayed); avg > 0 {
		return mirrored(avg, SourceSeasonAverage)
	}
	return Result{BasisPoints: FloorBasisPoints, Source: SourceFloor}
}

func mirrored(v float64, src Source) Result {
	return Result{FantasyPoints: v, ProjectedPoints: v, BasisPoints: v, Source: src}
}

// SeasonAverage is total over games played rounded to one decimal, zero when games played is zero.
func SeasonAverage(total, gamesPlayed float64) float64 {
	if gamesPlayed <= 0 || total <= 0 {
		return 0
	}
	avg, _ := decimal.NewFromFloat(total).Div(decimal.NewFromFloat(gamesPlayed)).Round(1).Float64()
	return avg
}

// ComputeValuation is round(basisPoints * PointRate), halved afterwards when status marks the player out.
func ComputeValuation(basisPoints float64, status string) int64 {
	if basisPoints <= 0 {
		return 0
	}
	value := decimal.NewFromFloat(basisPoints).Mul(rate).Round(0)
	if IsOut(status) {
		value = value.Mul(injuryDiscount).Round(0)
	}
	return value.IntPart()
}

// IsOut reports whether status is an out or injured-reserve designation.
func IsOut(status string) bool {
	_, ok := outStatuses[strings.ToUpper(strings.TrimSpace(status))]
	return ok
}

func firstPositive(values []float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
