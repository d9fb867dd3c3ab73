package indicator

import (
	"context"
	"fmt"
	"strings"

	"github.com/dialboard/server/pkg/gauge"
)

// RecessionDial is the composite 0-100 recession risk score with the
// tooltip describing its inputs.
type RecessionDial struct {
	Score   float64
	Tooltip string
}

type component struct {
	name   string
	score  *float64
	weight float64
}

func weightedScore(components []component) (float64, bool) {
	available := []component{}
	weightSum := 0.0
	for _, c := range components {
		if c.score == nil {
			continue
		}
		available = append(available, c)
		weightSum += c.weight
	}
	if len(available) == 0 || weightSum == 0 {
		return 0, false
	}
	score := 0.0
	for _, c := range available {
		score += (c.weight / weightSum) * *c.score
	}
	return score, true
}

func lastValues(series []Observation) ([]float64, float64) {
	values := make([]float64, 0, len(series))
	for _, observation := range series {
		values = append(values, observation.Value)
	}
	return values, series[len(series)-1].Value
}

// BuildRecessionDial blends curve stress (inverted 10y-3m percentile),
// the realtime Sahm rule and a smoothed recession probability. The
// curve contribution is capped while neither labour nor coincident data
// confirms, so an early inversion alone cannot max the dial.
func (b *Builder) BuildRecessionDial(ctx context.Context) (*RecessionDial, error) {
	warnings := []string{}

	var curveScore *float64
	curveSeries, err := b.fred.Series(ctx, "T10Y3M", 6000)
	if err == nil && len(curveSeries) > 0 {
		tail := TailSinceYears(curveSeries, 15)
		if len(tail) > 0 {
			values, now := lastValues(tail)
			score := PercentileScore(now, values, true)
			curveScore = &score
		}
	}
	if curveScore == nil {
		warnings = append(warnings, "Curve(T10Y3M) unavailable")
	}

	var sahmScore *float64
	sahmSeries, err := b.fred.Series(ctx, "SAHMREALTIME", 5000)
	if err == nil && len(sahmSeries) > 0 {
		tail := TailSinceYears(sahmSeries, 20)
		if len(tail) > 0 {
			_, now := lastValues(tail)
			score := gauge.Clamp(now*100.0, 0, 100)
			sahmScore = &score
		}
	}
	if sahmScore == nil {
		warnings = append(warnings, "Sahm(SAHMREALTIME) unavailable")
	}

	var coincidentScore *float64
	recessionSeries, err := b.fred.Series(ctx, "RECPROUSM156N", 5000)
	if err == nil && len(recessionSeries) > 0 {
		tail := TailSinceYears(recessionSeries, 20)
		if len(tail) > 0 {
			_, now := lastValues(tail)
			score := gauge.Clamp(now, 0, 100)
			coincidentScore = &score
		}
	}
	if coincidentScore == nil {
		warnings = append(warnings, "Coincident(RECPROUSM156N) unavailable")
	}

	sahmConfirms := sahmScore != nil && *sahmScore >= 20
	coincidentConfirms := coincidentScore != nil && *coincidentScore >= 15
	effectiveCurve := curveScore
	if curveScore != nil && !sahmConfirms && !coincidentConfirms && *curveScore > 35.0 {
		capped := 35.0
		effectiveCurve = &capped
	}

	score, ok := weightedScore([]component{
		{name: "curve", score: effectiveCurve, weight: 0.50},
		{name: "sahm", score: sahmScore, weight: 0.30},
		{name: "coincident", score: coincidentScore, weight: 0.20},
	})
	if !ok {
		return nil, fmt.Errorf("recession dial unavailable, all components missing")
	}

	tooltip := "Composite recession risk dial (0-100). " +
		"Blend: inverted curve stress (T10Y3M), Sahm Rule realtime, and smoothed recession probability. " +
		"Curve is capped when labour/coincident confirmation is low."
	if len(warnings) > 0 {
		tooltip += " Warnings: " + strings.Join(warnings, " | ")
	}
	return &RecessionDial{
		Score:   gauge.Clamp(score, 0, 100),
		Tooltip: tooltip,
	}, nil
}

// CreditStressDial is the composite 0-100 credit stress score.
type CreditStressDial struct {
	Score   float64
	Tooltip string
}

func (b *Builder) percentileOf(ctx context.Context, seriesID string, years int, warnings *[]string) *float64 {
	series, err := b.fred.Series(ctx, seriesID, 6000)
	if err != nil || len(series) == 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s unavailable", seriesID))
		return nil
	}
	tail := TailSinceYears(series, years)
	if len(tail) == 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s unavailable", seriesID))
		return nil
	}
	values, now := lastValues(tail)
	score := PercentileScore(now, values, false)
	return &score
}

// BuildCreditStressDial blends HY and BBB spreads, the HY-IG
// differential, CPFF funding stress and the STLFSI4/NFCIRISK stress
// indexes, all as 15y percentiles, and adds a small kicker when HY
// spreads are widening top-decile fast over a month.
func (b *Builder) BuildCreditStressDial(ctx context.Context) (*CreditStressDial, error) {
	warnings := []string{}

	hyScore := b.percentileOf(ctx, "BAMLH0A0HYM2", 15, &warnings)
	bbbScore := b.percentileOf(ctx, "BAMLC0A4CBBB", 15, &warnings)
	cpffScore := b.percentileOf(ctx, "CPFF", 15, &warnings)
	stlfsiScore := b.percentileOf(ctx, "STLFSI4", 15, &warnings)
	nfciScore := b.percentileOf(ctx, "NFCIRISK", 15, &warnings)

	var hySeries []Observation
	if raw, err := b.fred.Series(ctx, "BAMLH0A0HYM2", 6000); err == nil {
		hySeries = TailSinceYears(raw, 15)
	}

	var hyIGScore *float64
	if len(hySeries) > 0 {
		if igSeries, err := b.fred.Series(ctx, "BAMLC0A0CM", 6000); err == nil {
			joined := AlignByDate(hySeries, TailSinceYears(igSeries, 15))
			if len(joined) > 0 {
				diffs := make([]float64, 0, len(joined))
				for _, pair := range joined {
					diffs = append(diffs, pair.A-pair.B)
				}
				score := PercentileScore(diffs[len(diffs)-1], diffs, false)
				hyIGScore = &score
			}
		}
	}
	if hyIGScore == nil {
		warnings = append(warnings, "HY-IG diff unavailable")
	}

	score, ok := weightedScore([]component{
		{name: "hy", score: hyScore, weight: 0.30},
		{name: "bbb", score: bbbScore, weight: 0.10},
		{name: "hy-ig", score: hyIGScore, weight: 0.10},
		{name: "cpff", score: cpffScore, weight: 0.20},
		{name: "stlfsi", score: stlfsiScore, weight: 0.15},
		{name: "nfci", score: nfciScore, weight: 0.15},
	})
	if !ok {
		return nil, fmt.Errorf("credit stress dial unavailable, all components missing")
	}

	// momentum kicker: HY OAS widening over roughly one month
	if len(hySeries) > 40 {
		now := hySeries[len(hySeries)-1].Value
		previous := hySeries[len(hySeries)-31].Value
		change := now - previous
		changes := make([]float64, 0, len(hySeries)-31)
		for i := 31; i < len(hySeries); i++ {
			changes = append(changes, hySeries[i].Value-hySeries[i-31].Value)
		}
		if PercentileScore(change, changes, false) >= 90.0 {
			score += 5.0
		}
	}

	tooltip := "Composite credit stress dial (0-100, percentile-based). " +
		"Blend of HY/BBB spreads, HY-IG repricing, CPFF funding stress, STLFSI4 and NFCIRISK. " +
		"Adds a small kicker when HY spreads widen rapidly."
	if len(warnings) > 0 {
		tooltip += " Warnings: " + strings.Join(warnings, " | ")
	}
	return &CreditStressDial{
		Score:   gauge.Clamp(score, 0, 100),
		Tooltip: tooltip,
	}, nil
}
