package indicator

import (
	"sort"
	"time"

	"github.com/dialboard/server/pkg/gauge"
	"github.com/dialboard/server/pkg/gauge/aggregates"
)

// StatusFromBand maps a value onto the three statuses using two
// thresholds. With higherIsWorse the value is GOOD up to goodMax, WARN
// up to warnMax and DELAYED beyond; the lower-is-worse variant flips
// the comparisons.
func StatusFromBand(value float64, goodMax float64, warnMax float64, higherIsWorse bool) aggregates.Status {
	if higherIsWorse {
		if value <= goodMax {
			return aggregates.StatusGood
		}
		if value <= warnMax {
			return aggregates.StatusWarn
		}
		return aggregates.StatusDelayed
	}
	if value >= goodMax {
		return aggregates.StatusGood
	}
	if value >= warnMax {
		return aggregates.StatusWarn
	}
	return aggregates.StatusDelayed
}

// PercentileScore maps current to its 0-100 percentile within history.
// invert flips the scale for series where low values are the risky
// ones. An empty history scores the neutral 50.
func PercentileScore(current float64, history []float64, invert bool) float64 {
	if len(history) == 0 {
		return 50.0
	}
	values := make([]float64, len(history))
	copy(values, history)
	sort.Float64s(values)
	// fraction of values <= current, equal values included
	count := sort.Search(len(values), func(i int) bool { return values[i] > current })
	rank := float64(count) / float64(len(values))
	if invert {
		rank = 1.0 - rank
	}
	return gauge.Clamp(rank*100.0, 0, 100)
}

// SmoothWithPrevious applies one EWMA step against yesterday's value,
// keeping the dial calm without becoming too laggy.
func SmoothWithPrevious(current float64, previous *float64, alpha float64) float64 {
	if previous == nil {
		return current
	}
	return alpha*current + (1.0-alpha)*(*previous)
}

// TailSinceYears keeps the observations within the trailing window,
// anchored on the newest observation's date.
func TailSinceYears(series []Observation, years int) []Observation {
	if len(series) == 0 {
		return series
	}
	last, err := time.Parse("2006-01-02", series[len(series)-1].Date)
	if err != nil {
		return series
	}
	cutoff := last.AddDate(-years, 0, 0)
	result := []Observation{}
	for _, observation := range series {
		date, err := time.Parse("2006-01-02", observation.Date)
		if err != nil {
			continue
		}
		if !date.Before(cutoff) {
			result = append(result, observation)
		}
	}
	return result
}

// AlignedPair is one date present in both joined series.
type AlignedPair struct {
	Date string
	A    float64
	B    float64
}

// AlignByDate inner-joins two observation series on date, keeping the
// order of the first.
func AlignByDate(a []Observation, b []Observation) []AlignedPair {
	lookup := make(map[string]float64, len(b))
	for _, observation := range b {
		lookup[observation.Date] = observation.Value
	}
	result := []AlignedPair{}
	for _, observation := range a {
		value, ok := lookup[observation.Date]
		if !ok {
			continue
		}
		result = append(result, AlignedPair{
			Date: observation.Date,
			A:    observation.Value,
			B:    value,
		})
	}
	return result
}
