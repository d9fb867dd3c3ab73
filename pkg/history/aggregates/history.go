package aggregates

// Point is one weekly observation for an indicator. Week labels are
// zero-padded ISO dates, so string order equals chronological order.
type Point struct {
	Week  string
	Value float64
}

type Series []Point

// Line is one parsed row of the history feed: a week label plus an open
// set of numeric fields keyed by indicator key.
type Line struct {
	Week   string
	Values map[string]float64
}
