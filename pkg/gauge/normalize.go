package gauge

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dialboard/server/pkg/gauge/aggregates"
)

const placeholder = "—"

func Clamp(value float64, lo float64, hi float64) float64 {
	if math.IsNaN(value) {
		return (lo + hi) / 2
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func parseStatus(raw string) aggregates.Status {
	switch aggregates.Status(strings.TrimSpace(raw)) {
	case aggregates.StatusGood:
		return aggregates.StatusGood
	case aggregates.StatusWarn:
		return aggregates.StatusWarn
	case aggregates.StatusDelayed:
		return aggregates.StatusDelayed
	default:
		// unknown freshness is treated as the stalest state
		return aggregates.StatusDelayed
	}
}

// toNumber coerces a loosely typed JSON value into a float64. Malformed
// values count as absent.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Normalize converts one raw snapshot card into a canonical gauge. The
// second return value is false when the record carries no usable
// identity, in which case it is dropped from the batch.
func Normalize(raw aggregates.RawRecord) (aggregates.Gauge, bool) {
	key := strings.TrimSpace(raw.Key)
	if key == "" {
		key = strings.TrimSpace(raw.ID)
	}
	if key == "" {
		return aggregates.Gauge{}, false
	}

	result := aggregates.Gauge{
		Key:         key,
		Title:       raw.Title,
		Status:      parseStatus(raw.Status),
		Tooltip:     raw.Tooltip,
		UpdatedText: raw.UpdatedText,
	}
	if raw.Title == "" {
		result.Title = key
	}
	if raw.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.UpdatedAt); err == nil {
			utc := t.UTC()
			result.UpdatedAt = &utc
		}
	}

	min, hasMin := toNumber(raw.Min)
	if !hasMin {
		min = 0
	}
	max, hasMax := toNumber(raw.Max)
	if !hasMax {
		max = 100
	}
	value, hasValue := toNumber(raw.Value)
	pct, hasPct := toNumber(raw.Pct)

	if hasPct && raw.ValueText != "" {
		// direct path: the source already did the work
		result.Pct = Clamp(pct, 0, 100)
		result.ValueText = raw.ValueText
	} else {
		if hasValue && max != min {
			result.Pct = Clamp((value-min)/(max-min)*100, 0, 100)
		} else {
			// unknown or degenerate range, assume neutral
			result.Pct = 50
		}
		if hasValue {
			result.ValueText = formatNumber(value) + raw.Unit
		} else if raw.ValueText != "" {
			result.ValueText = raw.ValueText
		} else {
			result.ValueText = placeholder
		}
	}

	result.MinLabel = raw.MinLabel
	if result.MinLabel == "" {
		result.MinLabel = formatNumber(min)
	}
	result.MaxLabel = raw.MaxLabel
	if result.MaxLabel == "" {
		result.MaxLabel = formatNumber(max)
	}
	result.MidLabel = raw.MidLabel

	return result, true
}

// NormalizeBatch keeps input order and silently drops rejected records.
func NormalizeBatch(raws []aggregates.RawRecord) []aggregates.Gauge {
	result := make([]aggregates.Gauge, 0, len(raws))
	seen := make(map[string]bool)
	for i := range raws {
		gauge, ok := Normalize(raws[i])
		if !ok {
			continue
		}
		if seen[gauge.Key] {
			continue
		}
		seen[gauge.Key] = true
		result = append(result, gauge)
	}
	return result
}
