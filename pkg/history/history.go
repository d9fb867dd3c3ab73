package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/dialboard/server/pkg/history/aggregates"
)

// ParseLines decodes a newline-delimited JSON document. Malformed lines
// are skipped individually, one bad line never invalidates the rest of
// the file. Lines without a usable week label are skipped too.
func ParseLines(data []byte) []aggregates.Line {
	result := []aggregates.Line{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			continue
		}
		week, ok := fields["week"].(string)
		if !ok || strings.TrimSpace(week) == "" {
			continue
		}
		line := aggregates.Line{
			Week:   week,
			Values: make(map[string]float64),
		}
		for name, value := range fields {
			if name == "week" {
				continue
			}
			number, ok := value.(float64)
			if !ok || math.IsNaN(number) || math.IsInf(number, 0) {
				continue
			}
			line.Values[name] = number
		}
		result = append(result, line)
	}
	return result
}

// Aggregate pivots per-week lines into per-key chronological series.
// The sort is stable so same-labeled points keep their file order.
func Aggregate(lines []aggregates.Line) map[string]aggregates.Series {
	result := make(map[string]aggregates.Series)
	for _, line := range lines {
		for key, value := range line.Values {
			result[key] = append(result[key], aggregates.Point{
				Week:  line.Week,
				Value: value,
			})
		}
	}
	for key := range result {
		series := result[key]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Week < series[j].Week
		})
	}
	return result
}
