package indicator

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"
)

const defaultStooqURL = "https://stooq.com"

// PriceBar is one daily close from Stooq.
type PriceBar struct {
	Date  string
	Close float64
}

type StooqClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewStooqClient(logger *slog.Logger, baseURL string, timeout time.Duration) *StooqClient {
	if baseURL == "" {
		baseURL = defaultStooqURL
	}
	return &StooqClient{
		logger:  logger,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// DailyCloses fetches the daily close series for a symbol, sorted
// ascending by date. Rows that do not parse are skipped, Stooq
// sometimes answers "No data" instead of CSV.
func (c *StooqClient) DailyCloses(ctx context.Context, symbol string) ([]PriceBar, error) {
	requestURL := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fail to create Stooq request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fail to fetch Stooq symbol %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Stooq symbol %s returned status %d", symbol, resp.StatusCode)
	}
	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("fail to read Stooq CSV header: %w", err)
	}
	dateIndex := -1
	closeIndex := -1
	for i, name := range header {
		switch name {
		case "Date":
			dateIndex = i
		case "Close":
			closeIndex = i
		}
	}
	if dateIndex < 0 || closeIndex < 0 {
		return nil, fmt.Errorf("unexpected Stooq CSV header for symbol %s", symbol)
	}

	bars := []PriceBar{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) <= dateIndex || len(row) <= closeIndex {
			continue
		}
		close, err := strconv.ParseFloat(row[closeIndex], 64)
		if err != nil {
			continue
		}
		bars = append(bars, PriceBar{
			Date:  row[dateIndex],
			Close: close,
		})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date < bars[j].Date
	})
	return bars, nil
}

// Drawdown computes the percent move from the highest close in the last
// lookback bars to the latest close, 0 when at highs, negative
// otherwise. The second return value is false when the series is too
// short to be meaningful.
func Drawdown(bars []PriceBar, lookback int) (float64, bool) {
	minimum := lookback
	if minimum < 5 {
		minimum = 5
	}
	if len(bars) < minimum {
		return 0, false
	}
	window := bars[len(bars)-lookback:]
	peak := window[0].Close
	for _, bar := range window[1:] {
		if bar.Close > peak {
			peak = bar.Close
		}
	}
	if peak <= 0 {
		return 0, false
	}
	last := window[len(window)-1].Close
	return (last/peak - 1.0) * 100.0, true
}
