package indicator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

const defaultFREDURL = "https://api.stlouisfed.org"

// Observation is one dated value of a FRED series.
type Observation struct {
	Date  string
	Value float64
}

type FREDClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewFREDClient(logger *slog.Logger, baseURL string, apiKey string, timeout time.Duration) *FREDClient {
	if baseURL == "" {
		baseURL = defaultFREDURL
	}
	return &FREDClient{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredDocument struct {
	Observations []fredObservation `json:"observations"`
}

func (c *FREDClient) fetch(ctx context.Context, seriesID string, sortOrder string, limit int) ([]fredObservation, error) {
	query := url.Values{}
	query.Set("series_id", seriesID)
	query.Set("file_type", "json")
	query.Set("sort_order", sortOrder)
	query.Set("limit", strconv.Itoa(limit))
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	requestURL := fmt.Sprintf("%s/fred/series/observations?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fail to create FRED request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fail to fetch FRED series %s: %w", seriesID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FRED series %s returned status %d", seriesID, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fail to read FRED response: %w", err)
	}
	var document fredDocument
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("fail to parse FRED response for %s: %w", seriesID, err)
	}
	return document.Observations, nil
}

// Series returns up to limit observations sorted ascending by date.
// Missing observations (value ".") are skipped.
func (c *FREDClient) Series(ctx context.Context, seriesID string, limit int) ([]Observation, error) {
	raw, err := c.fetch(ctx, seriesID, "asc", limit)
	if err != nil {
		return nil, err
	}
	result := make([]Observation, 0, len(raw))
	for _, observation := range raw {
		if observation.Value == "." || observation.Value == "" {
			continue
		}
		value, err := strconv.ParseFloat(observation.Value, 64)
		if err != nil {
			continue
		}
		result = append(result, Observation{
			Date:  observation.Date,
			Value: value,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

// Latest returns the most recent valid observation. The feed sometimes
// publishes "." for the newest dates so several are requested.
func (c *FREDClient) Latest(ctx context.Context, seriesID string) (*Observation, error) {
	raw, err := c.fetch(ctx, seriesID, "desc", 10)
	if err != nil {
		return nil, err
	}
	for _, observation := range raw {
		if observation.Value == "." || observation.Value == "" {
			continue
		}
		value, err := strconv.ParseFloat(observation.Value, 64)
		if err != nil {
			continue
		}
		return &Observation{
			Date:  observation.Date,
			Value: value,
		}, nil
	}
	return nil, fmt.Errorf("FRED series %s has no valid observation", seriesID)
}
