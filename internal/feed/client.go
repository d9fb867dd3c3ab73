package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dialboard/server/pkg/gauge/aggregates"
	"github.com/google/uuid"
)

// SnapshotDocument is the wire shape of the snapshot feed.
type SnapshotDocument struct {
	AsOf  string                 `json:"asOf"`
	Cards []aggregates.RawRecord `json:"cards"`
}

type Client struct {
	logger      *slog.Logger
	client      *http.Client
	snapshotURL string
	historyURL  string
}

func NewClient(logger *slog.Logger, config Configuration) (*Client, error) {
	timeout := 10 * time.Second
	if config.Timeout != "" {
		parsed, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid feed timeout: %w", err)
		}
		timeout = parsed
	}
	return &Client{
		logger:      logger,
		snapshotURL: config.SnapshotURL,
		historyURL:  config.HistoryURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// cacheBust appends a unique query token so intermediaries never serve
// a stale copy of the feed.
func cacheBust(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	query.Set("t", uuid.NewString())
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cacheBust(rawURL), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("fail to create feed request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fail to fetch feed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("fail to read feed body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// FetchSnapshot retrieves and parses the snapshot feed. The document is
// parsed all-or-nothing: invalid JSON aborts the whole cycle.
func (c *Client) FetchSnapshot(ctx context.Context) (*SnapshotDocument, error) {
	body, status, err := c.get(ctx, c.snapshotURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("snapshot feed returned status %d", status)
	}
	var document SnapshotDocument
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("fail to parse snapshot feed: %w", err)
	}
	return &document, nil
}

// AsOfTime parses the document-level timestamp, nil if absent or
// unparseable.
func (d *SnapshotDocument) AsOfTime() *time.Time {
	if d.AsOf == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, d.AsOf)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

// FetchHistory retrieves the raw history document. The feed is
// optional: a 404 returns no data and no error.
func (c *Client) FetchHistory(ctx context.Context) ([]byte, error) {
	body, status, err := c.get(ctx, c.historyURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.logger.Debug("history feed not found, history stays empty")
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("history feed returned status %d", status)
	}
	return body, nil
}
