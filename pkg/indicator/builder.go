package indicator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/dialboard/server/internal/feed"
	"github.com/dialboard/server/pkg/gauge/aggregates"
)

// Configuration for the snapshot builder.
type Configuration struct {
	Output     string `yaml:"output" validate:"required"`
	History    string `yaml:"history"`
	FREDAPIKey string `yaml:"fred-api-key"`
	FREDURL    string `yaml:"fred-url"`
	StooqURL   string `yaml:"stooq-url"`
	Timeout    string `yaml:"timeout"`
}

// Builder reconstructs the snapshot feed from FRED and Stooq market
// data, the same document the server later polls.
type Builder struct {
	logger *slog.Logger
	config Configuration
	fred   *FREDClient
	stooq  *StooqClient
}

func NewBuilder(logger *slog.Logger, config Configuration) (*Builder, error) {
	timeout := 20 * time.Second
	if config.Timeout != "" {
		parsed, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid builder timeout: %w", err)
		}
		timeout = parsed
	}
	if config.FREDAPIKey == "" {
		config.FREDAPIKey = os.Getenv("FRED_API_KEY")
	}
	return &Builder{
		logger: logger,
		config: config,
		fred:   NewFREDClient(logger, config.FREDURL, config.FREDAPIKey, timeout),
		stooq:  NewStooqClient(logger, config.StooqURL, timeout),
	}, nil
}

// loadPreviousValue reads the numeric value of a card in yesterday's
// output, used for EWMA smoothing of the composite dials. Any failure
// just disables smoothing.
func (b *Builder) loadPreviousValue(cardID string) *float64 {
	data, err := os.ReadFile(b.config.Output)
	if err != nil {
		return nil
	}
	var document feed.SnapshotDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil
	}
	for _, card := range document.Cards {
		if card.ID != cardID {
			continue
		}
		if value, ok := card.Value.(float64); ok {
			return &value
		}
		return nil
	}
	return nil
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

func fallbackCard(id string, title string, minLabel string, midLabel string, maxLabel string, tooltip string, asOf string) aggregates.RawRecord {
	return aggregates.RawRecord{
		ID:        id,
		Title:     title,
		Status:    string(aggregates.StatusDelayed),
		ValueText: "—",
		Pct:       50.0,
		MinLabel:  minLabel,
		MidLabel:  midLabel,
		MaxLabel:  maxLabel,
		Tooltip:   tooltip,
		UpdatedAt: asOf,
	}
}

// BuildSnapshot assembles the full card list. Every dial degrades to a
// DELAYED placeholder card on failure, the document itself is always
// produced.
func (b *Builder) BuildSnapshot(ctx context.Context) *feed.SnapshotDocument {
	asOf := time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
	cards := []aggregates.RawRecord{}

	// volatility regime proxy
	if vix, err := b.fred.Latest(ctx, "VIXCLS"); err == nil {
		cards = append(cards, aggregates.RawRecord{
			ID:        "vix",
			Title:     "VOLATILITY (VIX)",
			Status:    string(StatusFromBand(vix.Value, 18, 28, true)),
			Value:     round(vix.Value, 1),
			Min:       10.0,
			Max:       40.0,
			MinLabel:  "10",
			MidLabel:  "20",
			MaxLabel:  "40",
			Tooltip:   "CBOE VIX close from FRED (VIXCLS). Higher = riskier.",
			UpdatedAt: asOf,
		})
	} else {
		b.logger.Warn(fmt.Sprintf("vix dial failed: %s", err.Error()))
		cards = append(cards, fallbackCard("vix", "VOLATILITY (VIX)", "10", "20", "40",
			"Could not fetch FRED series VIXCLS. Check the FRED API key.", asOf))
	}

	// high yield OAS, percent converted to basis points
	if hy, err := b.fred.Latest(ctx, "BAMLH0A0HYM2"); err == nil {
		bp := hy.Value * 100.0
		cards = append(cards, aggregates.RawRecord{
			ID:        "hy_oas",
			Title:     "HIGH YIELD SPREAD (OAS)",
			Status:    string(StatusFromBand(bp, 350, 500, true)),
			Value:     round(bp, 0),
			Unit:      " bp",
			Min:       250.0,
			Max:       800.0,
			MinLabel:  "250",
			MidLabel:  "500",
			MaxLabel:  "800",
			Tooltip:   "HY OAS from FRED (ICE BofA). Higher = tighter financial conditions / more stress.",
			UpdatedAt: asOf,
		})
	} else {
		b.logger.Warn(fmt.Sprintf("hy_oas dial failed: %s", err.Error()))
		cards = append(cards, fallbackCard("hy_oas", "HIGH YIELD SPREAD (OAS)", "250", "500", "800",
			"Could not fetch FRED series BAMLH0A0HYM2.", asOf))
	}

	// investment grade OAS
	if ig, err := b.fred.Latest(ctx, "BAMLC0A0CM"); err == nil {
		bp := ig.Value * 100.0
		cards = append(cards, aggregates.RawRecord{
			ID:        "ig_oas",
			Title:     "INVESTMENT GRADE SPREAD (OAS)",
			Status:    string(StatusFromBand(bp, 130, 200, true)),
			Value:     round(bp, 0),
			Unit:      " bp",
			Min:       80.0,
			Max:       300.0,
			MinLabel:  "80",
			MidLabel:  "180",
			MaxLabel:  "300",
			Tooltip:   "IG OAS from FRED (ICE BofA). Higher = tighter conditions / credit stress.",
			UpdatedAt: asOf,
		})
	} else {
		b.logger.Warn(fmt.Sprintf("ig_oas dial failed: %s", err.Error()))
		cards = append(cards, fallbackCard("ig_oas", "INVESTMENT GRADE SPREAD (OAS)", "80", "180", "300",
			"Could not fetch FRED series BAMLC0A0CM.", asOf))
	}

	// yield curve slope, inversion is the risk signal so lower is worse
	if curve, err := b.fred.Latest(ctx, "T10Y2Y"); err == nil {
		bp := curve.Value * 100.0
		cards = append(cards, aggregates.RawRecord{
			ID:        "curve_10y2y",
			Title:     "YIELD CURVE (10Y–2Y)",
			Status:    string(StatusFromBand(bp, 0, -50, false)),
			Value:     round(bp, 0),
			Unit:      " bp",
			Min:       -200.0,
			Max:       200.0,
			MinLabel:  "-200",
			MidLabel:  "0",
			MaxLabel:  "200",
			Tooltip:   "10Y–2Y spread from FRED. More negative (inversion) = growth risk signal.",
			UpdatedAt: asOf,
		})
	} else {
		b.logger.Warn(fmt.Sprintf("curve dial failed: %s", err.Error()))
		cards = append(cards, fallbackCard("curve_10y2y", "YIELD CURVE (10Y–2Y)", "-200", "0", "200",
			"Could not fetch FRED series T10Y2Y.", asOf))
	}

	cards = append(cards, b.drawdownCard(ctx, drawdownDial{
		id:       "spy_dd_1m",
		title:    "EQUITY DRAWDOWN (SPY, 1M)",
		symbol:   "spy.us",
		lookback: 21,
		warnAt:   -6,
		badAt:    -10,
		min:      -20,
		minLabel: "-20%",
		midLabel: "-10%",
		maxLabel: "0%",
		tooltip:  "SPY drawdown from 1M peak (21 trading days). More negative = risk-off.",
	}, asOf))

	cards = append(cards, b.drawdownCard(ctx, drawdownDial{
		id:       "kre_dd_3m",
		title:    "REGIONAL BANKS DRAWDOWN (KRE, 3M)",
		symbol:   "kre.us",
		lookback: 63,
		warnAt:   -8,
		badAt:    -15,
		min:      -30,
		minLabel: "-30%",
		midLabel: "-15%",
		maxLabel: "0%",
		tooltip:  "KRE drawdown from 3M peak (63 trading days). More negative = bank stress proxy.",
	}, asOf))

	// composite recession risk, smoothed against yesterday's value
	if dial, err := b.BuildRecessionDial(ctx); err == nil {
		smoothed := SmoothWithPrevious(dial.Score, b.loadPreviousValue("recession_risk"), 0.20)
		status := aggregates.StatusGood
		if smoothed >= 35 {
			status = aggregates.StatusWarn
		}
		if smoothed >= 60 {
			status = aggregates.StatusDelayed
		}
		cards = append(cards, aggregates.RawRecord{
			ID:        "recession_risk",
			Title:     "RECESSION RISK",
			Status:    string(status),
			Value:     round(smoothed, 0),
			Min:       0.0,
			Max:       100.0,
			MinLabel:  "Low",
			MidLabel:  "Elevated",
			MaxLabel:  "High",
			Tooltip:   dial.Tooltip,
			UpdatedAt: asOf,
		})
	} else {
		b.logger.Warn(fmt.Sprintf("recession dial failed: %s", err.Error()))
		cards = append(cards, fallbackCard("recession_risk", "RECESSION RISK", "Low", "Elevated", "High",
			fmt.Sprintf("Recession dial build failed: %s", err.Error()), asOf))
	}

	// composite credit stress, smoothed the same way
	if dial, err := b.BuildCreditStressDial(ctx); err == nil {
		smoothed := SmoothWithPrevious(dial.Score, b.loadPreviousValue("credit_stress"), 0.20)
		status := aggregates.StatusGood
		if smoothed >= 40 {
			status = aggregates.StatusWarn
		}
		if smoothed >= 65 {
			status = aggregates.StatusDelayed
		}
		cards = append(cards, aggregates.RawRecord{
			ID:        "credit_stress",
			Title:     "CREDIT STRESS",
			Status:    string(status),
			Value:     round(smoothed, 0),
			Min:       0.0,
			Max:       100.0,
			MinLabel:  "Easy",
			MidLabel:  "Tightening",
			MaxLabel:  "Crisis",
			Tooltip:   dial.Tooltip,
			UpdatedAt: asOf,
		})
	} else {
		b.logger.Warn(fmt.Sprintf("credit stress dial failed: %s", err.Error()))
		cards = append(cards, fallbackCard("credit_stress", "CREDIT STRESS", "Easy", "Tightening", "Crisis",
			fmt.Sprintf("Credit stress dial build failed: %s", err.Error()), asOf))
	}

	return &feed.SnapshotDocument{
		AsOf:  asOf,
		Cards: cards,
	}
}

type drawdownDial struct {
	id       string
	title    string
	symbol   string
	lookback int
	warnAt   float64
	badAt    float64
	min      float64
	minLabel string
	midLabel string
	maxLabel string
	tooltip  string
}

func (b *Builder) drawdownCard(ctx context.Context, dial drawdownDial, asOf string) aggregates.RawRecord {
	bars, err := b.stooq.DailyCloses(ctx, dial.symbol)
	if err != nil {
		b.logger.Warn(fmt.Sprintf("%s dial failed: %s", dial.id, err.Error()))
		return fallbackCard(dial.id, dial.title, dial.minLabel, dial.midLabel, dial.maxLabel,
			fmt.Sprintf("%s fetch failed: %s", dial.symbol, err.Error()), asOf)
	}
	drawdown, ok := Drawdown(bars, dial.lookback)
	if !ok {
		b.logger.Warn(fmt.Sprintf("%s dial failed: not enough data", dial.id))
		return fallbackCard(dial.id, dial.title, dial.minLabel, dial.midLabel, dial.maxLabel,
			fmt.Sprintf("not enough %s data", dial.symbol), asOf)
	}
	status := aggregates.StatusGood
	if drawdown <= dial.warnAt {
		status = aggregates.StatusWarn
	}
	if drawdown <= dial.badAt {
		status = aggregates.StatusDelayed
	}
	return aggregates.RawRecord{
		ID:        dial.id,
		Title:     dial.title,
		Status:    string(status),
		Value:     round(drawdown, 1),
		Unit:      "%",
		Min:       dial.min,
		Max:       0.0,
		MinLabel:  dial.minLabel,
		MidLabel:  dial.midLabel,
		MaxLabel:  dial.maxLabel,
		Tooltip:   dial.tooltip,
		UpdatedAt: asOf,
	}
}

// Run builds the snapshot, writes it to the output path and appends the
// weekly history line when a history path is configured.
func (b *Builder) Run(ctx context.Context) error {
	document := b.BuildSnapshot(ctx)
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("fail to marshal snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(b.config.Output, data, 0644); err != nil {
		return fmt.Errorf("fail to write snapshot: %w", err)
	}
	b.logger.Info(fmt.Sprintf("wrote %s with asOf=%s and %d cards", b.config.Output, document.AsOf, len(document.Cards)))
	if b.config.History != "" {
		if err := b.appendHistoryLine(document); err != nil {
			return err
		}
	}
	return nil
}

// appendHistoryLine records the numeric card values under the current
// ISO week start, the key set matching the card ids so the dashboard
// can attach sparklines.
func (b *Builder) appendHistoryLine(document *feed.SnapshotDocument) error {
	now := time.Now().UTC()
	// monday of the current week
	offset := (int(now.Weekday()) + 6) % 7
	week := now.AddDate(0, 0, -offset).Format("2006-01-02")

	line := map[string]any{"week": week}
	for _, card := range document.Cards {
		if value, ok := card.Value.(float64); ok {
			line[card.ID] = value
		}
	}
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("fail to marshal history line: %w", err)
	}
	file, err := os.OpenFile(b.config.History, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("fail to open history file: %w", err)
	}
	defer file.Close()
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("fail to append history line: %w", err)
	}
	b.logger.Info(fmt.Sprintf("appended history line for week %s", week))
	return nil
}
