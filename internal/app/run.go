// Package app orchestrates one optimization run: sniff, analyze, optimize,
// report. It owns no algorithmic content of its own beyond the bearish-drift
// correction wired into BuildPlan.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/analysis"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/cfg"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange/sniffer"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/report"
)

// HistorySource yields daily OHLC bars, oldest first.
type HistorySource interface {
	FetchHistory(ctx context.Context, symbol string, days int) ([]analysis.Bar, error)
}

// IntelSource yields point-in-time market intelligence.
type IntelSource interface {
	Sniff(ctx context.Context, exchangeID, base, quote string) sniffer.Intel
}

// Options are the per-run parameters from the CLI.
type Options struct {
	Ticker    string
	Exchange  string
	Days      int
	Portfolio float64 // <= 0 means "compute the minimum required capital"
	Neutral   bool
}

// App wires the collaborators around the optimizer core.
type App struct {
	settings cfg.Settings
	history  HistorySource
	intel    IntelSource
	fees     FeeResolver
	out      io.Writer
}

func New(settings cfg.Settings, history HistorySource, intel IntelSource, fees FeeResolver, out io.Writer) *App {
	return &App{
		settings: settings,
		history:  history,
		intel:    intel,
		fees:     fees,
		out:      out,
	}
}

// Run executes the full pipeline. Any failure is returned after a single
// structured log line; no partial report is written on error paths past the
// intel header.
func (a *App) Run(ctx context.Context, opts Options) error {
	if opts.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if opts.Days <= 0 {
		return fmt.Errorf("horizon must be positive, got %d days", opts.Days)
	}

	exchangeID, corrected := sniffer.Resolve(opts.Exchange)
	if corrected {
		log.Warn().Str("from", opts.Exchange).Str("to", exchangeID).
			Msg("exchange name not recognized, auto-corrected")
	}

	base := exchange.BaseAsset(opts.Ticker)
	symbol := exchange.NormalizeSymbol(opts.Ticker, a.settings.QuoteAsset)
	log.Info().Str("symbol", symbol).Str("exchange", exchangeID).Int("days", opts.Days).
		Msg("initializing closed loop analysis")

	intel := a.intel.Sniff(ctx, exchangeID, base, a.settings.QuoteAsset)

	// Fees are a hard prerequisite for the grid-step math; optimization
	// never proceeds while they are unknown.
	if !intel.FeesKnown() {
		maker, taker, err := a.fees.ResolveFees(exchangeID)
		if err != nil {
			return fmt.Errorf("fee resolution failed: %w", err)
		}
		intel.MakerFee, intel.TakerFee = &maker, &taker
	}

	bars, err := a.history.FetchHistory(ctx, symbol, a.settings.HistoryDays)
	if err != nil {
		return fmt.Errorf("history fetch for %s failed: %w", symbol, err)
	}

	metrics, err := analysis.Estimate(bars)
	if err != nil {
		return fmt.Errorf("volatility estimation for %s failed: %w", symbol, err)
	}

	if opts.Neutral {
		log.Info().Msg("neutral mode active, ignoring historical drift")
		metrics = metrics.WithNeutralDrift()
	}

	report.WriteIntel(a.out, intel, metrics)

	// Prefer the live sniffed price; fall back to the last historical close.
	currentPrice := metrics.CurrentPrice
	if intel.LastPrice > 0 {
		currentPrice = intel.LastPrice
	}

	plan, err := BuildPlan(metrics, intel.Maker(), currentPrice, opts.Days, opts.Portfolio, a.settings)
	if err != nil {
		return fmt.Errorf("optimization for %s failed: %w", symbol, err)
	}
	if plan.DriftNeutralized {
		log.Warn().Float64("firstUpper", plan.FirstBounds.Upper).Float64("price", currentPrice).
			Msg("bearish drift detected, grid re-centered with neutral drift")
	}

	report.WriteStrategy(a.out, report.Summary{
		Ticker:           base,
		Exchange:         exchangeID,
		Days:             opts.Days,
		Bounds:           plan.Bounds,
		StopLoss:         plan.StopLoss,
		GridStep:         plan.GridStep,
		GridQuantity:     plan.GridQuantity,
		Allocation:       plan.Allocation,
		Portfolio:        plan.Portfolio,
		MinRecommended:   plan.MinRecommended,
		DriftNeutralized: plan.DriftNeutralized,
	})
	return nil
}
