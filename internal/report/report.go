// Package report renders the optimization result as a plain-text summary.
// It is a pure view layer: every number it prints arrives as input.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/analysis"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange/sniffer"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/optimizer"
)

const reportWidth = 44

// Summary carries everything the strategy report displays.
type Summary struct {
	Ticker           string
	Exchange         string
	Days             int
	Bounds           optimizer.Bounds
	StopLoss         float64
	GridStep         float64
	GridQuantity     int
	Allocation       optimizer.Allocation
	Portfolio        float64
	MinRecommended   bool
	DriftNeutralized bool
}

// WriteIntel prints the data-gathering status line pair.
func WriteIntel(w io.Writer, intel sniffer.Intel, m analysis.Metrics) {
	fmt.Fprintf(w, "SNIFFER:  maker fee %.4f | spread %.4f%% | funding(8h) %.4f%%\n",
		intel.Maker(), intel.SpreadPct*100, intel.FundingRate8h*100)
	fmt.Fprintf(w, "ANALYZER: volatility %.2f%% | drift %.3f%% | ATR %.4f\n",
		m.SigmaDaily*100, m.MuDaily*100, m.ATR)
}

// WriteStrategy prints the formatted strategy report.
func WriteStrategy(w io.Writer, s Summary) {
	line := strings.Repeat("=", reportWidth)
	thin := strings.Repeat("-", reportWidth)

	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintf(w, "   STRATEGY REPORT: %s (%d Days)\n", s.Ticker, s.Days)
	fmt.Fprintf(w, "%s\n", line)

	if s.Allocation.Action != optimizer.ActionTrade {
		fmt.Fprintf(w, "STOP: %s\n", s.Allocation.Reason)
		return
	}

	fmt.Fprintf(w, "CURRENT PRICE:     $%.2f\n", s.Allocation.EntryPrice)
	fmt.Fprintf(w, "%s\n", thin)

	if s.DriftNeutralized {
		fmt.Fprintf(w, "NOTE: bearish historical drift detected;\n")
		fmt.Fprintf(w, "      grid re-centered with neutral drift.\n")
		fmt.Fprintf(w, "%s\n", thin)
	}

	fmt.Fprintf(w, "1. GRID BOUNDS:    $%.2f to $%.2f\n", s.Bounds.Lower, s.Bounds.Upper)
	fmt.Fprintf(w, "2. STOP LOSS:      $%.2f (invalidation)\n", s.StopLoss)
	fmt.Fprintf(w, "3. GRID QUANTITY:  %d lines (step ~%.3f%%)\n", s.GridQuantity, s.GridStep*100)
	fmt.Fprintf(w, "%s\n", thin)
	fmt.Fprintf(w, "4. LIQUIDATION:    $%.2f (safety floor)\n", s.Allocation.TargetLiqPrice)
	fmt.Fprintf(w, "5. EFF. LEVERAGE:  %.2fx\n", s.Allocation.MaxSafeLeverage)
	fmt.Fprintf(w, "%s\n", thin)

	if s.MinRecommended {
		fmt.Fprintf(w, ">>> EXECUTION (recommended minimum) <<<\n")
	} else {
		fmt.Fprintf(w, ">>> EXECUTION (for portfolio $%.0f) <<<\n", s.Portfolio)
	}
	fmt.Fprintf(w, "TRANSFER TO BOT:   $%.2f\n", s.Allocation.RequiredMargin)
	fmt.Fprintf(w, "TOTAL EXPOSURE:    $%.2f\n", s.Allocation.TotalExposure)
	fmt.Fprintf(w, "KELLY RISK:        %.2f%%\n", s.Allocation.KellyRiskPct*100)
	fmt.Fprintf(w, "%s\n", line)
}
