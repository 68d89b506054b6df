package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/analysis"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange/sniffer"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/optimizer"
)

func tradeSummary() Summary {
	return Summary{
		Ticker:       "BTC",
		Exchange:     "binance",
		Days:         7,
		Bounds:       optimizer.Bounds{Lower: 45000, Upper: 55000},
		StopLoss:     43500,
		GridStep:     0.005,
		GridQuantity: 40,
		Allocation: optimizer.Allocation{
			Action:          optimizer.ActionTrade,
			EntryPrice:      50000,
			StopLoss:        43500,
			TargetLiqPrice:  39150,
			MaxSafeLeverage: 4.61,
			TotalExposure:   2500,
			RequiredMargin:  542.3,
			KellyRiskPct:    0.065,
		},
		Portfolio: 10000,
	}
}

func TestWriteIntel(t *testing.T) {
	var buf bytes.Buffer
	fee := 0.001
	intel := sniffer.Intel{MakerFee: &fee, SpreadPct: 0.0004, FundingRate8h: 0.0001}
	m := analysis.Metrics{SigmaDaily: 0.032, MuDaily: -0.0012, ATR: 1250.5}

	WriteIntel(&buf, intel, m)
	out := buf.String()

	assert.Contains(t, out, "maker fee 0.0010")
	assert.Contains(t, out, "volatility 3.20%")
	assert.Contains(t, out, "drift -0.120%")
}

func TestWriteStrategy_Trade(t *testing.T) {
	var buf bytes.Buffer
	WriteStrategy(&buf, tradeSummary())
	out := buf.String()

	assert.Contains(t, out, "STRATEGY REPORT: BTC (7 Days)")
	assert.Contains(t, out, "CURRENT PRICE:     $50000.00")
	assert.Contains(t, out, "GRID BOUNDS:    $45000.00 to $55000.00")
	assert.Contains(t, out, "STOP LOSS:      $43500.00")
	assert.Contains(t, out, "40 lines (step ~0.500%)")
	assert.Contains(t, out, "LIQUIDATION:    $39150.00")
	assert.Contains(t, out, "for portfolio $10000")
	assert.Contains(t, out, "TRANSFER TO BOT:   $542.30")
	assert.NotContains(t, out, "bearish historical drift")
}

func TestWriteStrategy_MinimumRecommendedHeader(t *testing.T) {
	var buf bytes.Buffer
	s := tradeSummary()
	s.MinRecommended = true

	WriteStrategy(&buf, s)
	assert.Contains(t, buf.String(), "recommended minimum")
}

func TestWriteStrategy_DriftNote(t *testing.T) {
	var buf bytes.Buffer
	s := tradeSummary()
	s.DriftNeutralized = true

	WriteStrategy(&buf, s)
	assert.Contains(t, buf.String(), "grid re-centered with neutral drift")
}

func TestWriteStrategy_DoNotTrade(t *testing.T) {
	var buf bytes.Buffer
	s := tradeSummary()
	s.Allocation = optimizer.Allocation{
		Action: optimizer.ActionDoNotTrade,
		Reason: "Negative Edge/Kelly",
	}

	WriteStrategy(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "STOP: Negative Edge/Kelly")
	// The short-circuit must not leak zeroed trade numbers.
	assert.NotContains(t, out, "GRID BOUNDS")
	assert.NotContains(t, out, "TRANSFER TO BOT")
}
