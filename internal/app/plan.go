package app

import (
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/analysis"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/cfg"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/optimizer"
)

// Plan is the fully derived strategy for one run. FirstBounds and
// BoundsPasses keep the bearish-drift correction observable: when the first
// GBM pass projects the whole grid below the current price, the historical
// drift is treated as non-actionable and the bounds are recomputed exactly
// once with neutral drift.
type Plan struct {
	CurrentPrice     float64
	FirstBounds      optimizer.Bounds
	Bounds           optimizer.Bounds
	BoundsPasses     int
	DriftNeutralized bool
	StopLoss         float64
	GridStep         float64
	GridQuantity     int
	SafeLeverage     float64
	Portfolio        float64
	MinRecommended   bool
	Allocation       optimizer.Allocation
}

// BuildPlan runs the optimization pipeline on already-acquired inputs.
// portfolio <= 0 switches to minimum-required-capital mode, where the
// bankroll is sized so every grid line can carry one minimum order.
func BuildPlan(m analysis.Metrics, makerFee, currentPrice float64, days int, portfolio float64, s cfg.Settings) (Plan, error) {
	plan := Plan{CurrentPrice: currentPrice}

	bounds, err := optimizer.CalculateBounds(currentPrice, m.SigmaDaily, m.MuDaily, days, s.ConfidenceZ)
	if err != nil {
		return Plan{}, err
	}
	plan.FirstBounds = bounds
	plan.BoundsPasses = 1

	// Single-pass correction, never a loop: with mu forced to 0 the upper
	// bound is price*exp(-0.5*sigma^2*t + z*sigma*sqrt(t)), which sits at or
	// above the current price for any reasonable z.
	if bounds.Upper < currentPrice {
		m = m.WithNeutralDrift()
		bounds, err = optimizer.CalculateBounds(currentPrice, m.SigmaDaily, m.MuDaily, days, s.ConfidenceZ)
		if err != nil {
			return Plan{}, err
		}
		plan.BoundsPasses = 2
		plan.DriftNeutralized = true
	}
	plan.Bounds = bounds

	plan.StopLoss = bounds.Lower - s.ATRStopMultiple*m.ATR
	plan.GridStep = optimizer.CalculateGridStep(m.SigmaDaily, makerFee, s.MinProfitShare)
	plan.GridQuantity = optimizer.CalculateGridQuantity(bounds.Lower, bounds.Upper, plan.GridStep)

	targetLiq := plan.StopLoss * s.SafetyBuffer
	plan.SafeLeverage = 1.0
	if dist := currentPrice - targetLiq; dist > 0 {
		plan.SafeLeverage = currentPrice / dist
	}

	plan.Portfolio = portfolio
	if portfolio <= 0 {
		plan.Portfolio = optimizer.CalculateMinCapital(
			bounds.Lower, bounds.Upper, plan.GridStep, plan.SafeLeverage, s.MinOrderSize)
		plan.MinRecommended = true
	}

	alloc, err := optimizer.ClosedLoopAllocation(
		plan.Portfolio, currentPrice, plan.StopLoss, bounds.Upper,
		s.WinRate, s.KellyFraction, s.SafetyBuffer)
	if err != nil {
		return Plan{}, err
	}
	plan.Allocation = alloc

	return plan, nil
}
