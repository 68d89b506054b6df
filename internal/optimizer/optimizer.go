// Package optimizer implements the closed-loop grid math: drift-adjusted
// volatility cone bounds, fee-aware grid spacing, geometric line counts,
// and constrained-Kelly capital allocation.
//
// Every function here is pure and stateless. Hard caller misuse (non-positive
// price or horizon, stop above entry) surfaces as *ValidationError; degenerate
// market configurations (inverted bounds, non-positive Kelly edge) come back
// as sentinel values so the caller's recovery flow keeps running.
package optimizer

import (
	"fmt"
	"math"
)

// Bounds is the projected trading range for the grid.
type Bounds struct {
	Upper float64
	Lower float64
}

// Action tags an Allocation result.
type Action string

const (
	ActionTrade      Action = "TRADE"
	ActionDoNotTrade Action = "DO_NOT_TRADE"
)

// Allocation is the output of ClosedLoopAllocation. When Action is
// ActionDoNotTrade only Reason is meaningful; when Action is ActionTrade the
// invariant TargetLiqPrice < StopLoss < EntryPrice holds.
type Allocation struct {
	Action          Action
	Reason          string
	EntryPrice      float64
	StopLoss        float64
	TargetLiqPrice  float64
	MaxSafeLeverage float64
	TotalExposure   float64
	RequiredMargin  float64
	KellyRiskPct    float64
}

// ValidationError reports out-of-domain scalar inputs to a pure function.
// It is never retried and never produced for legitimate market states.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// CalculateBounds projects the grid range over the horizon by modelling
// log-price as a GBM with Itô-corrected drift:
//
//	range = price * exp((mu - 0.5*sigma^2)*t +/- z*sigma*sqrt(t))
//
// Upper >= Lower for any finite sigma >= 0; they are equal only when sigma
// is exactly zero.
func CalculateBounds(price, sigma, mu float64, days int, confidenceZ float64) (Bounds, error) {
	if days <= 0 {
		return Bounds{}, validationErrorf("days must be positive, got %d", days)
	}
	if price <= 0 {
		return Bounds{}, validationErrorf("price must be positive, got %f", price)
	}

	t := float64(days)
	drift := (mu - 0.5*sigma*sigma) * t
	spread := confidenceZ * sigma * math.Sqrt(t)

	return Bounds{
		Upper: price * math.Exp(drift+spread),
		Lower: price * math.Exp(drift-spread),
	}, nil
}

// CalculateGridStep picks the grid spacing as the larger of two competing
// floors: the round-trip fee must not eat more than (1 - minProfitShare) of
// a captured step, and the step should capture about half a daily sigma.
// The fee floor wins whenever it is larger so the grid can never be tight
// enough for fees to erase the edge.
func CalculateGridStep(sigma, makerFee, minProfitShare float64) float64 {
	feeDragLimit := 1.0 - minProfitShare
	if feeDragLimit <= 0 {
		return 0.01 // degenerate profit share, avoid division by zero
	}

	minFeeStep := (2 * makerFee) / feeDragLimit
	volStep := 0.5 * sigma

	return math.Max(minFeeStep, volStep)
}

// CalculateGridQuantity returns the number of multiplicative steps of size
// (1+step) needed to cover [lower, upper]:
//
//	n = ceil(ln(upper/lower) / ln(1+step))
//
// Degenerate or inverted inputs yield 0, not an error: "no grid possible" is
// a legitimate market state the caller must keep running through.
func CalculateGridQuantity(lower, upper, step float64) int {
	if step <= 0 {
		return 0
	}
	if lower <= 0 || upper <= 0 {
		return 0
	}
	if lower >= upper {
		return 0
	}

	lines := math.Log(upper/lower) / math.Log(1+step)
	return int(math.Ceil(lines))
}

// CalculateMinCapital is the minimum bankroll such that every grid line can
// carry one minimum-size order at the given leverage. Returns 0 when the
// grid itself is degenerate.
func CalculateMinCapital(lower, upper, step, safeLeverage, minOrderSize float64) float64 {
	lines := CalculateGridQuantity(lower, upper, step)
	totalNotional := float64(lines) * minOrderSize
	return totalNotional / safeLeverage
}

// ClosedLoopAllocation sizes the position with a constrained Kelly criterion
// and derives the liquidation floor that closes the loop: the target
// liquidation price sits safetyBuffer below the strategic stop-loss, so at
// MaxSafeLeverage the stop always triggers before forced liquidation.
func ClosedLoopAllocation(balance, entry, stopLoss, targetUpper, winRate, kellyFraction, safetyBuffer float64) (Allocation, error) {
	if stopLoss >= entry {
		return Allocation{}, validationErrorf("stop loss %f must be below entry price %f for a long grid", stopLoss, entry)
	}

	riskDist := (entry - stopLoss) / entry
	rewardDist := (targetUpper - entry) / entry

	// Defensive against zero-risk configurations if the guard above is ever
	// relaxed for other grid geometries.
	if riskDist <= 0 {
		return Allocation{Action: ActionDoNotTrade, Reason: "Invalid Risk Distance"}, nil
	}

	payoffRatio := rewardDist / riskDist

	// f = p - q/b, then scale down by the applied fraction.
	rawKelly := winRate - (1-winRate)/payoffRatio
	appliedKelly := rawKelly * kellyFraction

	if appliedKelly <= 0 {
		return Allocation{Action: ActionDoNotTrade, Reason: "Negative Edge/Kelly"}, nil
	}

	totalExposure := balance * (appliedKelly / riskDist)

	targetLiq := stopLoss * safetyBuffer
	distToLiq := entry - targetLiq
	maxSafeLeverage := entry / distToLiq

	requiredMargin := totalExposure / maxSafeLeverage

	return Allocation{
		Action:          ActionTrade,
		EntryPrice:      entry,
		StopLoss:        stopLoss,
		TargetLiqPrice:  targetLiq,
		MaxSafeLeverage: maxSafeLeverage,
		TotalExposure:   totalExposure,
		RequiredMargin:  requiredMargin,
		KellyRiskPct:    appliedKelly,
	}, nil
}
