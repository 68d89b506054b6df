package optimizer

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBounds_OrderingAndPositivity(t *testing.T) {
	testCases := []struct {
		name  string
		price float64
		sigma float64
		mu    float64
		days  int
	}{
		{"typical btc", 50000, 0.03, 0.001, 7},
		{"high vol", 100, 0.25, 0.0, 14},
		{"bearish drift", 100, 0.05, -0.02, 7},
		{"bullish drift", 100, 0.05, 0.02, 30},
		{"tiny price", 0.0001, 0.10, 0.0, 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := CalculateBounds(tc.price, tc.sigma, tc.mu, tc.days, 2.0)
			require.NoError(t, err)
			assert.Greater(t, b.Upper, b.Lower, "upper must exceed lower for sigma > 0")
			assert.Greater(t, b.Lower, 0.0, "lower must stay positive")
		})
	}
}

func TestCalculateBounds_ZeroSigmaCollapses(t *testing.T) {
	b, err := CalculateBounds(100, 0, 0.01, 7, 2.0)
	require.NoError(t, err)

	// With sigma=0 the cone collapses onto the pure drift path.
	expected := 100 * math.Exp(0.01*7)
	assert.InDelta(t, expected, b.Upper, 1e-9)
	assert.Equal(t, b.Upper, b.Lower)
}

func TestCalculateBounds_HorizonWidensCone(t *testing.T) {
	short, err := CalculateBounds(100, 0.05, 0, 7, 2.0)
	require.NoError(t, err)
	long, err := CalculateBounds(100, 0.05, 0, 30, 2.0)
	require.NoError(t, err)

	assert.Greater(t, long.Upper, short.Upper)
	assert.Less(t, long.Lower, short.Lower)
}

func TestCalculateBounds_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		price float64
		days  int
	}{
		{"zero days", 100, 0},
		{"negative days", 100, -7},
		{"zero price", 0, 7},
		{"negative price", -100, 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalculateBounds(tc.price, 0.05, 0, tc.days, 2.0)
			require.Error(t, err)

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
		})
	}
}

func TestCalculateGridStep(t *testing.T) {
	testCases := []struct {
		name           string
		sigma          float64
		makerFee       float64
		minProfitShare float64
		expected       float64
	}{
		// Round-trip fee 0.1 against a 0.2 drag limit dominates the tiny sigma.
		{"fee dominant", 0.001, 0.05, 0.8, 0.5},
		// Zero fees leave the half-sigma volatility step.
		{"volatility dominant", 0.10, 0.0, 0.8, 0.05},
		{"degenerate profit share", 0.10, 0.05, 1.0, 0.01},
		{"profit share above one", 0.10, 0.05, 1.5, 0.01},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateGridStep(tc.sigma, tc.makerFee, tc.minProfitShare)
			assert.InDelta(t, tc.expected, got, 1e-12)
		})
	}
}

func TestCalculateGridQuantity(t *testing.T) {
	testCases := []struct {
		name     string
		lower    float64
		upper    float64
		step     float64
		expected int
	}{
		{"single double step", 100, 200, 1.0, 1},
		{"five ten-pct steps", 100, 150, 0.1, 5},
		{"inverted bounds", 200, 100, 0.1, 0},
		{"equal bounds", 100, 100, 0.1, 0},
		{"zero step", 100, 200, 0, 0},
		{"negative step", 100, 200, -0.1, 0},
		{"non-positive lower", 0, 200, 0.1, 0},
		{"non-positive upper", 100, -5, 0.1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculateGridQuantity(tc.lower, tc.upper, tc.step))
		})
	}
}

func TestCalculateMinCapital(t *testing.T) {
	// One line at $10 minimum order, 1x leverage.
	got := CalculateMinCapital(100, 200, 1.0, 1.0, 10.0)
	assert.InDelta(t, 10.0, got, 1e-12)

	// Doubling leverage halves the required margin.
	doubled := CalculateMinCapital(100, 200, 1.0, 2.0, 10.0)
	assert.InDelta(t, got/2, doubled, 1e-12)

	// Degenerate grid propagates zero.
	assert.Zero(t, CalculateMinCapital(200, 100, 1.0, 2.0, 10.0))
}

func TestClosedLoopAllocation_TradeInvariants(t *testing.T) {
	testCases := []struct {
		name    string
		balance float64
		entry   float64
		stop    float64
		upper   float64
	}{
		{"standard", 1000, 100, 90, 130},
		{"wide target", 5000, 250, 200, 400},
		{"tight stop", 1000, 100, 98, 120},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := ClosedLoopAllocation(tc.balance, tc.entry, tc.stop, tc.upper, 0.55, 0.5, 0.90)
			require.NoError(t, err)
			require.Equal(t, ActionTrade, a.Action)

			// The closed-loop invariant: liquidation strictly below the stop,
			// stop strictly below entry.
			assert.Less(t, a.TargetLiqPrice, a.StopLoss)
			assert.Less(t, a.StopLoss, a.EntryPrice)
			assert.Greater(t, a.MaxSafeLeverage, 0.0)
			assert.Greater(t, a.KellyRiskPct, 0.0)
			assert.GreaterOrEqual(t, a.TotalExposure, a.RequiredMargin)
		})
	}
}

func TestClosedLoopAllocation_NegativeKelly(t *testing.T) {
	// Payoff ratio of 0.1 at a coin-flip win rate has negative edge.
	a, err := ClosedLoopAllocation(1000, 100, 90, 101, 0.5, 0.5, 0.90)
	require.NoError(t, err)

	assert.Equal(t, ActionDoNotTrade, a.Action)
	assert.Equal(t, "Negative Edge/Kelly", a.Reason)
	assert.Zero(t, a.TotalExposure)
}

func TestClosedLoopAllocation_ZeroBalance(t *testing.T) {
	// A zero bankroll is valid input: the geometry is still a trade, just
	// with nothing to allocate.
	a, err := ClosedLoopAllocation(0, 100, 90, 120, 0.55, 0.5, 0.90)
	require.NoError(t, err)

	assert.Equal(t, ActionTrade, a.Action)
	assert.Zero(t, a.TotalExposure)
	assert.Zero(t, a.RequiredMargin)
}

func TestClosedLoopAllocation_StopAboveEntry(t *testing.T) {
	for _, stop := range []float64{100, 150} {
		_, err := ClosedLoopAllocation(1000, 100, stop, 120, 0.55, 0.5, 0.90)
		require.Error(t, err)

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	}
}

func TestClosedLoopAllocation_LeverageMatchesBuffer(t *testing.T) {
	a, err := ClosedLoopAllocation(1000, 100, 90, 130, 0.55, 0.5, 0.90)
	require.NoError(t, err)

	assert.InDelta(t, 90*0.90, a.TargetLiqPrice, 1e-12)
	assert.InDelta(t, 100/(100-81.0), a.MaxSafeLeverage, 1e-12)
	assert.InDelta(t, a.TotalExposure/a.MaxSafeLeverage, a.RequiredMargin, 1e-9)
}

func TestPureFunctionsAreIdempotent(t *testing.T) {
	b1, err := CalculateBounds(100, 0.05, 0.001, 7, 2.0)
	require.NoError(t, err)
	b2, err := CalculateBounds(100, 0.05, 0.001, 7, 2.0)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)

	assert.Equal(t,
		CalculateGridStep(0.04, 0.0002, 0.8),
		CalculateGridStep(0.04, 0.0002, 0.8))

	a1, err := ClosedLoopAllocation(1000, 100, 90, 130, 0.55, 0.5, 0.90)
	require.NoError(t, err)
	a2, err := ClosedLoopAllocation(1000, 100, 90, 130, 0.55, 0.5, 0.90)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
}
