// Package analysis derives daily volatility, drift, and average true range
// from historical OHLC bars.
package analysis

import (
	"fmt"
	"math"
	"time"
)

// atrPeriod is the lookback for the simple-moving-average ATR. Histories
// shorter than this use every available bar instead.
const atrPeriod = 14

// Bar is one daily OHLC candle. Bars handed to Estimate must be in
// chronological order.
type Bar struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
}

// Metrics is the point-in-time volatility profile of an asset.
type Metrics struct {
	CurrentPrice float64
	SigmaDaily   float64
	MuDaily      float64
	ATR          float64
}

// WithNeutralDrift returns a copy of the metrics with the historical drift
// zeroed out. Neutral-mode and bearish-drift correction both go through
// here so callers never mutate a shared metrics value.
func (m Metrics) WithNeutralDrift() Metrics {
	m.MuDaily = 0
	return m
}

// DataError reports acquired data that is empty, malformed, or contains
// non-positive prices. It is distinct from a transport failure so callers
// can tell a delisted asset from a flaky fetch.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string { return e.Msg }

func dataErrorf(format string, args ...any) *DataError {
	return &DataError{Msg: fmt.Sprintf(format, args...)}
}

// Estimate computes daily log-return volatility (population stddev), mean
// drift, and a 14-bar ATR from the bar history. The last close doubles as
// the current price.
func Estimate(bars []Bar) (Metrics, error) {
	if len(bars) == 0 {
		return Metrics{}, dataErrorf("no bars to analyze")
	}
	if len(bars) < 2 {
		return Metrics{}, dataErrorf("need at least 2 bars to estimate volatility, got %d", len(bars))
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		if b.Close <= 0 {
			return Metrics{}, dataErrorf("bar %d has non-positive close %f", i, b.Close)
		}
		closes[i] = b.Close
	}

	rets := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		rets[i-1] = math.Log(closes[i]) - math.Log(closes[i-1])
	}

	mu := mean(rets)
	sigma := populationStddev(rets, mu)

	if !isFinite(sigma) || !isFinite(mu) {
		return Metrics{}, dataErrorf("non-finite volatility statistics (sigma=%f, mu=%f)", sigma, mu)
	}

	trueRanges := make([]float64, len(bars))
	for i, b := range bars {
		prevClose := closes[0]
		if i > 0 {
			prevClose = closes[i-1]
		}
		tr := b.High - b.Low
		tr = math.Max(tr, math.Abs(b.High-prevClose))
		tr = math.Max(tr, math.Abs(b.Low-prevClose))
		trueRanges[i] = tr
	}
	if len(trueRanges) > atrPeriod {
		trueRanges = trueRanges[len(trueRanges)-atrPeriod:]
	}
	atr := mean(trueRanges)

	return Metrics{
		CurrentPrice: closes[len(closes)-1],
		SigmaDaily:   sigma,
		MuDaily:      mu,
		ATR:          atr,
	}, nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func populationStddev(xs []float64, mean float64) float64 {
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
