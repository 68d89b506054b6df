// Package binance fetches daily OHLC history from the Binance spot API.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gobinance "github.com/adshao/go-binance/v2"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/analysis"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange"
)

// HistoryClient pulls daily klines for the volatility estimator.
type HistoryClient struct {
	client *gobinance.Client
}

// NewHistoryClient builds a client for the public market-data endpoints; no
// API credentials are needed for klines.
func NewHistoryClient(timeout time.Duration) *HistoryClient {
	c := gobinance.NewClient("", "")
	c.HTTPClient = &http.Client{Timeout: timeout}
	return &HistoryClient{client: c}
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (h *HistoryClient) SetBaseURL(url string) {
	h.client.BaseURL = url
}

// FetchHistory returns up to days daily bars for symbol, oldest first.
// Transport failures come back as *exchange.FetchError; an empty or
// malformed payload is an *analysis.DataError.
func (h *HistoryClient) FetchHistory(ctx context.Context, symbol string, days int) ([]analysis.Bar, error) {
	klines, err := h.client.NewKlinesService().
		Symbol(symbol).
		Interval("1d").
		Limit(days).
		Do(ctx)
	if err != nil {
		return nil, &exchange.FetchError{Op: "fetch klines for " + symbol, Err: err}
	}
	if len(klines) == 0 {
		return nil, &analysis.DataError{Msg: "no kline data returned for " + symbol}
	}

	bars := make([]analysis.Bar, 0, len(klines))
	for i, k := range klines {
		bar, err := toBar(k)
		if err != nil {
			return nil, &analysis.DataError{Msg: fmt.Sprintf("malformed kline %d for %s: %v", i, symbol, err)}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func toBar(k *gobinance.Kline) (analysis.Bar, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return analysis.Bar{}, fmt.Errorf("open: %w", err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return analysis.Bar{}, fmt.Errorf("high: %w", err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return analysis.Bar{}, fmt.Errorf("low: %w", err)
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return analysis.Bar{}, fmt.Errorf("close: %w", err)
	}

	return analysis.Bar{
		OpenTime: time.UnixMilli(k.OpenTime),
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
	}, nil
}
