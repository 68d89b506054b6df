// Package exchange holds types shared by the market-data collaborators.
package exchange

import (
	"fmt"
	"strings"
)

// FetchError wraps a transport-level failure from an exchange API. It is
// deliberately distinct from a data error: a caller may retry a fetch but
// there is no point retrying a delisted asset.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// NormalizeSymbol turns user input like "btc" or "BTC/USDT" into the compact
// exchange form "BTCUSDT". A bare asset gets the quote asset appended.
func NormalizeSymbol(ticker, quoteAsset string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.Contains(s, "/") {
		return strings.ReplaceAll(s, "/", "")
	}
	if strings.HasSuffix(s, strings.ToUpper(quoteAsset)) && len(s) > len(quoteAsset) {
		return s
	}
	return s + strings.ToUpper(quoteAsset)
}

// BaseAsset extracts the base asset from user input: "BTC/USDT" -> "BTC",
// "SOL" -> "SOL".
func BaseAsset(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if i := strings.Index(s, "/"); i >= 0 {
		return s[:i]
	}
	return s
}
