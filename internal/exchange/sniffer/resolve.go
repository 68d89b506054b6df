package sniffer

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// KnownExchanges is the registry used for typo correction. It is broader
// than the set of first-party adapters so a correctly spelled but
// unsupported exchange falls through to offline mode rather than being
// "corrected" into a different venue.
var KnownExchanges = []string{
	"binance",
	"bybit",
	"okx",
	"kraken",
	"coinbase",
	"kucoin",
	"gateio",
	"bitget",
	"mexc",
	"cryptocom",
	"pionex",
	"poloniex",
	"htx",
	"bitfinex",
	"upbit",
	"bitstamp",
}

// resolveCutoff keeps correction conservative: 0.85 is high enough that
// pionex does not get rewritten into poloniex.
const resolveCutoff = 0.85

// Resolve lowercases the exchange name and auto-corrects near misses
// against the registry. The second return reports whether a correction was
// applied. Names with no close match pass through unchanged; the sniffer
// will then degrade to offline mode on its own.
func Resolve(name string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(name))
	for _, known := range KnownExchanges {
		if id == known {
			return id, false
		}
	}

	best := ""
	bestScore := 0.0
	for _, known := range KnownExchanges {
		if score := similarity(id, known); score > bestScore {
			best, bestScore = known, score
		}
	}
	if bestScore >= resolveCutoff {
		return best, true
	}
	return id, false
}

func similarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
