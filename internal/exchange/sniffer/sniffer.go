// Package sniffer gathers point-in-time market intelligence (fees, spread,
// funding, last price) from exchange REST APIs.
package sniffer

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/common"
)

// defaultFunding8h stands in when the funding endpoint is unreachable: a
// typical small positive perp funding rate.
const defaultFunding8h = 0.0001

// Intel is the cost profile of trading a symbol on one exchange right now.
// MakerFee/TakerFee are nil when the exchange is unknown to the sniffer; the
// orchestrator must resolve fees out-of-band before optimizing.
type Intel struct {
	MakerFee      *float64
	TakerFee      *float64
	SpreadPct     float64
	FundingRate8h float64
	LastPrice     float64
}

// FeesKnown reports whether both fee fields were sniffed successfully.
func (i Intel) FeesKnown() bool { return i.MakerFee != nil && i.TakerFee != nil }

// Maker returns the maker fee, or 0 when unknown.
func (i Intel) Maker() float64 {
	if i.MakerFee == nil {
		return 0
	}
	return *i.MakerFee
}

// adapter is one exchange's REST surface. Implementations degrade per
// field: a failed ticker or funding call is reported as an error and the
// sniffer falls back to defaults instead of aborting the run.
type adapter interface {
	fees() (maker, taker float64)
	ticker(ctx context.Context, base, quote string) (last, bid, ask float64, err error)
	funding(ctx context.Context, base, quote string) (float64, error)
}

// Sniffer multiplexes across the exchanges it has adapters for, with a
// Binance fallback for everything else.
type Sniffer struct {
	adapters map[string]adapter
}

// New builds a sniffer with adapters for the first-party exchanges.
func New(timeout time.Duration) *Sniffer {
	rest := resty.New().SetTimeout(timeout)
	return &Sniffer{adapters: map[string]adapter{
		common.ExchangeBinance: newBinanceAdapter(rest),
		common.ExchangeBybit:   newBybitAdapter(rest),
		common.ExchangeOKX:     newOKXAdapter(rest),
	}}
}

// Sniff collects market intel for base/quote on the given exchange. It never
// fails outright: unreachable endpoints degrade to safe defaults, and an
// exchange without an adapter yields Binance market data with unknown fees
// so the caller knows to ask for them.
func (s *Sniffer) Sniff(ctx context.Context, exchangeID, base, quote string) Intel {
	ad, ok := s.adapters[exchangeID]
	if !ok {
		log.Warn().Str("exchange", exchangeID).
			Msg("no adapter for exchange, using binance fallback data with unknown fees")
		intel := s.sniffWith(ctx, s.adapters[common.ExchangeBinance], base, quote)
		intel.MakerFee, intel.TakerFee = nil, nil
		return intel
	}
	return s.sniffWith(ctx, ad, base, quote)
}

func (s *Sniffer) sniffWith(ctx context.Context, ad adapter, base, quote string) Intel {
	maker, taker := ad.fees()
	intel := Intel{
		MakerFee:      &maker,
		TakerFee:      &taker,
		FundingRate8h: defaultFunding8h,
	}

	last, bid, ask, err := ad.ticker(ctx, base, quote)
	if err != nil {
		log.Warn().Err(err).Str("base", base).Msg("ticker sniff failed, spread and live price unavailable")
	} else {
		intel.LastPrice = last
		if ask > 0 && bid > 0 && ask >= bid {
			intel.SpreadPct = (ask - bid) / ask
		}
	}

	funding, err := ad.funding(ctx, base, quote)
	if err != nil {
		log.Warn().Err(err).Str("base", base).Msg("funding sniff failed, using default rate")
	} else {
		intel.FundingRate8h = funding
	}

	return intel
}
