package sniffer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// Published base-tier spot fees. Fee-schedule endpoints require account
// credentials on all three venues, so the sniffer reports the public tier;
// users on discounted tiers can override via manual fee entry.
const (
	binanceMakerFee = 0.001
	binanceTakerFee = 0.001
	bybitMakerFee   = 0.001
	bybitTakerFee   = 0.001
	okxMakerFee     = 0.0008
	okxTakerFee     = 0.001
)

// --- Binance ---

type binanceAdapter struct {
	rest       *resty.Client
	spotURL    string
	futuresURL string
}

func newBinanceAdapter(rest *resty.Client) *binanceAdapter {
	return &binanceAdapter{
		rest:       rest,
		spotURL:    "https://api.binance.com",
		futuresURL: "https://fapi.binance.com",
	}
}

func (a *binanceAdapter) fees() (float64, float64) { return binanceMakerFee, binanceTakerFee }

func (a *binanceAdapter) ticker(ctx context.Context, base, quote string) (float64, float64, float64, error) {
	var out struct {
		LastPrice string `json:"lastPrice"`
		BidPrice  string `json:"bidPrice"`
		AskPrice  string `json:"askPrice"`
	}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParam("symbol", base+quote).
		SetResult(&out).
		Get(a.spotURL + "/api/v3/ticker/24hr")
	if err != nil {
		return 0, 0, 0, fmt.Errorf("binance ticker request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, 0, 0, fmt.Errorf("binance ticker: status %d", resp.StatusCode())
	}
	return parseTicker(out.LastPrice, out.BidPrice, out.AskPrice)
}

func (a *binanceAdapter) funding(ctx context.Context, base, quote string) (float64, error) {
	var out struct {
		LastFundingRate string `json:"lastFundingRate"`
	}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParam("symbol", base+quote).
		SetResult(&out).
		Get(a.futuresURL + "/fapi/v1/premiumIndex")
	if err != nil {
		return 0, fmt.Errorf("binance funding request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("binance funding: status %d", resp.StatusCode())
	}
	return strconv.ParseFloat(out.LastFundingRate, 64)
}

// --- Bybit ---

type bybitAdapter struct {
	rest    *resty.Client
	baseURL string
}

func newBybitAdapter(rest *resty.Client) *bybitAdapter {
	return &bybitAdapter{rest: rest, baseURL: "https://api.bybit.com"}
}

func (a *bybitAdapter) fees() (float64, float64) { return bybitMakerFee, bybitTakerFee }

type bybitTickersResp struct {
	RetCode int `json:"retCode"`
	Result  struct {
		List []struct {
			LastPrice   string `json:"lastPrice"`
			Bid1Price   string `json:"bid1Price"`
			Ask1Price   string `json:"ask1Price"`
			FundingRate string `json:"fundingRate"`
		} `json:"list"`
	} `json:"result"`
}

func (a *bybitAdapter) tickers(ctx context.Context, category, symbol string) (*bybitTickersResp, error) {
	var out bybitTickersResp
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"category": category, "symbol": symbol}).
		SetResult(&out).
		Get(a.baseURL + "/v5/market/tickers")
	if err != nil {
		return nil, fmt.Errorf("bybit tickers request failed: %w", err)
	}
	if resp.StatusCode() != 200 || out.RetCode != 0 {
		return nil, fmt.Errorf("bybit tickers: status %d retCode %d", resp.StatusCode(), out.RetCode)
	}
	if len(out.Result.List) == 0 {
		return nil, fmt.Errorf("bybit tickers: empty list for %s", symbol)
	}
	return &out, nil
}

func (a *bybitAdapter) ticker(ctx context.Context, base, quote string) (float64, float64, float64, error) {
	out, err := a.tickers(ctx, "spot", base+quote)
	if err != nil {
		return 0, 0, 0, err
	}
	t := out.Result.List[0]
	return parseTicker(t.LastPrice, t.Bid1Price, t.Ask1Price)
}

func (a *bybitAdapter) funding(ctx context.Context, base, quote string) (float64, error) {
	out, err := a.tickers(ctx, "linear", base+quote)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(out.Result.List[0].FundingRate, 64)
}

// --- OKX ---

type okxAdapter struct {
	rest    *resty.Client
	baseURL string
}

func newOKXAdapter(rest *resty.Client) *okxAdapter {
	return &okxAdapter{rest: rest, baseURL: "https://www.okx.com"}
}

func (a *okxAdapter) fees() (float64, float64) { return okxMakerFee, okxTakerFee }

func (a *okxAdapter) ticker(ctx context.Context, base, quote string) (float64, float64, float64, error) {
	var out struct {
		Code string `json:"code"`
		Data []struct {
			Last  string `json:"last"`
			BidPx string `json:"bidPx"`
			AskPx string `json:"askPx"`
		} `json:"data"`
	}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParam("instId", base+"-"+quote).
		SetResult(&out).
		Get(a.baseURL + "/api/v5/market/ticker")
	if err != nil {
		return 0, 0, 0, fmt.Errorf("okx ticker request failed: %w", err)
	}
	if resp.StatusCode() != 200 || out.Code != "0" || len(out.Data) == 0 {
		return 0, 0, 0, fmt.Errorf("okx ticker: status %d code %s", resp.StatusCode(), out.Code)
	}
	t := out.Data[0]
	return parseTicker(t.Last, t.BidPx, t.AskPx)
}

func (a *okxAdapter) funding(ctx context.Context, base, quote string) (float64, error) {
	var out struct {
		Code string `json:"code"`
		Data []struct {
			FundingRate string `json:"fundingRate"`
		} `json:"data"`
	}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParam("instId", base+"-"+quote+"-SWAP").
		SetResult(&out).
		Get(a.baseURL + "/api/v5/public/funding-rate")
	if err != nil {
		return 0, fmt.Errorf("okx funding request failed: %w", err)
	}
	if resp.StatusCode() != 200 || out.Code != "0" || len(out.Data) == 0 {
		return 0, fmt.Errorf("okx funding: status %d code %s", resp.StatusCode(), out.Code)
	}
	return strconv.ParseFloat(out.Data[0].FundingRate, 64)
}

func parseTicker(last, bid, ask string) (float64, float64, float64, error) {
	l, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("last price: %w", err)
	}
	b, err := strconv.ParseFloat(bid, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bid price: %w", err)
	}
	a, err := strconv.ParseFloat(ask, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ask price: %w", err)
	}
	return l, b, a, nil
}
