package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/analysis"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange"
)

func klineServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchHistory(t *testing.T) {
	body := `[
		[1700000000000,"100.0","110.0","95.0","105.0","1000",1700086399999,"105000",10,"500","52500","0"],
		[1700086400000,"105.0","112.0","103.0","108.0","900",1700172799999,"97200",9,"450","48600","0"]
	]`
	srv := klineServer(t, body)
	defer srv.Close()

	h := NewHistoryClient(2 * time.Second)
	h.SetBaseURL(srv.URL)

	bars, err := h.FetchHistory(context.Background(), "BTCUSDT", 90)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 110.0, bars[0].High)
	assert.Equal(t, 95.0, bars[0].Low)
	assert.Equal(t, 105.0, bars[0].Close)
	assert.Equal(t, time.UnixMilli(1700000000000), bars[0].OpenTime)
	assert.Equal(t, 108.0, bars[1].Close)
}

func TestFetchHistory_EmptyResultIsDataError(t *testing.T) {
	srv := klineServer(t, `[]`)
	defer srv.Close()

	h := NewHistoryClient(2 * time.Second)
	h.SetBaseURL(srv.URL)

	_, err := h.FetchHistory(context.Background(), "NOPEUSDT", 90)
	require.Error(t, err)

	var derr *analysis.DataError
	assert.True(t, errors.As(err, &derr), "empty history should be a data error, got %T", err)
}

func TestFetchHistory_MalformedKlineIsDataError(t *testing.T) {
	body := `[[1700000000000,"oops","110.0","95.0","105.0","1000",1700086399999,"105000",10,"500","52500","0"]]`
	srv := klineServer(t, body)
	defer srv.Close()

	h := NewHistoryClient(2 * time.Second)
	h.SetBaseURL(srv.URL)

	_, err := h.FetchHistory(context.Background(), "BTCUSDT", 90)
	require.Error(t, err)

	var derr *analysis.DataError
	assert.True(t, errors.As(err, &derr))
}

func TestFetchHistory_TransportFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	h := NewHistoryClient(time.Second)
	h.SetBaseURL(srv.URL)

	_, err := h.FetchHistory(context.Background(), "BTCUSDT", 90)
	require.Error(t, err)

	var ferr *exchange.FetchError
	assert.True(t, errors.As(err, &ferr), "dead endpoint should be a fetch error, got %T", err)
}
