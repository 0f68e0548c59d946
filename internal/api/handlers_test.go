package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/pricepulse/internal/models"
)

type stubGateway struct {
	price   float64
	priceOK bool
	candles []models.Candle
	top     []models.MarketEntry
	news    []models.NewsItem
}

func (g *stubGateway) Price(context.Context, string) (float64, error) {
	if !g.priceOK {
		return 0, models.ErrUnavailable
	}
	return g.price, nil
}

func (g *stubGateway) Candles(context.Context, string, int) ([]models.Candle, error) {
	if g.candles == nil {
		return nil, models.ErrUnavailable
	}
	return g.candles, nil
}

func (g *stubGateway) FiatUSD(context.Context, string) (float64, error) {
	return 0, models.ErrUnavailable
}

func (g *stubGateway) TopMarket(context.Context, int) ([]models.MarketEntry, error) {
	if g.top == nil {
		return nil, models.ErrUnavailable
	}
	return g.top, nil
}

func (g *stubGateway) News(context.Context) ([]models.NewsItem, error) {
	if g.news == nil {
		return nil, models.ErrUnavailable
	}
	return g.news, nil
}

func serveTest(t *testing.T, gw *stubGateway, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(0, gw, func() interface{} {
		return map[string]int{"cycles": 3}
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := serveTest(t, &stubGateway{}, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGetPrice(t *testing.T) {
	gw := &stubGateway{price: 50000, priceOK: true}
	rec := serveTest(t, gw, http.MethodGet, "/api/v1/price/btc")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BTC", body["symbol"], "symbol is upcased")
	assert.Equal(t, 50000.0, body["price"])
}

func TestGetPriceUnavailable(t *testing.T) {
	rec := serveTest(t, &stubGateway{}, http.MethodGet, "/api/v1/price/BTC")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetIndicators(t *testing.T) {
	candles := make([]models.Candle, 40)
	for i := range candles {
		candles[i] = models.Candle{Close: float64(100 + i)}
	}
	rec := serveTest(t, &stubGateway{candles: candles}, http.MethodGet, "/api/v1/indicators/BTC")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "rsi")
	assert.Contains(t, body, "ema20")
	assert.Contains(t, body, "macd_histogram")
	assert.Equal(t, 139.0, body["close"])
}

func TestGetIndicatorsShortHistoryOmitsMACD(t *testing.T) {
	candles := make([]models.Candle, 20)
	for i := range candles {
		candles[i] = models.Candle{Close: 100}
	}
	rec := serveTest(t, &stubGateway{candles: candles}, http.MethodGet, "/api/v1/indicators/BTC")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "rsi")
	assert.NotContains(t, body, "macd")
}

func TestGetTopMovers(t *testing.T) {
	gw := &stubGateway{top: []models.MarketEntry{
		{Symbol: "A", Change24h: 1},
		{Symbol: "B", Change24h: 9},
		{Symbol: "C", Change24h: -4},
	}}
	rec := serveTest(t, gw, http.MethodGet, "/api/v1/market/movers")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Gainers []models.MarketEntry `json:"gainers"`
		Losers  []models.MarketEntry `json:"losers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Gainers)
	require.NotEmpty(t, body.Losers)
	assert.Equal(t, "B", body.Gainers[0].Symbol)
	assert.Equal(t, "C", body.Losers[0].Symbol)
}

func TestGetNews(t *testing.T) {
	gw := &stubGateway{news: []models.NewsItem{{Title: "headline"}}}
	rec := serveTest(t, gw, http.MethodGet, "/api/v1/news")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "headline")
}

func TestGetStats(t *testing.T) {
	rec := serveTest(t, &stubGateway{}, http.MethodGet, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cycles")
}
