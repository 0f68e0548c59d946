// Package api serves the user-triggered query surface: current prices,
// indicator readouts, market snapshots and engine health. Alert mutation
// stays on the bot side; this surface is read-only.
package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mohamedkhairy/pricepulse/internal/market"
	"github.com/mohamedkhairy/pricepulse/internal/models"
	"github.com/mohamedkhairy/pricepulse/pkg/indicator"
)

const (
	candleHistory = 50
	topMarketSize = 50
	moversShown   = 5
)

// MarketHandler serves price and indicator queries from the gateway
type MarketHandler struct {
	gateway market.Gateway
}

// NewMarketHandler creates a market query handler
func NewMarketHandler(gateway market.Gateway) *MarketHandler {
	return &MarketHandler{gateway: gateway}
}

// GetPrice handles GET /api/v1/price/{symbol}
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	price, err := h.gateway.Price(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, models.ErrUnavailable) {
			respondWithError(w, http.StatusBadGateway, "Price data unavailable")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch price")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"price":  price,
	})
}

// GetIndicators handles GET /api/v1/indicators/{symbol}. Indicators that
// cannot be computed from the available history are omitted rather than
// failing the whole response.
func (h *MarketHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	candles, err := h.gateway.Candles(r.Context(), symbol, candleHistory)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Candle data unavailable")
		return
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	payload := map[string]interface{}{"symbol": symbol}
	if len(closes) > 0 {
		payload["close"] = closes[len(closes)-1]
	}
	if rsi, err := indicator.RSI(closes, indicator.DefaultRSIPeriod); err == nil {
		payload["rsi"] = rsi
	}
	if ema, err := indicator.EMA(closes, 20); err == nil {
		payload["ema20"] = ema
	}
	if macd, err := indicator.MACD(closes); err == nil {
		payload["macd"] = macd.MACD
		payload["macd_signal"] = macd.Signal
		payload["macd_histogram"] = macd.Histogram
	}

	respondWithJSON(w, http.StatusOK, payload)
}

// GetTopMovers handles GET /api/v1/market/movers: the biggest gainers and
// losers over 24h among the top coins by market cap
func (h *MarketHandler) GetTopMovers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.gateway.TopMarket(r.Context(), topMarketSize)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Market data unavailable")
		return
	}

	sorted := make([]models.MarketEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Change24h > sorted[j].Change24h
	})

	n := moversShown
	if n > len(sorted) {
		n = len(sorted)
	}
	gainers := sorted[:n]
	losers := make([]models.MarketEntry, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n && i >= 0; i-- {
		losers = append(losers, sorted[i])
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"gainers": gainers,
		"losers":  losers,
	})
}

// GetNews handles GET /api/v1/news
func (h *MarketHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	items, err := h.gateway.News(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "News unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"news":  items,
		"count": len(items),
	})
}

// StatsHandler serves engine cycle statistics
type StatsHandler struct {
	stats func() interface{}
}

// NewStatsHandler creates a stats handler over a stats source
func NewStatsHandler(stats func() interface{}) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.stats())
}
