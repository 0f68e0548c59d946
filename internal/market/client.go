// Package market fetches prices, candle history, market snapshots and news
// from upstream providers and caches them behind a single Gateway. Every
// upstream failure degrades to models.ErrUnavailable; nothing in this
// package panics or aborts an evaluation cycle.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mohamedkhairy/pricepulse/internal/config"
	"github.com/mohamedkhairy/pricepulse/internal/models"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Client talks to the crypto market data provider
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a market data client with a bounded request timeout
func NewClient(cfg config.MarketDataConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// getJSON performs a GET and decodes the response body. Any transport
// error, non-2xx status or undecodable payload becomes ErrUnavailable.
func (c *Client) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", models.ErrUnavailable)
	}
	if c.apiKey != "" {
		req.Header.Set("authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Market data request failed",
			logger.String("url", rawURL),
			logger.ErrorField(err),
		)
		return fmt.Errorf("request failed: %w", models.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("Market data request returned non-2xx status",
			logger.String("url", rawURL),
			logger.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("unexpected status %d: %w", resp.StatusCode, models.ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		logger.Warn("Market data response is malformed",
			logger.String("url", rawURL),
			logger.ErrorField(err),
		)
		return fmt.Errorf("malformed response: %w", models.ErrUnavailable)
	}

	return nil
}

// Price fetches the current USD spot price for a symbol
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	u := fmt.Sprintf("%s/data/price?fsym=%s&tsyms=USD",
		c.baseURL, url.QueryEscape(symbol))

	var payload map[string]float64
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return 0, err
	}

	price, ok := payload["USD"]
	if !ok {
		return 0, fmt.Errorf("no USD quote for %s: %w", symbol, models.ErrUnavailable)
	}
	return price, nil
}

type histoResponse struct {
	Data []struct {
		Close    float64 `json:"close"`
		VolumeTo float64 `json:"volumeto"`
	} `json:"Data"`
}

// Candles fetches up to limit hourly candles for a symbol, oldest first
func (c *Client) Candles(ctx context.Context, symbol string, limit int) ([]models.Candle, error) {
	u := fmt.Sprintf("%s/data/histohour?fsym=%s&tsym=USD&limit=%d",
		c.baseURL, url.QueryEscape(symbol), limit)

	var payload histoResponse
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("empty candle history for %s: %w", symbol, models.ErrUnavailable)
	}

	candles := make([]models.Candle, 0, len(payload.Data))
	for _, item := range payload.Data {
		candles = append(candles, models.Candle{
			Close:  item.Close,
			Volume: item.VolumeTo,
		})
	}
	return candles, nil
}

type topMarketResponse struct {
	Data []struct {
		CoinInfo struct {
			Name string `json:"Name"`
		} `json:"CoinInfo"`
		Raw struct {
			USDT struct {
				Price           float64 `json:"PRICE"`
				ChangePct24Hour float64 `json:"CHANGEPCT24HOUR"`
			} `json:"USDT"`
		} `json:"RAW"`
	} `json:"Data"`
}

// TopMarket fetches the top-n coins by market cap with price and 24h change
func (c *Client) TopMarket(ctx context.Context, n int) ([]models.MarketEntry, error) {
	u := fmt.Sprintf("%s/data/top/mktcapfull?limit=%d&tsym=USDT", c.baseURL, n)

	var payload topMarketResponse
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}

	entries := make([]models.MarketEntry, 0, len(payload.Data))
	for _, item := range payload.Data {
		entries = append(entries, models.MarketEntry{
			Symbol:    item.CoinInfo.Name,
			Price:     item.Raw.USDT.Price,
			Change24h: item.Raw.USDT.ChangePct24Hour,
		})
	}
	return entries, nil
}

type newsResponse struct {
	Data []struct {
		Title  string `json:"title"`
		Source string `json:"source"`
		URL    string `json:"url"`
	} `json:"Data"`
}

// News fetches current crypto headlines
func (c *Client) News(ctx context.Context) ([]models.NewsItem, error) {
	u := fmt.Sprintf("%s/data/v2/news/?lang=EN&categories=BTC,ETH,Crypto", c.baseURL)

	var payload newsResponse
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(payload.Data))
	for _, item := range payload.Data {
		items = append(items, models.NewsItem{
			Title:  item.Title,
			Source: item.Source,
			URL:    item.URL,
		})
	}
	return items, nil
}
