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

// RateClient resolves fiat symbols to a USD price. Used only as a fallback
// when a portfolio symbol is not a known crypto asset.
type RateClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewRateClient creates a fiat exchange rate client
func NewRateClient(cfg config.MarketDataConfig) *RateClient {
	return &RateClient{
		baseURL: cfg.RatesBaseURL,
		apiKey:  cfg.RatesAPIKey,
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

type ratesResponse struct {
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// USDValue returns the USD price of one unit of the given fiat currency
func (r *RateClient) USDValue(ctx context.Context, symbol string) (float64, error) {
	u := fmt.Sprintf("%s/v6/%s/latest/%s", r.baseURL, r.apiKey, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", models.ErrUnavailable)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		logger.Warn("Fiat rate request failed",
			logger.String("symbol", symbol),
			logger.ErrorField(err),
		)
		return 0, fmt.Errorf("request failed: %w", models.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d: %w", resp.StatusCode, models.ErrUnavailable)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("malformed response: %w", models.ErrUnavailable)
	}

	rate, ok := payload.ConversionRates["USD"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no USD rate for %s: %w", symbol, models.ErrUnavailable)
	}
	return rate, nil
}
