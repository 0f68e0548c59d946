package market

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/pricepulse/internal/config"
	"github.com/mohamedkhairy/pricepulse/internal/models"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Gateway is the narrow interface the engine and API consume. All methods
// degrade to models.ErrUnavailable on upstream failure.
type Gateway interface {
	// Price returns the current USD price for a symbol
	Price(ctx context.Context, symbol string) (float64, error)

	// Candles returns up to limit hourly candles, oldest first
	Candles(ctx context.Context, symbol string, limit int) ([]models.Candle, error)

	// FiatUSD returns the USD value of one unit of a fiat currency
	FiatUSD(ctx context.Context, symbol string) (float64, error)

	// TopMarket returns the top-n market-cap snapshot
	TopMarket(ctx context.Context, n int) ([]models.MarketEntry, error)

	// News returns current headlines
	News(ctx context.Context) ([]models.NewsItem, error)
}

// CachedGateway fronts the provider clients with a TTL cache so repeated
// lookups inside the cache window never hit the network
type CachedGateway struct {
	client *Client
	rates  *RateClient
	cache  *Cache
}

// NewCachedGateway builds the production gateway from config
func NewCachedGateway(cfg config.MarketDataConfig, clock Clock) *CachedGateway {
	return &CachedGateway{
		client: NewClient(cfg),
		rates:  NewRateClient(cfg),
		cache:  NewCache(cfg.PriceCacheTTL, cfg.CacheMaxSize, clock),
	}
}

// NewCachedGatewayWith wires explicit clients, used by tests
func NewCachedGatewayWith(client *Client, rates *RateClient, cache *Cache) *CachedGateway {
	return &CachedGateway{client: client, rates: rates, cache: cache}
}

// Price returns the cached price when fresh, otherwise fetches it. A zero
// price is treated as unavailable: it cannot be evaluated safely (it would
// poison percent-change denominators) and is never cached.
func (g *CachedGateway) Price(ctx context.Context, symbol string) (float64, error) {
	key := "price:" + symbol
	if v, ok := g.cache.Get(key); ok {
		return v.(float64), nil
	}

	price, err := g.client.Price(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		logger.Warn("Upstream returned non-positive price, treating as unavailable",
			logger.String("symbol", symbol),
			logger.Float64("price", price),
		)
		return 0, fmt.Errorf("non-positive price for %s: %w", symbol, models.ErrUnavailable)
	}

	g.cache.Set(key, price)
	return price, nil
}

// Candles fetches candle history; not TTL-cached since the engine already
// holds candles per cycle
func (g *CachedGateway) Candles(ctx context.Context, symbol string, limit int) ([]models.Candle, error) {
	return g.client.Candles(ctx, symbol, limit)
}

// FiatUSD returns the cached fiat rate when fresh, otherwise fetches it
func (g *CachedGateway) FiatUSD(ctx context.Context, symbol string) (float64, error) {
	key := "fiat:" + symbol
	if v, ok := g.cache.Get(key); ok {
		return v.(float64), nil
	}

	rate, err := g.rates.USDValue(ctx, symbol)
	if err != nil {
		return 0, err
	}
	g.cache.Set(key, rate)
	return rate, nil
}

// TopMarket returns the cached market snapshot when fresh
func (g *CachedGateway) TopMarket(ctx context.Context, n int) ([]models.MarketEntry, error) {
	key := fmt.Sprintf("top:%d", n)
	if v, ok := g.cache.Get(key); ok {
		return v.([]models.MarketEntry), nil
	}

	entries, err := g.client.TopMarket(ctx, n)
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, entries)
	return entries, nil
}

// News returns cached headlines when fresh
func (g *CachedGateway) News(ctx context.Context) ([]models.NewsItem, error) {
	const key = "news"
	if v, ok := g.cache.Get(key); ok {
		return v.([]models.NewsItem), nil
	}

	items, err := g.client.News(ctx)
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, items)
	return items, nil
}
