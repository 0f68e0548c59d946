// Package engine implements the evaluation core: a fixed-interval scan
// that fetches each watched symbol at most once, evaluates every active
// alert against the snapshot, delivers notifications and consumes fired
// non-repeat alerts. A cycle is best-effort: a missing price or a failed
// delivery suppresses only the alerts it touches, never the cycle.
package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohamedkhairy/pricepulse/internal/config"
	"github.com/mohamedkhairy/pricepulse/internal/market"
	"github.com/mohamedkhairy/pricepulse/internal/metrics"
	"github.com/mohamedkhairy/pricepulse/internal/models"
	"github.com/mohamedkhairy/pricepulse/internal/notify"
	"github.com/mohamedkhairy/pricepulse/internal/policy"
	"github.com/mohamedkhairy/pricepulse/internal/store"
	"github.com/mohamedkhairy/pricepulse/pkg/indicator"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Engine evaluates all active alerts against market data once per cycle
type Engine struct {
	store    *store.Store
	gateway  market.Gateway
	notifier notify.Notifier
	caps     policy.CapabilityTable
	cfg      config.EngineConfig

	// mu serializes cycles so two overlapping runs cannot evaluate and
	// consume the same alert twice
	mu sync.Mutex

	stats   Stats
	statsMu sync.RWMutex
}

// Stats holds counters describing engine activity
type Stats struct {
	Cycles            int64         `json:"cycles"`
	LastCycleDuration time.Duration `json:"last_cycle_duration"`
	LastSymbols       int           `json:"last_symbols"`
	AlertsFired       int64         `json:"alerts_fired"`
	DeliveryFailures  int64         `json:"delivery_failures"`
}

// New creates an engine over the given collaborators
func New(st *store.Store, gw market.Gateway, notifier notify.Notifier, caps policy.CapabilityTable, cfg config.EngineConfig) *Engine {
	return &Engine{
		store:    st,
		gateway:  gw,
		notifier: notifier,
		caps:     caps,
		cfg:      cfg,
	}
}

// GetStats returns a copy of the engine's counters
func (e *Engine) GetStats() Stats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.stats
}

// cycleData holds everything fetched or computed during one cycle. Prices
// hold only symbols that were successfully fetched; candle fetches and
// indicator results are memoized so multiple alerts share one computation.
type cycleData struct {
	prices     map[string]float64
	candles    map[string][]models.Candle
	candleFail map[string]bool
	indicators *indicator.CycleCache
	fired      int64
	failures   int64
}

// RunCycle performs one full evaluation pass. Safe to call concurrently;
// overlapping calls are serialized.
func (e *Engine) RunCycle(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	cycleID := uuid.NewString()[:8]

	// Collecting: union the distinct symbols across all alert kinds and
	// fetch each price exactly once
	symbols, err := e.store.DistinctSymbols(ctx)
	if err != nil {
		logger.Error("Failed to collect alert symbols",
			logger.String("cycle", cycleID),
			logger.ErrorField(err),
		)
		return
	}

	cyc := &cycleData{
		prices:     make(map[string]float64, len(symbols)),
		candles:    make(map[string][]models.Candle),
		candleFail: make(map[string]bool),
		indicators: indicator.NewCycleCache(),
	}

	for _, symbol := range symbols {
		price, err := e.gateway.Price(ctx, symbol)
		if err != nil {
			metrics.PriceFetches.WithLabelValues("error").Inc()
			logger.Warn("Price unavailable, skipping symbol this cycle",
				logger.String("cycle", cycleID),
				logger.String("symbol", symbol),
				logger.ErrorField(err),
			)
			continue
		}
		metrics.PriceFetches.WithLabelValues("ok").Inc()
		cyc.prices[symbol] = price
	}

	metrics.ActiveSymbols.Set(float64(len(symbols)))

	// Evaluating and notifying, kind by kind
	if e.caps.Enabled(models.KindThreshold) {
		e.evaluateThresholdAlerts(ctx, cyc)
	}
	if e.caps.Enabled(models.KindPercentChange) {
		e.evaluatePercentAlerts(ctx, cyc)
	}
	if e.caps.Enabled(models.KindVolumeSpike) {
		e.evaluateVolumeAlerts(ctx, cyc)
	}
	if e.caps.Enabled(models.KindRisk) {
		e.evaluateRiskAlerts(ctx, cyc)
	}
	if e.caps.Enabled(models.KindCustom) {
		e.evaluateCustomAlerts(ctx, cyc)
	}

	e.evaluatePortfolios(ctx, cyc)

	duration := time.Since(start)
	metrics.ScanCycles.Inc()
	metrics.CycleDuration.Observe(duration.Seconds())

	e.statsMu.Lock()
	e.stats.Cycles++
	e.stats.LastCycleDuration = duration
	e.stats.LastSymbols = len(symbols)
	e.stats.AlertsFired += cyc.fired
	e.stats.DeliveryFailures += cyc.failures
	e.statsMu.Unlock()

	logger.Info("Evaluation cycle complete",
		logger.String("cycle", cycleID),
		logger.Int("symbols", len(symbols)),
		logger.Int64("fired", cyc.fired),
		logger.Int64("delivery_failures", cyc.failures),
		logger.Duration("duration", duration),
	)
}

// candlesFor returns the cycle's candle history for a symbol, fetching it
// on first use. A failed fetch is remembered so a symbol is tried at most
// once per cycle.
func (e *Engine) candlesFor(ctx context.Context, cyc *cycleData, symbol string) ([]models.Candle, bool) {
	if candles, ok := cyc.candles[symbol]; ok {
		return candles, true
	}
	if cyc.candleFail[symbol] {
		return nil, false
	}

	candles, err := e.gateway.Candles(ctx, symbol, e.cfg.CandleHistory)
	if err != nil {
		logger.Warn("Candle history unavailable this cycle",
			logger.String("symbol", symbol),
			logger.ErrorField(err),
		)
		cyc.candleFail[symbol] = true
		return nil, false
	}
	cyc.candles[symbol] = candles
	return candles, true
}

// closesFor returns the closing price series for a symbol, oldest first
func (e *Engine) closesFor(ctx context.Context, cyc *cycleData, symbol string) ([]float64, bool) {
	candles, ok := e.candlesFor(ctx, cyc, symbol)
	if !ok {
		return nil, false
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes, true
}

// notifyUser renders delivery for one recipient, isolating failures.
// Returns whether delivery succeeded; the caller consumes the alert either
// way, since firing is decided by the predicate, not the delivery.
func (e *Engine) notifyUser(ctx context.Context, cyc *cycleData, kind models.AlertKind, userID int64, text string) {
	cyc.fired++
	metrics.AlertsFired.WithLabelValues(string(kind)).Inc()

	if err := e.notifier.Send(ctx, strconv.FormatInt(userID, 10), text); err != nil {
		cyc.failures++
		metrics.DeliveryFailures.Inc()
		logger.Warn("Notification delivery failed",
			logger.String("kind", string(kind)),
			logger.Int64("user_id", userID),
			logger.ErrorField(err),
		)
	}
}

// consume deletes a fired non-repeat alert; repeat alerts stay in place
// and may fire again next cycle
func (e *Engine) consume(ctx context.Context, repeat bool, del func(context.Context) error) {
	if repeat {
		return
	}
	if err := del(ctx); err != nil {
		logger.Error("Failed to consume fired alert",
			logger.ErrorField(err),
		)
	}
}

// indicatorUnavailable reports whether an indicator error means "not
// enough data or upstream gone", which suppresses evaluation silently
func indicatorUnavailable(err error) bool {
	return errors.Is(err, indicator.ErrInsufficientData) || errors.Is(err, models.ErrUnavailable)
}
