package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mohamedkhairy/pricepulse/internal/models"
	"github.com/mohamedkhairy/pricepulse/pkg/indicator"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

func (e *Engine) evaluateThresholdAlerts(ctx context.Context, cyc *cycleData) {
	alerts, err := e.store.ListThresholdAlerts(ctx)
	if err != nil {
		logger.Error("Failed to list threshold alerts", logger.ErrorField(err))
		return
	}

	for _, a := range alerts {
		price, ok := cyc.prices[a.Symbol]
		if !ok {
			continue
		}
		if !a.Condition.Holds(price, a.TargetPrice) {
			continue
		}

		text := fmt.Sprintf("🔔 *Price Alert: %s*\nCurrent price: $%.2f %s %v",
			a.Symbol, price, a.Condition, a.TargetPrice)
		e.notifyUser(ctx, cyc, models.KindThreshold, a.UserID, text)
		id := a.ID
		e.consume(ctx, a.Repeat, func(ctx context.Context) error {
			return e.store.ConsumeThresholdAlert(ctx, id)
		})
	}
}

func (e *Engine) evaluatePercentAlerts(ctx context.Context, cyc *cycleData) {
	alerts, err := e.store.ListPercentAlerts(ctx)
	if err != nil {
		logger.Error("Failed to list percent alerts", logger.ErrorField(err))
		return
	}

	for _, a := range alerts {
		price, ok := cyc.prices[a.Symbol]
		if !ok || a.BasePrice == 0 {
			continue
		}
		change := (price - a.BasePrice) / a.BasePrice * 100
		magnitude := change
		if magnitude < 0 {
			magnitude = -magnitude
		}
		if magnitude < a.ThresholdPercent {
			continue
		}

		text := fmt.Sprintf("📉 *%% Alert for %s*\nChange: %.2f%% from $%.2f\nNow: $%.2f",
			a.Symbol, change, a.BasePrice, price)
		e.notifyUser(ctx, cyc, models.KindPercentChange, a.UserID, text)
		id := a.ID
		e.consume(ctx, a.Repeat, func(ctx context.Context) error {
			return e.store.ConsumePercentAlert(ctx, id)
		})
	}
}

func (e *Engine) evaluateVolumeAlerts(ctx context.Context, cyc *cycleData) {
	alerts, err := e.store.ListVolumeAlerts(ctx)
	if err != nil {
		logger.Error("Failed to list volume alerts", logger.ErrorField(err))
		return
	}

	for _, a := range alerts {
		if _, ok := cyc.prices[a.Symbol]; !ok {
			continue
		}
		candles, ok := e.candlesFor(ctx, cyc, a.Symbol)
		if !ok || len(candles) < e.cfg.VolumeLookback {
			continue
		}

		window := candles[len(candles)-e.cfg.VolumeLookback:]
		latest := window[len(window)-1].Volume
		var sum float64
		for _, c := range window[:len(window)-1] {
			sum += c.Volume
		}
		avg := sum / float64(len(window)-1)
		if avg <= 0 || latest <= a.Multiplier*avg {
			continue
		}

		text := fmt.Sprintf("📊 *Volume Spike: %s*\nLatest volume %.0f is over %.1fx the recent average (%.0f)",
			a.Symbol, latest, a.Multiplier, avg)
		e.notifyUser(ctx, cyc, models.KindVolumeSpike, a.UserID, text)
		id := a.ID
		e.consume(ctx, a.Repeat, func(ctx context.Context) error {
			return e.store.ConsumeVolumeAlert(ctx, id)
		})
	}
}

func (e *Engine) evaluateRiskAlerts(ctx context.Context, cyc *cycleData) {
	alerts, err := e.store.ListRiskAlerts(ctx)
	if err != nil {
		logger.Error("Failed to list risk alerts", logger.ErrorField(err))
		return
	}

	for _, a := range alerts {
		price, ok := cyc.prices[a.Symbol]
		if !ok {
			continue
		}
		if price > a.StopPrice && price < a.TakePrice {
			continue
		}

		text := fmt.Sprintf("🛑 *Risk Alert for %s*\nPrice hit $%.2f.\nSL: %v, TP: %v",
			a.Symbol, price, a.StopPrice, a.TakePrice)
		e.notifyUser(ctx, cyc, models.KindRisk, a.UserID, text)
		id := a.ID
		e.consume(ctx, a.Repeat, func(ctx context.Context) error {
			return e.store.ConsumeRiskAlert(ctx, id)
		})
	}
}

func (e *Engine) evaluateCustomAlerts(ctx context.Context, cyc *cycleData) {
	alerts, err := e.store.ListCustomAlerts(ctx)
	if err != nil {
		logger.Error("Failed to list custom alerts", logger.ErrorField(err))
		return
	}

	for _, a := range alerts {
		price, ok := cyc.prices[a.Symbol]
		if !ok {
			continue
		}
		if !a.PriceCondition.Holds(price, a.PriceValue) {
			continue
		}
		if !e.indicatorHolds(ctx, cyc, a, price) {
			continue
		}

		text := fmt.Sprintf("🧠 *Custom Alert for %s*\nPrice: $%.2f (%s%v) ✅\nIndicator: `%s` ✅",
			a.Symbol, price, a.PriceCondition, a.PriceValue, describeIndicator(a))
		e.notifyUser(ctx, cyc, models.KindCustom, a.UserID, text)
		id := a.ID
		e.consume(ctx, a.Repeat, func(ctx context.Context) error {
			return e.store.ConsumeCustomAlert(ctx, id)
		})
	}
}

// indicatorHolds evaluates the second leg of a custom alert. An
// unrecognized encoding or an unavailable indicator never fires.
func (e *Engine) indicatorHolds(ctx context.Context, cyc *cycleData, a models.CustomAlert, price float64) bool {
	closes, ok := e.closesFor(ctx, cyc, a.Symbol)
	if !ok {
		return false
	}

	switch {
	case a.IndicatorCond == string(models.Above) || a.IndicatorCond == string(models.Below):
		rsi, err := cyc.indicators.RSI(a.Symbol, closes, e.rsiPeriod())
		if err != nil {
			if !indicatorUnavailable(err) {
				logger.Error("RSI evaluation failed",
					logger.String("symbol", a.Symbol),
					logger.ErrorField(err),
				)
			}
			return false
		}
		return models.Condition(a.IndicatorCond).Holds(rsi, a.IndicatorValue)

	case a.IndicatorCond == models.IndicatorMACDBullish:
		result, err := cyc.indicators.MACD(a.Symbol, closes)
		if err != nil {
			return false
		}
		return result.Histogram > 0

	case strings.HasPrefix(a.IndicatorCond, models.IndicatorEMAPrefix):
		period, err := strconv.Atoi(strings.TrimPrefix(a.IndicatorCond, models.IndicatorEMAPrefix))
		if err != nil || period <= 0 {
			logger.Warn("Unparseable EMA condition",
				logger.String("condition", a.IndicatorCond),
				logger.Int64("alert_id", a.ID),
			)
			return false
		}
		ema, err := cyc.indicators.EMA(a.Symbol, closes, period)
		if err != nil {
			return false
		}
		return price > ema
	}

	logger.Warn("Unknown indicator condition",
		logger.String("condition", a.IndicatorCond),
		logger.Int64("alert_id", a.ID),
	)
	return false
}

// rsiPeriod is fixed for custom alert evaluation
func (e *Engine) rsiPeriod() int {
	return indicator.DefaultRSIPeriod
}

func describeIndicator(a models.CustomAlert) string {
	switch {
	case a.IndicatorCond == string(models.Above), a.IndicatorCond == string(models.Below):
		return fmt.Sprintf("rsi %s %v", a.IndicatorCond, a.IndicatorValue)
	case a.IndicatorCond == models.IndicatorMACDBullish:
		return "macd bullish"
	default:
		return a.IndicatorCond
	}
}
