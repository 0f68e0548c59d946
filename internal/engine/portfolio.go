package engine

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/pricepulse/internal/models"
	"github.com/mohamedkhairy/pricepulse/internal/store"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// evaluatePortfolios values each watched portfolio and fires at most one
// bound per user per cycle, loss limit first. A fired bound is cleared
// whether or not delivery succeeded.
func (e *Engine) evaluatePortfolios(ctx context.Context, cyc *cycleData) {
	watches, err := e.store.ListPortfolioWatches(ctx)
	if err != nil {
		logger.Error("Failed to list portfolio watches", logger.ErrorField(err))
		return
	}

	for _, w := range watches {
		total, ok := e.portfolioValue(ctx, cyc, w)
		if !ok {
			// a single unpriceable holding makes the total meaningless,
			// so the whole user is skipped this cycle
			continue
		}

		switch {
		case w.Limit.LossLimit.Valid && total <= w.Limit.LossLimit.Float64:
			text := fmt.Sprintf("⚠️ *Portfolio Loss Alert*\nYour total value dropped to $%.2f.\nLoss limit was: $%.2f",
				total, w.Limit.LossLimit.Float64)
			e.notifyUser(ctx, cyc, models.KindPortfolio, w.UserID, text)
			if err := e.store.ClearLossLimit(ctx, w.UserID); err != nil {
				logger.Error("Failed to clear loss limit",
					logger.Int64("user_id", w.UserID),
					logger.ErrorField(err),
				)
			}

		case w.Limit.ProfitTarget.Valid && total >= w.Limit.ProfitTarget.Float64:
			text := fmt.Sprintf("🎯 *Portfolio Target Reached*\nYour total value is now $%.2f.\nTarget goal was: $%.2f",
				total, w.Limit.ProfitTarget.Float64)
			e.notifyUser(ctx, cyc, models.KindPortfolio, w.UserID, text)
			if err := e.store.ClearProfitTarget(ctx, w.UserID); err != nil {
				logger.Error("Failed to clear profit target",
					logger.Int64("user_id", w.UserID),
					logger.ErrorField(err),
				)
			}
		}
	}
}

// portfolioValue sums quantity times USD price over the user's holdings.
// Prices fetched for alerts this cycle are reused; other symbols are
// fetched as crypto first, then as fiat. The bool is false when any
// holding could not be priced.
func (e *Engine) portfolioValue(ctx context.Context, cyc *cycleData, w store.PortfolioWatch) (float64, bool) {
	var total float64
	for _, h := range w.Holdings {
		price, err := e.holdingPrice(ctx, cyc, h.Symbol)
		if err != nil {
			logger.Warn("Holding unpriceable, skipping portfolio this cycle",
				logger.Int64("user_id", w.UserID),
				logger.String("symbol", h.Symbol),
				logger.ErrorField(err),
			)
			return 0, false
		}
		total += h.Quantity * price
	}
	return total, true
}

func (e *Engine) holdingPrice(ctx context.Context, cyc *cycleData, symbol string) (float64, error) {
	if price, ok := cyc.prices[symbol]; ok {
		return price, nil
	}

	price, err := e.gateway.Price(ctx, symbol)
	if err == nil {
		cyc.prices[symbol] = price
		return price, nil
	}

	// not a crypto symbol the provider knows; try it as a fiat currency
	rate, rateErr := e.gateway.FiatUSD(ctx, symbol)
	if rateErr != nil {
		return 0, err
	}
	cyc.prices[symbol] = rate
	return rate, nil
}
