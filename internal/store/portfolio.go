package store

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/pricepulse/internal/models"
)

// UpsertHolding writes a holding keyed by (user, symbol). An existing key
// is replaced outright: last write wins, quantities never accumulate.
func (s *Store) UpsertHolding(ctx context.Context, userID int64, symbol string, quantity float64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO portfolio (user_id, symbol, quantity) VALUES (?, ?, ?)",
		userID, symbol, quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}
	return nil
}

// RemoveHolding deletes one holding. Returns true iff the row existed.
func (s *Store) RemoveHolding(ctx context.Context, userID int64, symbol string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM portfolio WHERE user_id = ? AND symbol = ?", userID, symbol)
	if err != nil {
		return false, fmt.Errorf("failed to remove holding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// ResetPortfolio removes every holding owned by the user. Idempotent.
func (s *Store) ResetPortfolio(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM portfolio WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to reset portfolio: %w", err)
	}
	return nil
}

// ListHoldings returns the user's holdings
func (s *Store) ListHoldings(ctx context.Context, userID int64) ([]models.PortfolioHolding, error) {
	var holdings []models.PortfolioHolding
	err := s.db.SelectContext(ctx, &holdings,
		"SELECT user_id, symbol, quantity FROM portfolio WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

// SetLossLimit sets the loss bound while preserving any profit target
func (s *Store) SetLossLimit(ctx context.Context, userID int64, limit float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO portfolio_limits (user_id, loss_limit, profit_target)
		 VALUES (?, ?, (SELECT profit_target FROM portfolio_limits WHERE user_id = ?))`,
		userID, limit, userID)
	if err != nil {
		return fmt.Errorf("failed to set loss limit: %w", err)
	}
	return nil
}

// SetProfitTarget sets the profit bound while preserving any loss limit
func (s *Store) SetProfitTarget(ctx context.Context, userID int64, target float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO portfolio_limits (user_id, loss_limit, profit_target)
		 VALUES (?, (SELECT loss_limit FROM portfolio_limits WHERE user_id = ?), ?)`,
		userID, userID, target)
	if err != nil {
		return fmt.Errorf("failed to set profit target: %w", err)
	}
	return nil
}

// PortfolioWatch couples one user's holdings with their value bounds
type PortfolioWatch struct {
	UserID   int64
	Limit    models.PortfolioLimit
	Holdings []models.PortfolioHolding
}

// ListPortfolioWatches returns, for every user with at least one non-null
// bound, their bounds and holdings. Users without bounds are skipped.
func (s *Store) ListPortfolioWatches(ctx context.Context) ([]PortfolioWatch, error) {
	var limits []models.PortfolioLimit
	err := s.db.SelectContext(ctx, &limits,
		"SELECT user_id, loss_limit, profit_target FROM portfolio_limits WHERE loss_limit IS NOT NULL OR profit_target IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio limits: %w", err)
	}

	watches := make([]PortfolioWatch, 0, len(limits))
	for _, limit := range limits {
		holdings, err := s.ListHoldings(ctx, limit.UserID)
		if err != nil {
			return nil, err
		}
		watches = append(watches, PortfolioWatch{
			UserID:   limit.UserID,
			Limit:    limit,
			Holdings: holdings,
		})
	}
	return watches, nil
}

// ClearLossLimit nulls the loss bound after it fires (one-shot semantics)
func (s *Store) ClearLossLimit(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE portfolio_limits SET loss_limit = NULL WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to clear loss limit: %w", err)
	}
	return nil
}

// ClearProfitTarget nulls the profit bound after it fires (one-shot semantics)
func (s *Store) ClearProfitTarget(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE portfolio_limits SET profit_target = NULL WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to clear profit target: %w", err)
	}
	return nil
}
