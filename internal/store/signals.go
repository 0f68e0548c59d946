package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mohamedkhairy/pricepulse/internal/models"
)

// CreateTradeSignal inserts an unapproved signal and returns its id
func (s *Store) CreateTradeSignal(ctx context.Context, sig *models.TradeSignal) (int64, error) {
	createdAt := sig.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO trade_signals (user_id, symbol, direction, entry_price, stop_loss, take_profit, created_at, approved) VALUES (?, ?, ?, ?, ?, ?, ?, 0)",
		sig.SubmitterID, sig.Symbol, sig.Direction, sig.EntryPrice, sig.StopLoss, sig.TakeProfit, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create trade signal: %w", err)
	}
	return res.LastInsertId()
}

// GetTradeSignal loads one signal by id
func (s *Store) GetTradeSignal(ctx context.Context, id int64) (*models.TradeSignal, error) {
	var sig models.TradeSignal
	err := s.db.GetContext(ctx, &sig,
		"SELECT id, user_id, symbol, direction, entry_price, stop_loss, take_profit, created_at, approved FROM trade_signals WHERE id = ?",
		id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trade signal: %w", err)
	}
	return &sig, nil
}

// ListPendingSignals returns up to limit unapproved signals, oldest first
func (s *Store) ListPendingSignals(ctx context.Context, limit int) ([]models.TradeSignal, error) {
	var signals []models.TradeSignal
	err := s.db.SelectContext(ctx, &signals,
		"SELECT id, user_id, symbol, direction, entry_price, stop_loss, take_profit, created_at, approved FROM trade_signals WHERE approved = 0 ORDER BY id LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending signals: %w", err)
	}
	return signals, nil
}

// ApproveTradeSignal flips the approved flag. Returns false when the
// signal was already approved or does not exist, so a second moderator
// action cannot broadcast twice.
func (s *Store) ApproveTradeSignal(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE trade_signals SET approved = 1 WHERE id = ? AND approved = 0", id)
	if err != nil {
		return false, fmt.Errorf("failed to approve trade signal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}
