package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mohamedkhairy/pricepulse/internal/models"
)

// dateOf formats a time as the stored calendar-day key
func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// GetOrCreateUser loads the user record, creating a free-plan row on first
// contact. The daily alert counter is lazily reset when the stored reset
// date is not today; the returned record is always safe for quota reads.
func (s *Store) GetOrCreateUser(ctx context.Context, userID int64, now time.Time) (*models.User, error) {
	today := dateOf(now)

	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT user_id, plan, alerts_used, last_reset FROM users WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		user = models.User{ID: userID, Plan: models.PlanFree, AlertsUsed: 0, LastReset: today}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO users (user_id, plan, alerts_used, last_reset) VALUES (?, ?, 0, ?)",
			userID, models.PlanFree, today)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.LastReset != today {
		_, err = s.db.ExecContext(ctx,
			"UPDATE users SET alerts_used = 0, last_reset = ? WHERE user_id = ?",
			today, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to reset daily counter: %w", err)
		}
		user.AlertsUsed = 0
		user.LastReset = today
	}

	return &user, nil
}

// SetPlan assigns a plan tier to the user (admin action)
func (s *Store) SetPlan(ctx context.Context, userID int64, plan models.Plan) error {
	if !plan.Valid() {
		return models.ErrInvalidPlan
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET plan = ? WHERE user_id = ?", plan, userID)
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	return nil
}

// IncrementDailyCount bumps the user's daily alert counter. Called after a
// free-plan alert creation succeeds.
func (s *Store) IncrementDailyCount(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET alerts_used = alerts_used + 1 WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to increment daily counter: %w", err)
	}
	return nil
}
