package store

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/pricepulse/internal/models"
)

// alertTables lists the five alert tables scanned by the engine
var alertTables = []string{
	"alerts",
	"percent_alerts",
	"volume_alerts",
	"risk_alerts",
	"custom_alerts",
}

// DistinctSymbols returns the union of symbols referenced by any active
// alert row across all alert kinds. The engine fetches each exactly once
// per cycle.
func (s *Store) DistinctSymbols(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, table := range alertTables {
		var symbols []string
		query := fmt.Sprintf("SELECT DISTINCT symbol FROM %s", table)
		if err := s.db.SelectContext(ctx, &symbols, query); err != nil {
			return nil, fmt.Errorf("failed to collect symbols from %s: %w", table, err)
		}
		for _, sym := range symbols {
			seen[sym] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for sym := range seen {
		result = append(result, sym)
	}
	return result, nil
}

// deleteOwned removes one row matching both id and owner. Returns true iff
// a row was removed; false signals "not found or not yours", not an error.
func (s *Store) deleteOwned(ctx context.Context, table string, id, userID int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", table)
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// deleteByID removes one row by id regardless of owner. Used by the engine
// when consuming a fired non-repeat alert.
func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// --- Threshold alerts ---

// CreateThresholdAlert inserts a threshold alert and returns its id
func (s *Store) CreateThresholdAlert(ctx context.Context, a *models.ThresholdAlert) (int64, error) {
	if a.Symbol == "" {
		return 0, models.ErrInvalidSymbol
	}
	if !a.Condition.Valid() {
		return 0, models.ErrInvalidCondition
	}
	if a.TargetPrice <= 0 {
		return 0, models.ErrInvalidPrice
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO alerts (user_id, symbol, condition, target_price, repeat) VALUES (?, ?, ?, ?, ?)",
		a.UserID, a.Symbol, a.Condition, a.TargetPrice, a.Repeat)
	if err != nil {
		return 0, fmt.Errorf("failed to create threshold alert: %w", err)
	}
	return res.LastInsertId()
}

// ListThresholdAlerts returns every threshold alert, for the scan cycle
func (s *Store) ListThresholdAlerts(ctx context.Context) ([]models.ThresholdAlert, error) {
	var alerts []models.ThresholdAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, condition, target_price, repeat FROM alerts")
	if err != nil {
		return nil, fmt.Errorf("failed to list threshold alerts: %w", err)
	}
	return alerts, nil
}

// ListThresholdAlertsByOwner returns the user's threshold alerts
func (s *Store) ListThresholdAlertsByOwner(ctx context.Context, userID int64) ([]models.ThresholdAlert, error) {
	var alerts []models.ThresholdAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, condition, target_price, repeat FROM alerts WHERE user_id = ?",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threshold alerts: %w", err)
	}
	return alerts, nil
}

// DeleteThresholdAlert removes the alert iff it belongs to userID
func (s *Store) DeleteThresholdAlert(ctx context.Context, id, userID int64) (bool, error) {
	return s.deleteOwned(ctx, "alerts", id, userID)
}

// ConsumeThresholdAlert removes a fired non-repeat alert by id
func (s *Store) ConsumeThresholdAlert(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "alerts", id)
}

// UpdateThresholdPrice sets a new target price on an owned alert. Returns
// false when the alert does not exist or belongs to someone else.
func (s *Store) UpdateThresholdPrice(ctx context.Context, id, userID int64, price float64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE alerts SET target_price = ? WHERE id = ? AND user_id = ?",
		price, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update threshold alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// CountPersistentThresholdAlerts counts the user's repeat=true threshold
// alerts, for the free-plan persistent cap
func (s *Store) CountPersistentThresholdAlerts(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM alerts WHERE user_id = ? AND repeat = 1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count persistent alerts: %w", err)
	}
	return count, nil
}

// --- Percent-change alerts ---

// CreatePercentAlert inserts a percent-change alert and returns its id.
// BasePrice is the creation-time snapshot and is never updated afterwards.
func (s *Store) CreatePercentAlert(ctx context.Context, a *models.PercentChangeAlert) (int64, error) {
	if a.Symbol == "" {
		return 0, models.ErrInvalidSymbol
	}
	if a.BasePrice <= 0 || a.ThresholdPercent <= 0 {
		return 0, models.ErrInvalidPrice
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO percent_alerts (user_id, symbol, base_price, threshold_percent, repeat) VALUES (?, ?, ?, ?, ?)",
		a.UserID, a.Symbol, a.BasePrice, a.ThresholdPercent, a.Repeat)
	if err != nil {
		return 0, fmt.Errorf("failed to create percent alert: %w", err)
	}
	return res.LastInsertId()
}

// ListPercentAlerts returns every percent-change alert
func (s *Store) ListPercentAlerts(ctx context.Context) ([]models.PercentChangeAlert, error) {
	var alerts []models.PercentChangeAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, base_price, threshold_percent, repeat FROM percent_alerts")
	if err != nil {
		return nil, fmt.Errorf("failed to list percent alerts: %w", err)
	}
	return alerts, nil
}

// ListPercentAlertsByOwner returns the user's percent-change alerts
func (s *Store) ListPercentAlertsByOwner(ctx context.Context, userID int64) ([]models.PercentChangeAlert, error) {
	var alerts []models.PercentChangeAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, base_price, threshold_percent, repeat FROM percent_alerts WHERE user_id = ?",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list percent alerts: %w", err)
	}
	return alerts, nil
}

// DeletePercentAlert removes the alert iff it belongs to userID
func (s *Store) DeletePercentAlert(ctx context.Context, id, userID int64) (bool, error) {
	return s.deleteOwned(ctx, "percent_alerts", id, userID)
}

// ConsumePercentAlert removes a fired non-repeat alert by id
func (s *Store) ConsumePercentAlert(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "percent_alerts", id)
}

// --- Volume-spike alerts ---

// CreateVolumeAlert inserts a volume-spike alert and returns its id
func (s *Store) CreateVolumeAlert(ctx context.Context, a *models.VolumeSpikeAlert) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO volume_alerts (user_id, symbol, multiplier, repeat) VALUES (?, ?, ?, ?)",
		a.UserID, a.Symbol, a.Multiplier, a.Repeat)
	if err != nil {
		return 0, fmt.Errorf("failed to create volume alert: %w", err)
	}
	return res.LastInsertId()
}

// ListVolumeAlerts returns every volume-spike alert
func (s *Store) ListVolumeAlerts(ctx context.Context) ([]models.VolumeSpikeAlert, error) {
	var alerts []models.VolumeSpikeAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, multiplier, repeat FROM volume_alerts")
	if err != nil {
		return nil, fmt.Errorf("failed to list volume alerts: %w", err)
	}
	return alerts, nil
}

// ListVolumeAlertsByOwner returns the user's volume-spike alerts
func (s *Store) ListVolumeAlertsByOwner(ctx context.Context, userID int64) ([]models.VolumeSpikeAlert, error) {
	var alerts []models.VolumeSpikeAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, multiplier, repeat FROM volume_alerts WHERE user_id = ?",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list volume alerts: %w", err)
	}
	return alerts, nil
}

// DeleteVolumeAlert removes the alert iff it belongs to userID
func (s *Store) DeleteVolumeAlert(ctx context.Context, id, userID int64) (bool, error) {
	return s.deleteOwned(ctx, "volume_alerts", id, userID)
}

// ConsumeVolumeAlert removes a fired non-repeat alert by id
func (s *Store) ConsumeVolumeAlert(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "volume_alerts", id)
}

// --- Risk alerts ---

// CreateRiskAlert inserts a stop-loss/take-profit alert and returns its id
func (s *Store) CreateRiskAlert(ctx context.Context, a *models.RiskAlert) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO risk_alerts (user_id, symbol, stop_price, take_price, repeat) VALUES (?, ?, ?, ?, ?)",
		a.UserID, a.Symbol, a.StopPrice, a.TakePrice, a.Repeat)
	if err != nil {
		return 0, fmt.Errorf("failed to create risk alert: %w", err)
	}
	return res.LastInsertId()
}

// ListRiskAlerts returns every risk alert
func (s *Store) ListRiskAlerts(ctx context.Context) ([]models.RiskAlert, error) {
	var alerts []models.RiskAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, stop_price, take_price, repeat FROM risk_alerts")
	if err != nil {
		return nil, fmt.Errorf("failed to list risk alerts: %w", err)
	}
	return alerts, nil
}

// ListRiskAlertsByOwner returns the user's risk alerts
func (s *Store) ListRiskAlertsByOwner(ctx context.Context, userID int64) ([]models.RiskAlert, error) {
	var alerts []models.RiskAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, stop_price, take_price, repeat FROM risk_alerts WHERE user_id = ?",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk alerts: %w", err)
	}
	return alerts, nil
}

// DeleteRiskAlert removes the alert iff it belongs to userID
func (s *Store) DeleteRiskAlert(ctx context.Context, id, userID int64) (bool, error) {
	return s.deleteOwned(ctx, "risk_alerts", id, userID)
}

// ConsumeRiskAlert removes a fired non-repeat alert by id
func (s *Store) ConsumeRiskAlert(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "risk_alerts", id)
}

// --- Custom alerts ---

// CreateCustomAlert inserts a price+indicator alert and returns its id
func (s *Store) CreateCustomAlert(ctx context.Context, a *models.CustomAlert) (int64, error) {
	if a.Symbol == "" {
		return 0, models.ErrInvalidSymbol
	}
	if !a.PriceCondition.Valid() {
		return 0, models.ErrInvalidCondition
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO custom_alerts (user_id, symbol, price_condition, price_value, indicator_condition, indicator_value, repeat) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.UserID, a.Symbol, a.PriceCondition, a.PriceValue, a.IndicatorCond, a.IndicatorValue, a.Repeat)
	if err != nil {
		return 0, fmt.Errorf("failed to create custom alert: %w", err)
	}
	return res.LastInsertId()
}

// ListCustomAlerts returns every custom alert
func (s *Store) ListCustomAlerts(ctx context.Context) ([]models.CustomAlert, error) {
	var alerts []models.CustomAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, price_condition, price_value, indicator_condition, indicator_value, repeat FROM custom_alerts")
	if err != nil {
		return nil, fmt.Errorf("failed to list custom alerts: %w", err)
	}
	return alerts, nil
}

// ListCustomAlertsByOwner returns the user's custom alerts
func (s *Store) ListCustomAlertsByOwner(ctx context.Context, userID int64) ([]models.CustomAlert, error) {
	var alerts []models.CustomAlert
	err := s.db.SelectContext(ctx, &alerts,
		"SELECT id, user_id, symbol, price_condition, price_value, indicator_condition, indicator_value, repeat FROM custom_alerts WHERE user_id = ?",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom alerts: %w", err)
	}
	return alerts, nil
}

// DeleteCustomAlert removes the alert iff it belongs to userID
func (s *Store) DeleteCustomAlert(ctx context.Context, id, userID int64) (bool, error) {
	return s.deleteOwned(ctx, "custom_alerts", id, userID)
}

// ConsumeCustomAlert removes a fired non-repeat alert by id
func (s *Store) ConsumeCustomAlert(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "custom_alerts", id)
}

// --- Bulk operations ---

// CountAlerts returns the total number of alert rows owned by the user
// across every kind
func (s *Store) CountAlerts(ctx context.Context, userID int64) (int, error) {
	total := 0
	for _, table := range alertTables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = ?", table)
		if err := s.db.GetContext(ctx, &count, query, userID); err != nil {
			return 0, fmt.Errorf("failed to count alerts in %s: %w", table, err)
		}
		total += count
	}
	return total, nil
}

// DeleteAllAlerts removes every alert of every kind owned by the user.
// Idempotent. Empty tables get their id sequence reset.
func (s *Store) DeleteAllAlerts(ctx context.Context, userID int64) error {
	for _, table := range alertTables {
		query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", table)
		if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		s.resetSequence(ctx, table)
	}
	return nil
}
