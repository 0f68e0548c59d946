package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/pricepulse/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestThresholdAlert_CreateListDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{
		UserID:      1,
		Symbol:      "BTC",
		Condition:   models.Above,
		TargetPrice: 70000,
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	alerts, err := s.ListThresholdAlertsByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "BTC", alerts[0].Symbol)
	assert.Equal(t, models.Above, alerts[0].Condition)
	assert.False(t, alerts[0].Repeat)

	removed, err := s.DeleteThresholdAlert(ctx, id, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	// Second delete is "not found", not an error
	removed, err = s.DeleteThresholdAlert(ctx, id, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDelete_OwnershipIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{
		UserID:      1,
		Symbol:      "BTC",
		Condition:   models.Below,
		TargetPrice: 50000,
	})
	require.NoError(t, err)

	// User 2 cannot delete user 1's alert
	removed, err := s.DeleteThresholdAlert(ctx, id, 2)
	require.NoError(t, err)
	assert.False(t, removed)

	// The alert is still there for its owner
	alerts, err := s.ListThresholdAlertsByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestDistinctSymbols_UnionAcrossKinds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{UserID: 1, Symbol: "BTC", Condition: models.Above, TargetPrice: 1})
	require.NoError(t, err)
	_, err = s.CreateThresholdAlert(ctx, &models.ThresholdAlert{UserID: 2, Symbol: "BTC", Condition: models.Below, TargetPrice: 2})
	require.NoError(t, err)
	_, err = s.CreatePercentAlert(ctx, &models.PercentChangeAlert{UserID: 1, Symbol: "ETH", BasePrice: 100, ThresholdPercent: 5})
	require.NoError(t, err)
	_, err = s.CreateVolumeAlert(ctx, &models.VolumeSpikeAlert{UserID: 1, Symbol: "SOL", Multiplier: 2})
	require.NoError(t, err)
	_, err = s.CreateRiskAlert(ctx, &models.RiskAlert{UserID: 1, Symbol: "ETH", StopPrice: 1, TakePrice: 2})
	require.NoError(t, err)

	symbols, err := s.DistinctSymbols(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BTC", "ETH", "SOL"}, symbols)
}

func TestDeleteAllAlerts_ClearsEveryKindAndResetsSequence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{UserID: 1, Symbol: "BTC", Condition: models.Above, TargetPrice: 1})
	require.NoError(t, err)
	_, err = s.CreateCustomAlert(ctx, &models.CustomAlert{UserID: 1, Symbol: "BTC", PriceCondition: models.Above, PriceValue: 1, IndicatorCond: "macd"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAllAlerts(ctx, 1))

	count, err := s.CountAlerts(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Sequence was reset: the next insert starts from 1 again
	id, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{UserID: 1, Symbol: "BTC", Condition: models.Above, TargetPrice: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestDeleteAllAlerts_LeavesOtherUsersAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRiskAlert(ctx, &models.RiskAlert{UserID: 1, Symbol: "BTC", StopPrice: 1, TakePrice: 2})
	require.NoError(t, err)
	_, err = s.CreateRiskAlert(ctx, &models.RiskAlert{UserID: 2, Symbol: "ETH", StopPrice: 1, TakePrice: 2})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAllAlerts(ctx, 1))

	alerts, err := s.ListRiskAlertsByOwner(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestUpdateThresholdPrice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{UserID: 1, Symbol: "BTC", Condition: models.Above, TargetPrice: 60000})
	require.NoError(t, err)

	ok, err := s.UpdateThresholdPrice(ctx, id, 1, 65000)
	require.NoError(t, err)
	assert.True(t, ok)

	alerts, err := s.ListThresholdAlertsByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 65000.0, alerts[0].TargetPrice)

	// Wrong owner cannot edit
	ok, err = s.UpdateThresholdPrice(ctx, id, 2, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrCreateUser_LazyDailyReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	user, err := s.GetOrCreateUser(ctx, 42, day1)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.Zero(t, user.AlertsUsed)

	require.NoError(t, s.IncrementDailyCount(ctx, 42))
	require.NoError(t, s.IncrementDailyCount(ctx, 42))

	user, err = s.GetOrCreateUser(ctx, 42, day1)
	require.NoError(t, err)
	assert.Equal(t, 2, user.AlertsUsed)

	// A new calendar day resets the counter before it is read
	day2 := day1.Add(24 * time.Hour)
	user, err = s.GetOrCreateUser(ctx, 42, day2)
	require.NoError(t, err)
	assert.Zero(t, user.AlertsUsed)
	assert.Equal(t, "2025-06-02", user.LastReset)
}

func TestSetPlan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetOrCreateUser(ctx, 7, time.Now())
	require.NoError(t, err)

	require.NoError(t, s.SetPlan(ctx, 7, models.PlanPro))

	user, err := s.GetOrCreateUser(ctx, 7, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, user.Plan)

	assert.ErrorIs(t, s.SetPlan(ctx, 7, models.Plan("gold")), models.ErrInvalidPlan)
}

func TestUpsertHolding_LastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertHolding(ctx, 1, "BTC", 0.5))
	require.NoError(t, s.UpsertHolding(ctx, 1, "BTC", 2.0))

	holdings, err := s.ListHoldings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 2.0, holdings[0].Quantity) // replaced, not accumulated
}

func TestPortfolioLimits_BoundsPreserveEachOther(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetLossLimit(ctx, 1, 10000))
	require.NoError(t, s.SetProfitTarget(ctx, 1, 30000))

	watches, err := s.ListPortfolioWatches(ctx)
	require.NoError(t, err)
	require.Len(t, watches, 1)
	assert.Equal(t, sql.NullFloat64{Float64: 10000, Valid: true}, watches[0].Limit.LossLimit)
	assert.Equal(t, sql.NullFloat64{Float64: 30000, Valid: true}, watches[0].Limit.ProfitTarget)

	// Clearing one bound leaves the other in place
	require.NoError(t, s.ClearLossLimit(ctx, 1))
	watches, err = s.ListPortfolioWatches(ctx)
	require.NoError(t, err)
	require.Len(t, watches, 1)
	assert.False(t, watches[0].Limit.LossLimit.Valid)
	assert.True(t, watches[0].Limit.ProfitTarget.Valid)

	// Both cleared: the user drops out of the watch list
	require.NoError(t, s.ClearProfitTarget(ctx, 1))
	watches, err = s.ListPortfolioWatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, watches)
}

func TestTradeSignal_ApproveOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateTradeSignal(ctx, &models.TradeSignal{
		SubmitterID: 5,
		Symbol:      "BTC",
		Direction:   "LONG",
		EntryPrice:  68000,
		StopLoss:    sql.NullFloat64{Float64: 65000, Valid: true},
	})
	require.NoError(t, err)

	pending, err := s.ListPendingSignals(ctx, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.False(t, pending[0].Approved)

	ok, err := s.ApproveTradeSignal(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second approval is a no-op, preventing a double broadcast
	ok, err = s.ApproveTradeSignal(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	pending, err = s.ListPendingSignals(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, pending)

	sig, err := s.GetTradeSignal(ctx, id)
	require.NoError(t, err)
	assert.True(t, sig.Approved)

	_, err = s.GetTradeSignal(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCountPersistentThresholdAlerts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{UserID: 1, Symbol: "BTC", Condition: models.Above, TargetPrice: 1, Repeat: true})
	require.NoError(t, err)
	_, err = s.CreateThresholdAlert(ctx, &models.ThresholdAlert{UserID: 1, Symbol: "ETH", Condition: models.Above, TargetPrice: 1})
	require.NoError(t, err)

	count, err := s.CountPersistentThresholdAlerts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateThresholdAlert_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateThresholdAlert(ctx, &models.ThresholdAlert{
		UserID: 1, Condition: models.Above, TargetPrice: 100,
	})
	assert.ErrorIs(t, err, models.ErrInvalidSymbol)

	_, err = s.CreateThresholdAlert(ctx, &models.ThresholdAlert{
		UserID: 1, Symbol: "BTC", Condition: "above", TargetPrice: 100,
	})
	assert.ErrorIs(t, err, models.ErrInvalidCondition)

	_, err = s.CreateThresholdAlert(ctx, &models.ThresholdAlert{
		UserID: 1, Symbol: "BTC", Condition: models.Above, TargetPrice: 0,
	})
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}

func TestCreatePercentAlert_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePercentAlert(ctx, &models.PercentChangeAlert{
		UserID: 1, Symbol: "BTC", BasePrice: 0, ThresholdPercent: 5,
	})
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}
