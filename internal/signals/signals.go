// Package signals implements the community trade-signal pipeline: paid
// users submit ideas, a moderator approves them, approval broadcasts the
// signal to the shared channel exactly once.
package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedkhairy/pricepulse/internal/models"
	"github.com/mohamedkhairy/pricepulse/internal/notify"
	"github.com/mohamedkhairy/pricepulse/internal/policy"
	"github.com/mohamedkhairy/pricepulse/internal/store"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Service coordinates submission, moderation and broadcast
type Service struct {
	store    *store.Store
	notifier notify.Notifier
	policy   *policy.Policy
	adminID  int64
}

// New creates the signal service. adminID is the only user allowed to
// approve.
func New(st *store.Store, notifier notify.Notifier, pol *policy.Policy, adminID int64) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		policy:   pol,
		adminID:  adminID,
	}
}

// Submit records a pending signal from the user. Free-plan users are
// refused with the policy's reason.
func (s *Service) Submit(ctx context.Context, sig *models.TradeSignal) (int64, error) {
	user, err := s.store.GetOrCreateUser(ctx, sig.SubmitterID, time.Now())
	if err != nil {
		return 0, err
	}

	decision, err := s.policy.CanCreate(ctx, user, models.KindSignal, false)
	if err != nil {
		return 0, err
	}
	if !decision.Allowed {
		return 0, fmt.Errorf("%s: %w", decision.Reason, models.ErrNotAuthorized)
	}

	id, err := s.store.CreateTradeSignal(ctx, sig)
	if err != nil {
		return 0, err
	}

	logger.Info("Trade signal submitted",
		logger.Int64("signal_id", id),
		logger.Int64("user_id", sig.SubmitterID),
		logger.String("symbol", sig.Symbol),
	)
	return id, nil
}

// ListPending returns up to limit signals awaiting approval
func (s *Service) ListPending(ctx context.Context, limit int) ([]models.TradeSignal, error) {
	return s.store.ListPendingSignals(ctx, limit)
}

// Approve marks the signal approved and broadcasts it. Only the admin may
// approve; approving an already-approved or unknown signal is a no-op
// error, so a signal is broadcast at most once even under double submits.
func (s *Service) Approve(ctx context.Context, moderatorID, signalID int64) error {
	if moderatorID != s.adminID {
		return fmt.Errorf("user %d may not approve signals: %w", moderatorID, models.ErrNotAuthorized)
	}

	sig, err := s.store.GetTradeSignal(ctx, signalID)
	if err != nil {
		return err
	}

	flipped, err := s.store.ApproveTradeSignal(ctx, signalID)
	if err != nil {
		return err
	}
	if !flipped {
		return fmt.Errorf("signal %d already approved: %w", signalID, models.ErrNotFound)
	}

	if err := s.notifier.Broadcast(ctx, renderSignal(sig)); err != nil {
		// approved but not delivered; the flag stays set so a retry path
		// would need to re-send manually
		logger.Error("Signal broadcast failed",
			logger.Int64("signal_id", signalID),
			logger.ErrorField(err),
		)
		return err
	}

	logger.Info("Trade signal approved and broadcast",
		logger.Int64("signal_id", signalID),
	)
	return nil
}

func renderSignal(sig *models.TradeSignal) string {
	text := fmt.Sprintf("📢 *New Trade Signal*\nPair: %s\nDirection: %s\nEntry: $%.2f",
		sig.Symbol, sig.Direction, sig.EntryPrice)
	if sig.StopLoss.Valid {
		text += fmt.Sprintf("\nSL: $%.2f", sig.StopLoss.Float64)
	}
	if sig.TakeProfit.Valid {
		text += fmt.Sprintf("\nTP: $%.2f", sig.TakeProfit.Float64)
	}
	return text
}
