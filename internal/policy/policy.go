// Package policy gates alert creation by plan tier. Decisions are
// advisory and consulted at creation time only; the evaluation engine
// never asks. A denial is a first-class outcome, not an error.
package policy

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/pricepulse/internal/models"
)

// Capability describes one alert kind: whether the engine evaluates it at
// all and the minimum plan required to create it
type Capability struct {
	Enabled      bool
	PlanRequired models.Plan
}

// CapabilityTable parametrizes the engine and the policy per alert kind,
// replacing per-deployment bot variants with configuration
type CapabilityTable map[models.AlertKind]Capability

// DefaultCapabilities returns the standard deployment: threshold alerts
// open to everyone, the richer kinds reserved for paid plans
func DefaultCapabilities() CapabilityTable {
	return CapabilityTable{
		models.KindThreshold:     {Enabled: true, PlanRequired: models.PlanFree},
		models.KindPercentChange: {Enabled: true, PlanRequired: models.PlanPro},
		models.KindVolumeSpike:   {Enabled: true, PlanRequired: models.PlanPro},
		models.KindRisk:          {Enabled: true, PlanRequired: models.PlanPro},
		models.KindCustom:        {Enabled: true, PlanRequired: models.PlanPro},
		models.KindSignal:        {Enabled: true, PlanRequired: models.PlanPro},
	}
}

// Enabled reports whether the engine evaluates the kind
func (t CapabilityTable) Enabled(kind models.AlertKind) bool {
	cap, ok := t[kind]
	return ok && cap.Enabled
}

// Free-plan caps
const (
	freeDailyLimit      = 3
	freePersistentLimit = 1
)

// Decision is the outcome of a quota/plan check
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// PersistentCounter exposes the one store read the policy needs
type PersistentCounter interface {
	CountPersistentThresholdAlerts(ctx context.Context, userID int64) (int, error)
}

// Policy evaluates plan rules against a user record
type Policy struct {
	caps  CapabilityTable
	store PersistentCounter
}

// New creates a policy over the given capability table
func New(caps CapabilityTable, store PersistentCounter) *Policy {
	return &Policy{caps: caps, store: store}
}

// CanCreate decides whether the user may create an alert of the given
// kind. The user record must already have its daily counter reset for
// today (store.GetOrCreateUser guarantees that).
func (p *Policy) CanCreate(ctx context.Context, user *models.User, kind models.AlertKind, repeat bool) (Decision, error) {
	cap, ok := p.caps[kind]
	if !ok || !cap.Enabled {
		return deny(fmt.Sprintf("%s alerts are not available", kind)), nil
	}

	if cap.PlanRequired.Paid() && !user.Plan.Paid() {
		return deny(fmt.Sprintf("%s alerts require a Pro plan", kind)), nil
	}

	// Paid plans have no caps
	if user.Plan.Paid() {
		return allow(), nil
	}

	if user.AlertsUsed >= freeDailyLimit {
		return deny(fmt.Sprintf("daily limit of %d alerts reached", freeDailyLimit)), nil
	}

	if repeat {
		count, err := p.store.CountPersistentThresholdAlerts(ctx, user.ID)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to count persistent alerts: %w", err)
		}
		if count >= freePersistentLimit {
			return deny(fmt.Sprintf("free plan allows only %d persistent alert", freePersistentLimit)), nil
		}
	}

	return allow(), nil
}
