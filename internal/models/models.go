package models

import (
	"database/sql"
	"time"
)

// Plan identifies a user's subscription tier
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanVip  Plan = "vip"
)

// Paid reports whether the plan unlocks paid-only alert kinds
func (p Plan) Paid() bool {
	return p == PlanPro || p == PlanVip
}

// Valid reports whether the plan is a known tier
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro || p == PlanVip
}

// Condition is a price comparison direction, stored as ">" or "<"
type Condition string

const (
	Above Condition = ">"
	Below Condition = "<"
)

// Valid reports whether the condition is a known direction
func (c Condition) Valid() bool {
	return c == Above || c == Below
}

// Holds reports whether price satisfies the condition against target
func (c Condition) Holds(price, target float64) bool {
	switch c {
	case Above:
		return price > target
	case Below:
		return price < target
	}
	return false
}

// AlertKind identifies one of the evaluated alert families
type AlertKind string

const (
	KindThreshold     AlertKind = "threshold"
	KindPercentChange AlertKind = "percent"
	KindVolumeSpike   AlertKind = "volume"
	KindRisk          AlertKind = "risk"
	KindCustom        AlertKind = "custom"
	KindPortfolio     AlertKind = "portfolio"
	KindSignal        AlertKind = "signal"
)

// User holds plan and daily quota state. AlertsUsed is meaningful only for
// the current LastReset date; a stale date is reset before quota checks.
type User struct {
	ID         int64  `db:"user_id" json:"user_id"`
	Plan       Plan   `db:"plan" json:"plan"`
	AlertsUsed int    `db:"alerts_used" json:"alerts_used"`
	LastReset  string `db:"last_reset" json:"last_reset"` // YYYY-MM-DD
}

// ThresholdAlert fires when the observed price crosses a fixed target
type ThresholdAlert struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Symbol      string    `db:"symbol" json:"symbol"`
	Condition   Condition `db:"condition" json:"condition"`
	TargetPrice float64   `db:"target_price" json:"target_price"`
	Repeat      bool      `db:"repeat" json:"repeat"`
}

// PercentChangeAlert fires when price moves a given percentage away from
// the base price snapshotted at creation. The base never advances, even
// after a repeat fire.
type PercentChangeAlert struct {
	ID               int64   `db:"id" json:"id"`
	UserID           int64   `db:"user_id" json:"user_id"`
	Symbol           string  `db:"symbol" json:"symbol"`
	BasePrice        float64 `db:"base_price" json:"base_price"`
	ThresholdPercent float64 `db:"threshold_percent" json:"threshold_percent"`
	Repeat           bool    `db:"repeat" json:"repeat"`
}

// VolumeSpikeAlert fires when the latest interval volume exceeds
// Multiplier times the average of the preceding intervals
type VolumeSpikeAlert struct {
	ID         int64   `db:"id" json:"id"`
	UserID     int64   `db:"user_id" json:"user_id"`
	Symbol     string  `db:"symbol" json:"symbol"`
	Multiplier float64 `db:"multiplier" json:"multiplier"`
	Repeat     bool    `db:"repeat" json:"repeat"`
}

// RiskAlert fires when price reaches the stop-loss or take-profit bound
type RiskAlert struct {
	ID        int64   `db:"id" json:"id"`
	UserID    int64   `db:"user_id" json:"user_id"`
	Symbol    string  `db:"symbol" json:"symbol"`
	StopPrice float64 `db:"stop_price" json:"stop_price"`
	TakePrice float64 `db:"take_price" json:"take_price"`
	Repeat    bool    `db:"repeat" json:"repeat"`
}

// Indicator condition encodings carried by CustomAlert. RSI conditions
// store the comparison direction in IndicatorCond plus a threshold in
// IndicatorValue; MACD and EMA conditions encode everything in the string.
const (
	IndicatorMACDBullish = "macd"
	IndicatorEMAPrefix   = "ema>" // followed by the period, e.g. "ema>20"
)

// CustomAlert fires when both the price condition and the indicator
// condition hold simultaneously
type CustomAlert struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Symbol         string    `db:"symbol" json:"symbol"`
	PriceCondition Condition `db:"price_condition" json:"price_condition"`
	PriceValue     float64   `db:"price_value" json:"price_value"`
	IndicatorCond  string    `db:"indicator_condition" json:"indicator_condition"`
	IndicatorValue float64   `db:"indicator_value" json:"indicator_value"`
	Repeat         bool      `db:"repeat" json:"repeat"`
}

// PortfolioHolding is keyed by (user, symbol); writes replace quantity
type PortfolioHolding struct {
	UserID   int64   `db:"user_id" json:"user_id"`
	Symbol   string  `db:"symbol" json:"symbol"`
	Quantity float64 `db:"quantity" json:"quantity"`
}

// PortfolioLimit holds per-user portfolio value bounds. Each bound is
// one-shot: it is cleared to NULL after firing.
type PortfolioLimit struct {
	UserID       int64           `db:"user_id" json:"user_id"`
	LossLimit    sql.NullFloat64 `db:"loss_limit" json:"loss_limit"`
	ProfitTarget sql.NullFloat64 `db:"profit_target" json:"profit_target"`
}

// TradeSignal is a community trade idea awaiting moderator approval
type TradeSignal struct {
	ID          int64           `db:"id" json:"id"`
	SubmitterID int64           `db:"user_id" json:"user_id"`
	Symbol      string          `db:"symbol" json:"symbol"`
	Direction   string          `db:"direction" json:"direction"`
	EntryPrice  float64         `db:"entry_price" json:"entry_price"`
	StopLoss    sql.NullFloat64 `db:"stop_loss" json:"stop_loss"`
	TakeProfit  sql.NullFloat64 `db:"take_profit" json:"take_profit"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Approved    bool            `db:"approved" json:"approved"`
}

// Candle is one historical interval for a symbol, oldest-first in series
type Candle struct {
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// MarketEntry is one row of a market-cap-ranked snapshot
type MarketEntry struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
}

// NewsItem is a single headline from the news provider
type NewsItem struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}
