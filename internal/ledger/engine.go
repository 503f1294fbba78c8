// Package ledger derives balance and budget views from raw expense
// records, plans minimal settlement transfers, and suggests payers.
//
// Everything in this package is pure and side-effect free: the same
// inputs always produce the same outputs, and no shared state is held,
// so calls are safe to run concurrently and repeatedly.
package ledger

import (
	"errors"
	"math"
)

var (
	// ErrEmptyParticipants is returned when an expense has no
	// participants; an equal split would divide by zero.
	ErrEmptyParticipants = errors.New("expense has no participants")

	// ErrAmountNotPositive is returned for a non-positive expense amount.
	ErrAmountNotPositive = errors.New("amount must be positive")
)

// Balance maps a member id to the signed net amount they are owed (+) or
// owe (−) under equal-split accounting.
type Balance map[string]float64

// BudgetRemaining maps a member id to their initial budget minus
// everything they have personally paid out as payer. It is a
// spending-capacity view, independent of what the member owes as a
// participant, and is never clamped: negative values signal over-spend.
type BudgetRemaining map[string]float64

// Transfer is one leg of a settlement plan: From pays To. Transfers are
// computed on demand and never persisted.
type Transfer struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Config carries the tunables of the engine. The zero value is usable:
// epsilon defaults to 0.01 and precision to 2 decimal places.
type Config struct {
	// Epsilon is the tolerance used for every zero/equality comparison
	// on monetary amounts.
	Epsilon float64

	// Precision is the number of decimal places a finalized transfer or
	// settlement amount is rounded to.
	Precision int
}

// Engine performs all balance, planning, and suggestion computation.
type Engine struct {
	eps   float64
	scale float64
}

// New creates an Engine with the given configuration.
func New(cfg Config) *Engine {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = 0.01
	}
	if cfg.Precision <= 0 {
		cfg.Precision = 2
	}
	return &Engine{
		eps:   cfg.Epsilon,
		scale: math.Pow(10, float64(cfg.Precision)),
	}
}

// Round rounds a finalized monetary amount to the configured precision.
// Amounts are rounded exactly once, at the point a transfer or settlement
// amount is finalized, so repeated recomputation cannot drift.
func (e *Engine) Round(v float64) float64 {
	return math.Round(v*e.scale) / e.scale
}
