package nexus

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentEpsilon is the smallest balance discrepancy worth an adjustment.
var AdjustmentEpsilon = Q(decimal.New(1, -4))

// ReconcileBalance builds the adjustment that brings book target from its
// replayed balance to observed, stamped at. It returns false when the
// discrepancy is below AdjustmentEpsilon.
//
// The adjustment carries the current average cost as unit price; replaying it
// leaves the average cost unchanged.
func ReconcileBalance(b *Book, target PortfolioID, observed Quantity, at time.Time) (Transaction, bool) {
	state := b.State(target)
	delta := observed.Sub(state.Balance)
	if delta.Abs().LessThan(AdjustmentEpsilon) {
		return Transaction{}, false
	}
	return NewAdjustment(at, target, delta, state.AverageCost()), true
}
