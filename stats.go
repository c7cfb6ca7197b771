package nexus

// DefaultReferencePrice is the unit price used to value holdings when the
// view has no priced transaction yet.
var DefaultReferencePrice = M(19.50)

// Stats summarizes a view of the ledger.
type Stats struct {
	View             View
	TotalInvested    Money    // Cost basis of the units held.
	Balance          Quantity // Units held.
	AverageCost      Money    // TotalInvested/Balance, 0 when nothing is held.
	RealizedProfit   Money    // Cumulative realized profit.
	ReferencePrice   Money    // Unit price used to value the holdings.
	UnrealizedProfit Money    // Balance×ReferencePrice − TotalInvested.
	EstimatedValue   Money    // Balance×ReferencePrice.
}

// NewStats reduces a replayed ledger to the stats of view v.
//
// A single book reuses its running state from the replay. The consolidated
// view replays the union of all transactions as one book, so its average
// cost is the blended cost of all holdings.
//
// The reference price is the unit price of the most recent acquisition or
// disposal visible in v, or fallback when there is none.
func NewStats(b *Book, v View, fallback Money) Stats {
	var state PortfolioState
	if p, ok := v.Portfolio(); ok {
		state = b.State(p)
	} else {
		state = replayUnified(b.Transactions())
	}

	price := fallback
	for _, e := range b.Entries(v) {
		if e.Kind != Adjust {
			price = e.UnitPrice
			break
		}
	}

	value := price.Mul(state.Balance)
	return Stats{
		View:             v,
		TotalInvested:    state.CostBasis,
		Balance:          state.Balance,
		AverageCost:      state.AverageCost(),
		RealizedProfit:   state.RealizedProfit,
		ReferencePrice:   price,
		UnrealizedProfit: value.Sub(state.CostBasis),
		EstimatedValue:   value,
	}
}
