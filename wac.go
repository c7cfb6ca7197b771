package nexus

import (
	"slices"
	"strings"
)

// PortfolioState is the running position of one book while replaying the
// ledger. It only exists during a replay and is never persisted.
type PortfolioState struct {
	Balance        Quantity // Units held.
	CostBasis      Money    // Local cost of the units held.
	RealizedProfit Money    // Cumulative realized profit.
}

// AverageCost is CostBasis/Balance, or 0 when nothing is held.
func (s PortfolioState) AverageCost() Money {
	if !s.Balance.IsPositive() {
		return Money{}
	}
	return s.CostBasis.Div(s.Balance)
}

// apply folds tx into the state using the weighted average cost method and
// returns the realized profit of a disposal.
func (s *PortfolioState) apply(tx Transaction) (profit Money, pct Percent) {
	avg := s.AverageCost()
	switch tx.Kind {
	case Acquire:
		s.Balance = s.Balance.Add(tx.Quantity)
		s.CostBasis = s.CostBasis.Add(tx.Amount)
	case Dispose:
		// With nothing held the average cost is 0 and the whole proceeds
		// are profit.
		cost := avg.Mul(tx.Quantity)
		profit = tx.Amount.Sub(cost)
		if avg.IsPositive() {
			pct = percentOf(tx.UnitPrice.Ratio(avg).Sub(one).Mul(hundred))
		}
		s.RealizedProfit = s.RealizedProfit.Add(profit)
		s.Balance = s.Balance.Sub(tx.Quantity)
		s.CostBasis = s.CostBasis.Sub(cost)
	case Adjust:
		// Adjustments move the balance without moving the average cost.
		d := tx.Quantity
		if d.IsPositive() {
			s.Balance = s.Balance.Add(d)
			s.CostBasis = s.CostBasis.Add(avg.Mul(d))
		} else if d.IsNegative() {
			var ratio Quantity
			if s.Balance.IsPositive() {
				ratio = d.Abs().Div(s.Balance)
			}
			s.CostBasis = s.CostBasis.Sub(s.CostBasis.Mul(ratio))
			s.Balance = s.Balance.Sub(d.Abs())
		}
	}
	return profit, pct
}

// Entry is a transaction annotated by the replay.
type Entry struct {
	Transaction
	RealizedProfit    Money   // Realized profit of a disposal.
	RealizedProfitPct Percent // Realized profit of a disposal relative to the average cost.
}

// Realized reports whether the realized profit fields are meaningful, that
// is for disposals only.
func (e Entry) Realized() bool { return e.Kind == Dispose }

// Book is the result of replaying a ledger: every transaction annotated in
// chronological order and the final state of each book.
type Book struct {
	entries []Entry // chronological
	states  map[PortfolioID]PortfolioState
}

// Process replays txs with the weighted average cost method, keeping one
// state per book. It is a pure function of the set of transactions: the
// input order does not matter and stored profit figures are ignored.
func Process(txs []Transaction) *Book {
	b := &Book{
		entries: make([]Entry, 0, len(txs)),
		states:  make(map[PortfolioID]PortfolioState),
	}
	for _, tx := range Chronological(txs) {
		s := b.states[tx.Portfolio]
		profit, pct := s.apply(tx)
		b.states[tx.Portfolio] = s
		b.entries = append(b.entries, Entry{Transaction: tx, RealizedProfit: profit, RealizedProfitPct: pct})
	}
	return b
}

// Chronological returns a sorted copy of txs: by date, then acquisitions
// before disposals before adjustments so that inflows are visible to outflows
// dated at the same instant, then by id to make the order total.
func Chronological(txs []Transaction) []Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, compareChronological)
	return sorted
}

func compareChronological(a, b Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	return strings.Compare(a.ID, b.ID)
}

// replayUnified replays txs as if they all belonged to a single book.
func replayUnified(txs []Transaction) PortfolioState {
	var s PortfolioState
	for _, tx := range Chronological(txs) {
		s.apply(tx)
	}
	return s
}

// State returns the final state of book p. A book without transactions has a
// zero state.
func (b *Book) State(p PortfolioID) PortfolioState { return b.states[p] }

// Len returns the number of replayed transactions.
func (b *Book) Len() int { return len(b.entries) }

// Entries returns the annotated transactions visible in v, most recent first.
func (b *Book) Entries(v View) []Entry {
	res := make([]Entry, 0, len(b.entries))
	for i := len(b.entries) - 1; i >= 0; i-- {
		if v.Includes(b.entries[i].Portfolio) {
			res = append(res, b.entries[i])
		}
	}
	return res
}

// Transactions returns the replayed transactions in chronological order.
func (b *Book) Transactions() []Transaction {
	res := make([]Transaction, len(b.entries))
	for i, e := range b.entries {
		res[i] = e.Transaction
	}
	return res
}
