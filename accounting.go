package nexus

import (
	"fmt"
	"time"
)

// AccountingSystem ties the ledger to the reports derived from it. It is the
// single entry point used by the command line and the HTTP API: every report
// goes through the same replay of the ledger.
type AccountingSystem struct {
	Ledger         *Ledger
	MonthlyCeiling Money
	FallbackPrice  Money            // Reference price when a view has no priced transaction.
	Now            func() time.Time // Clock used for the monthly tracker and adjustments.
}

// NewAccountingSystem creates a new accounting system over ledger.
//
// A zero fallback price is replaced by DefaultReferencePrice. A negative
// ceiling is rejected, a zero ceiling is accepted (any spending is then
// critical).
func NewAccountingSystem(ledger *Ledger, ceiling, fallback Money) (*AccountingSystem, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if ceiling.IsNegative() {
		return nil, fmt.Errorf("monthly ceiling must not be negative, got %s", ceiling.Decimal())
	}
	if fallback.IsNegative() {
		return nil, fmt.Errorf("fallback price must not be negative, got %s", fallback.Decimal())
	}
	if fallback.IsZero() {
		fallback = DefaultReferencePrice
	}
	return &AccountingSystem{
		Ledger:         ledger,
		MonthlyCeiling: ceiling,
		FallbackPrice:  fallback,
		Now:            time.Now,
	}, nil
}

func (as *AccountingSystem) now() time.Time {
	if as.Now == nil {
		return time.Now()
	}
	return as.Now()
}

// Entries returns the annotated history of view v, most recent first.
func (as *AccountingSystem) Entries(v View) []Entry { return as.Ledger.Book().Entries(v) }

// Stats returns the stats of view v.
func (as *AccountingSystem) Stats(v View) Stats {
	return NewStats(as.Ledger.Book(), v, as.FallbackPrice)
}

// Monthly returns the spending of the current month, across every book.
func (as *AccountingSystem) Monthly() MonthlySpend {
	return NewMonthlySpend(as.Ledger.Transactions(), as.now(), as.MonthlyCeiling)
}

// Scenarios projects the sale of the whole balance of v at the preset markups.
func (as *AccountingSystem) Scenarios(v View) []Scenario {
	s := as.Stats(v)
	return Scenarios(s.Balance, s.AverageCost)
}

// AtPrice projects the sale of the whole balance of v at price.
func (as *AccountingSystem) AtPrice(v View, price Money) Projection {
	s := as.Stats(v)
	return Project(s.Balance, s.AverageCost, price)
}

// Simulate projects the sale of quantity units at price against the average
// cost of v. The quantity is not checked against the balance.
func (as *AccountingSystem) Simulate(v View, quantity Quantity, price Money) Projection {
	return Project(quantity, as.Stats(v).AverageCost, price)
}

// Validate checks tx against the ledger and applies quick fixes where
// applicable. A disposal with neither quantity nor amount disposes of the
// whole balance held on its date. It returns the validated (and potentially
// modified) transaction.
func (as *AccountingSystem) Validate(tx Transaction) (Transaction, error) {
	txs := as.Ledger.Transactions()
	if tx.Kind == Dispose && tx.Quantity.IsZero() && tx.Amount.IsZero() {
		tx.Quantity = BalanceAsOf(txs, tx.Portfolio, tx.Date)
		tx.Amount = tx.UnitPrice.Mul(tx.Quantity)
	}
	if err := tx.Check(); err != nil {
		return tx, err
	}
	if err := CheckBalance(txs, tx); err != nil {
		return tx, err
	}
	return tx, nil
}

// Record validates tx and appends it to the ledger. The ledger is left
// unchanged when validation fails.
func (as *AccountingSystem) Record(tx Transaction) (Transaction, error) {
	tx, err := as.Validate(tx)
	if err != nil {
		return Transaction{}, err
	}
	return as.Ledger.Append(tx)
}

// Adjust records the adjustment that brings book target to the observed
// balance. It returns false, and records nothing, when the discrepancy is
// negligible.
func (as *AccountingSystem) Adjust(target PortfolioID, observed Quantity) (Transaction, bool, error) {
	if !target.Valid() {
		return Transaction{}, false, fmt.Errorf("%w: %q", ErrUnknownPortfolio, string(target))
	}
	tx, ok := ReconcileBalance(as.Ledger.Book(), target, observed, as.now())
	if !ok {
		return Transaction{}, false, nil
	}
	tx, err := as.Ledger.Append(tx)
	if err != nil {
		return Transaction{}, false, err
	}
	return tx, true, nil
}

// Delete removes the transaction id from the ledger.
func (as *AccountingSystem) Delete(id string) (Transaction, error) { return as.Ledger.Remove(id) }

// AcquirePreview is the impact of an acquisition on the average cost of its
// book.
type AcquirePreview struct {
	Transaction
	Current Money // Average cost before the acquisition.
	New     Money // Average cost after the acquisition.
	Delta   Money // New − Current.
}

// PreviewAcquire computes the average cost of the book of tx after it, without
// recording it.
func (as *AccountingSystem) PreviewAcquire(tx Transaction) (AcquirePreview, error) {
	if tx.Kind != Acquire {
		return AcquirePreview{}, fmt.Errorf("%w: preview expects an acquisition, got %s", ErrInvalidTransaction, tx.Kind)
	}
	if err := tx.Check(); err != nil {
		return AcquirePreview{}, err
	}
	s := as.Ledger.Book().State(tx.Portfolio)
	current := s.AverageCost()
	s.apply(tx)
	return AcquirePreview{
		Transaction: tx,
		Current:     current,
		New:         s.AverageCost(),
		Delta:       s.AverageCost().Sub(current),
	}, nil
}

// PreviewDispose computes the realized profit of disposal tx on its date,
// without recording it. It fails like Record would.
func (as *AccountingSystem) PreviewDispose(tx Transaction) (Entry, error) {
	if tx.Kind != Dispose {
		return Entry{}, fmt.Errorf("%w: preview expects a disposal, got %s", ErrInvalidTransaction, tx.Kind)
	}
	tx, err := as.Validate(tx)
	if err != nil {
		return Entry{}, err
	}
	s := StateAsOf(as.Ledger.Transactions(), tx.Portfolio, tx.Date)
	profit, pct := s.apply(tx)
	return Entry{Transaction: tx, RealizedProfit: profit, RealizedProfitPct: pct}, nil
}
