package nexus

import (
	"errors"
	"fmt"
	"time"

	"github.com/etnz/nexus/date"
)

// Transaction is one immutable ledger record. Transactions are only ever
// appended or removed, never edited.
//
// Realized profit is not part of a Transaction: it is derived by Process on
// every replay (see Entry).
type Transaction struct {
	ID        string
	Portfolio PortfolioID
	Date      time.Time
	Kind      Kind
	Amount    Money    // Amount in local currency, always 0 for adjustments.
	UnitPrice Money    // Price of one unit; for adjustments, the average cost at the time, for display.
	Quantity  Quantity // Units of the asset, signed for adjustments.
	Note      string   // Note is an optional free text.
}

// NewAcquire creates an acquisition entered by its local amount: the quantity
// is amount/unitPrice.
func NewAcquire(at time.Time, p PortfolioID, amount, unitPrice Money) Transaction {
	return Transaction{
		Portfolio: p,
		Date:      date.Truncate(at),
		Kind:      Acquire,
		Amount:    amount,
		UnitPrice: unitPrice,
		Quantity:  quantityFor(amount, unitPrice),
	}
}

// NewAcquireQuantity creates an acquisition entered by its quantity: the
// amount is quantity×unitPrice.
func NewAcquireQuantity(at time.Time, p PortfolioID, quantity Quantity, unitPrice Money) Transaction {
	return Transaction{
		Portfolio: p,
		Date:      date.Truncate(at),
		Kind:      Acquire,
		Amount:    unitPrice.Mul(quantity),
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
}

// NewDispose creates a disposal entered by its quantity.
func NewDispose(at time.Time, p PortfolioID, quantity Quantity, unitPrice Money) Transaction {
	return Transaction{
		Portfolio: p,
		Date:      date.Truncate(at),
		Kind:      Dispose,
		Amount:    unitPrice.Mul(quantity),
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
}

// NewDisposeAmount creates a disposal entered by its local proceeds.
func NewDisposeAmount(at time.Time, p PortfolioID, amount, unitPrice Money) Transaction {
	return Transaction{
		Portfolio: p,
		Date:      date.Truncate(at),
		Kind:      Dispose,
		Amount:    amount,
		UnitPrice: unitPrice,
		Quantity:  quantityFor(amount, unitPrice),
	}
}

// NewAdjustment creates a balance adjustment of delta units. averageCost is
// recorded for display only; the replay prices the delta at the running
// average cost.
func NewAdjustment(at time.Time, p PortfolioID, delta Quantity, averageCost Money) Transaction {
	return Transaction{
		Portfolio: p,
		Date:      date.Truncate(at),
		Kind:      Adjust,
		UnitPrice: averageCost,
		Quantity:  delta,
		Note:      "balance adjustment",
	}
}

// NewTrade creates an acquisition or a disposal the way a person enters it:
// either by quantity or by local amount, the other being derived from
// unitPrice. A disposal with neither requests the whole balance, see
// AccountingSystem.Validate.
func NewTrade(kind Kind, at time.Time, p PortfolioID, unitPrice, amount Money, quantity Quantity) (Transaction, error) {
	if !amount.IsZero() && !quantity.IsZero() {
		return Transaction{}, fmt.Errorf("%w: enter either an amount or a quantity, not both", ErrInvalidTransaction)
	}
	switch kind {
	case Acquire:
		if amount.IsZero() && quantity.IsZero() {
			return Transaction{}, fmt.Errorf("%w: an acquisition needs an amount or a quantity", ErrInvalidTransaction)
		}
		if quantity.IsZero() {
			return NewAcquire(at, p, amount, unitPrice), nil
		}
		return NewAcquireQuantity(at, p, quantity, unitPrice), nil
	case Dispose:
		if !amount.IsZero() {
			return NewDisposeAmount(at, p, amount, unitPrice), nil
		}
		return NewDispose(at, p, quantity, unitPrice), nil
	default:
		return Transaction{}, fmt.Errorf("%w: %s is not a trade", ErrInvalidTransaction, kind)
	}
}

// WithNote returns a copy of t carrying note.
func (t Transaction) WithNote(note string) Transaction {
	t.Note = note
	return t
}

// quantityFor is amount/unitPrice, or 0 when the price is not positive.
func quantityFor(amount, unitPrice Money) Quantity {
	if !unitPrice.IsPositive() {
		return Quantity{}
	}
	return amount.DivPrice(unitPrice)
}

// Check verifies that t is well formed. It does not look at balances, see
// AccountingSystem.Validate for that.
func (t Transaction) Check() error {
	var errs error
	if !t.Portfolio.Valid() {
		errs = errors.Join(errs, fmt.Errorf("%w: %q", ErrUnknownPortfolio, string(t.Portfolio)))
	}
	if t.Date.IsZero() {
		errs = errors.Join(errs, errors.New("date is missing"))
	}
	switch t.Kind {
	case Acquire, Dispose:
		if t.Amount.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("amount must not be negative, got %s", t.Amount.Decimal()))
		}
		if !t.UnitPrice.IsPositive() {
			errs = errors.Join(errs, fmt.Errorf("unit price must be positive, got %s", t.UnitPrice.Decimal()))
		}
		if t.Quantity.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("quantity must not be negative, got %s", t.Quantity))
		}
	case Adjust:
		if !t.Amount.IsZero() {
			errs = errors.Join(errs, fmt.Errorf("adjustment amount must be 0, got %s", t.Amount.Decimal()))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("%w: %d", ErrUnknownKind, int(t.Kind)))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, errs)
	}
	return nil
}

// Equal reports whether t and o carry the same authoritative fields.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Portfolio == o.Portfolio &&
		t.Date.Equal(o.Date) &&
		t.Kind == o.Kind &&
		t.Amount.Equal(o.Amount) &&
		t.UnitPrice.Equal(o.UnitPrice) &&
		t.Quantity.Equal(o.Quantity) &&
		t.Note == o.Note
}
