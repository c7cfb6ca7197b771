package nexus

import (
	"testing"
	"time"

	"github.com/etnz/nexus/date"
)

// at is a helper for test to create a timestamp from a const
func at(s string) time.Time { return date.MustParse(s) }

// acquire is a helper for test to create an acquisition with an id.
func acquire(id, on string, p PortfolioID, amount, price float64) Transaction {
	tx := NewAcquire(at(on), p, M(amount), M(price))
	tx.ID = id
	return tx
}

// dispose is a helper for test to create a disposal with an id.
func dispose(id, on string, p PortfolioID, quantity, price float64) Transaction {
	tx := NewDispose(at(on), p, Q(quantity), M(price))
	tx.ID = id
	return tx
}

// adjust is a helper for test to create an adjustment with an id.
func adjust(id, on string, p PortfolioID, delta float64) Transaction {
	tx := NewAdjustment(at(on), p, Q(delta), Money{})
	tx.ID = id
	return tx
}

// newLedger is a helper for test to create a ledger that must be valid.
func newLedger(t *testing.T, txs ...Transaction) *Ledger {
	t.Helper()
	l, err := NewLedger(txs...)
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}
	return l
}

func assertMoney(t *testing.T, name string, got Money, want float64) {
	t.Helper()
	if !got.Equal(M(want)) {
		t.Errorf("%s = %s, want %v", name, got.Decimal(), want)
	}
}

func assertQuantity(t *testing.T, name string, got Quantity, want float64) {
	t.Helper()
	if !got.Equal(Q(want)) {
		t.Errorf("%s = %s, want %v", name, got, want)
	}
}
