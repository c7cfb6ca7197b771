package nexus

import (
	"errors"
	"testing"
	"time"
)

func newAccountingSystem(t *testing.T, now string, txs ...Transaction) *AccountingSystem {
	t.Helper()
	as, err := NewAccountingSystem(newLedger(t, txs...), DefaultMonthlyCeiling, Money{})
	if err != nil {
		t.Fatalf("NewAccountingSystem() error = %v", err)
	}
	as.Now = func() time.Time { return at(now) }
	return as
}

func TestNewAccountingSystem(t *testing.T) {
	as, err := NewAccountingSystem(newLedger(t), M(100), Money{})
	if err != nil {
		t.Fatalf("NewAccountingSystem() error = %v", err)
	}
	assertMoney(t, "FallbackPrice", as.FallbackPrice, 19.50)

	if _, err := NewAccountingSystem(newLedger(t), M(-1), Money{}); err == nil {
		t.Errorf("NewAccountingSystem(-1) error = nil, want an error")
	}
	if _, err := NewAccountingSystem(nil, M(1), Money{}); err == nil {
		t.Errorf("NewAccountingSystem(nil) error = nil, want an error")
	}
}

func TestAccountingSystem_Record(t *testing.T) {
	as := newAccountingSystem(t, "2025-03-01T00:00:00Z",
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
		dispose("b", "2025-02-10T10:00:00Z", Main, 80, 12),
	)

	tests := []struct {
		name string
		tx   Transaction
		want error
	}{
		{
			name: "within current balance",
			tx:   NewDispose(at("2025-02-20T10:00:00Z"), Main, Q(20), M(12)),
		},
		{
			name: "over current balance",
			tx:   NewDispose(at("2025-02-20T10:00:00Z"), Main, Q(21), M(12)),
			want: ErrInsufficientBalance,
		},
		{
			// 100 units were held on January 20th, but the later disposal
			// is not in the past of that date.
			name: "back dated within historical balance",
			tx:   NewDispose(at("2025-01-20T10:00:00Z"), Main, Q(90), M(12)),
		},
		{
			name: "back dated before any acquisition",
			tx:   NewDispose(at("2025-01-05T10:00:00Z"), Main, Q(1), M(12)),
			want: ErrInsufficientBalance,
		},
		{
			name: "other book",
			tx:   NewDispose(at("2025-02-20T10:00:00Z"), Trading, Q(1), M(12)),
			want: ErrInsufficientBalance,
		},
		{
			name: "same instant as the acquisition",
			tx:   NewDispose(at("2025-01-10T10:00:00Z"), Main, Q(100), M(12)),
		},
		{
			name: "malformed",
			tx:   NewDispose(at("2025-02-20T10:00:00Z"), Main, Q(1), Money{}),
			want: ErrInvalidTransaction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := as.Ledger.Len()
			tx, err := as.Record(tt.tx)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Record() error = %v, want %v", err, tt.want)
			}
			if err != nil {
				if as.Ledger.Len() != before {
					t.Errorf("Record() changed the ledger on error")
				}
				return
			}
			// Undo so that cases stay independent.
			if _, err := as.Delete(tx.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
		})
	}
}

func TestAccountingSystem_RecordInsufficientDetails(t *testing.T) {
	as := newAccountingSystem(t, "2025-03-01T00:00:00Z", acquire("a", "2025-01-10T10:00:00Z", Trading, 1000, 10))
	_, err := as.Record(NewDispose(at("2025-02-20T10:00:00Z"), Trading, Q(150), M(12)))
	var e *InsufficientBalanceError
	if !errors.As(err, &e) {
		t.Fatalf("Record() error = %v, want an InsufficientBalanceError", err)
	}
	if e.Portfolio != Trading || !e.Available.Equal(Q(100)) || !e.Requested.Equal(Q(150)) {
		t.Errorf("Record() error = %+v", e)
	}
}

func TestAccountingSystem_DisposeAll(t *testing.T) {
	as := newAccountingSystem(t, "2025-03-01T00:00:00Z",
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
		acquire("b", "2025-02-10T10:00:00Z", Main, 1000, 10),
	)
	tx, err := as.Record(NewDispose(at("2025-01-20T10:00:00Z"), Main, Quantity{}, M(11)))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	assertQuantity(t, "Quantity", tx.Quantity, 100)
	assertMoney(t, "Amount", tx.Amount, 1100)
}

func TestAccountingSystem_Adjust(t *testing.T) {
	as := newAccountingSystem(t, "2025-03-01T00:00:00Z", acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10))

	tx, ok, err := as.Adjust(Main, Q(97))
	if err != nil || !ok {
		t.Fatalf("Adjust() = %v, %v, want an adjustment", ok, err)
	}
	if !tx.Date.Equal(at("2025-03-01T00:00:00Z")) {
		t.Errorf("Adjust().Date = %v, want now", tx.Date)
	}
	s := as.Stats(ViewOf(Main))
	assertQuantity(t, "Balance", s.Balance, 97)
	assertMoney(t, "AverageCost", s.AverageCost, 10)

	if _, ok, err := as.Adjust(Main, Q(97)); ok || err != nil {
		t.Errorf("Adjust() = %v, %v, want a no-op", ok, err)
	}
	if _, _, err := as.Adjust(PortfolioID(ViewAll), Q(1)); !errors.Is(err, ErrUnknownPortfolio) {
		t.Errorf("Adjust(all) error = %v, want %v", err, ErrUnknownPortfolio)
	}
}

func TestAccountingSystem_Previews(t *testing.T) {
	as := newAccountingSystem(t, "2025-03-01T00:00:00Z", acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10))

	p, err := as.PreviewAcquire(NewAcquire(at("2025-02-01T10:00:00Z"), Main, M(2000), M(20)))
	if err != nil {
		t.Fatalf("PreviewAcquire() error = %v", err)
	}
	assertMoney(t, "Current", p.Current, 10)
	assertMoney(t, "New", p.New, 15)
	assertMoney(t, "Delta", p.Delta, 5)

	e, err := as.PreviewDispose(NewDispose(at("2025-02-01T10:00:00Z"), Main, Q(50), M(12)))
	if err != nil {
		t.Fatalf("PreviewDispose() error = %v", err)
	}
	assertMoney(t, "RealizedProfit", e.RealizedProfit, 100)
	if !e.RealizedProfitPct.Equal(20) {
		t.Errorf("RealizedProfitPct = %v, want 20", e.RealizedProfitPct)
	}
	if as.Ledger.Len() != 1 {
		t.Errorf("previews changed the ledger")
	}
}

func TestAccountingSystem_Reports(t *testing.T) {
	as := newAccountingSystem(t, "2025-01-31T00:00:00Z",
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
		dispose("b", "2025-01-11T10:00:00Z", Main, 50, 12),
		adjust("c", "2025-01-12T10:00:00Z", Main, -25),
	)
	if got := len(as.Entries(ViewOf(Main))); got != 3 {
		t.Errorf("len(Entries()) = %d, want 3", got)
	}
	assertMoney(t, "Monthly().Spent", as.Monthly().Spent, 1000)

	scenarios := as.Scenarios(ViewOf(Main))
	assertMoney(t, "Target +10% profit", scenarios[3].Profit, 25)

	p := as.AtPrice(ViewOf(Main), M(14))
	assertMoney(t, "AtPrice().Profit", p.Profit, 100)

	sim := as.Simulate(ViewOf(Main), Q(1000), M(11))
	assertMoney(t, "Simulate().Profit", sim.Profit, 1000)
}
