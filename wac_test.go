package nexus

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProcess_Acquire(t *testing.T) {
	b := Process([]Transaction{
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
	})
	s := b.State(Main)
	assertQuantity(t, "Balance", s.Balance, 100)
	assertMoney(t, "CostBasis", s.CostBasis, 1000)
	assertMoney(t, "AverageCost()", s.AverageCost(), 10)
}

func TestProcess_Dispose(t *testing.T) {
	b := Process([]Transaction{
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
		dispose("b", "2025-01-11T10:00:00Z", Main, 50, 12),
	})
	s := b.State(Main)
	assertQuantity(t, "Balance", s.Balance, 50)
	assertMoney(t, "CostBasis", s.CostBasis, 500)
	assertMoney(t, "RealizedProfit", s.RealizedProfit, 100)

	e := b.Entries(ViewOf(Main))[0]
	if e.ID != "b" {
		t.Fatalf("Entries()[0].ID = %q, want %q", e.ID, "b")
	}
	assertMoney(t, "Entry.RealizedProfit", e.RealizedProfit, 100)
	if !e.RealizedProfitPct.Equal(20) {
		t.Errorf("Entry.RealizedProfitPct = %v, want 20", e.RealizedProfitPct)
	}
}

func TestProcess_NegativeAdjustment(t *testing.T) {
	b := Process([]Transaction{
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
		dispose("b", "2025-01-11T10:00:00Z", Main, 50, 12),
		adjust("c", "2025-01-12T10:00:00Z", Main, -25),
	})
	s := b.State(Main)
	assertQuantity(t, "Balance", s.Balance, 25)
	assertMoney(t, "CostBasis", s.CostBasis, 250)
	assertMoney(t, "AverageCost()", s.AverageCost(), 10)
}

func TestProcess_PositiveAdjustment(t *testing.T) {
	b := Process([]Transaction{
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
		adjust("b", "2025-01-12T10:00:00Z", Main, 20),
	})
	s := b.State(Main)
	assertQuantity(t, "Balance", s.Balance, 120)
	assertMoney(t, "CostBasis", s.CostBasis, 1200)
	assertMoney(t, "AverageCost()", s.AverageCost(), 10)
}

func TestProcess_DisposeWithoutBalance(t *testing.T) {
	// Nothing held: the average cost is 0 and the whole proceeds are profit.
	b := Process([]Transaction{
		dispose("a", "2025-01-10T10:00:00Z", Trading, 10, 20),
	})
	e := b.Entries(ViewAll)[0]
	assertMoney(t, "RealizedProfit", e.RealizedProfit, 200)
	if e.RealizedProfitPct != 0 {
		t.Errorf("RealizedProfitPct = %v, want 0", e.RealizedProfitPct)
	}
	assertQuantity(t, "Balance", b.State(Trading).Balance, -10)
}

func TestProcess_NegativeAdjustmentWithoutBalance(t *testing.T) {
	b := Process([]Transaction{adjust("a", "2025-01-10T10:00:00Z", Main, -5)})
	s := b.State(Main)
	assertQuantity(t, "Balance", s.Balance, -5)
	assertMoney(t, "CostBasis", s.CostBasis, 0)
	assertMoney(t, "AverageCost()", s.AverageCost(), 0)
}

func TestProcess_BooksAreIndependent(t *testing.T) {
	b := Process([]Transaction{
		acquire("a", "2025-01-10T10:00:00Z", Main, 1000, 10),
		acquire("b", "2025-01-10T11:00:00Z", Trading, 2000, 20),
		dispose("c", "2025-01-11T10:00:00Z", Trading, 50, 22),
	})
	assertMoney(t, "Main.AverageCost()", b.State(Main).AverageCost(), 10)
	assertMoney(t, "Trading.AverageCost()", b.State(Trading).AverageCost(), 20)
	assertMoney(t, "Trading.RealizedProfit", b.State(Trading).RealizedProfit, 100)
	assertMoney(t, "Main.RealizedProfit", b.State(Main).RealizedProfit, 0)

	if got := len(b.Entries(ViewOf(Main))); got != 1 {
		t.Errorf("len(Entries(main)) = %d, want 1", got)
	}
	if got := len(b.Entries(ViewAll)); got != 3 {
		t.Errorf("len(Entries(all)) = %d, want 3", got)
	}
}

func TestProcess_TieBreak(t *testing.T) {
	// Same instant: the acquisition must be visible to the disposal whatever
	// the insertion order or the ids.
	const on = "2025-02-01T09:00:00Z"
	txs := []Transaction{
		dispose("a", on, Main, 50, 12),
		adjust("b", on, Main, 5),
		acquire("z", on, Main, 1000, 10),
	}
	b := Process(txs)

	var kinds []Kind
	for _, tx := range b.Transactions() {
		kinds = append(kinds, tx.Kind)
	}
	if diff := cmp.Diff([]Kind{Acquire, Dispose, Adjust}, kinds); diff != "" {
		t.Errorf("Process() order mismatch (-want +got):\n%s", diff)
	}
	assertMoney(t, "RealizedProfit", b.State(Main).RealizedProfit, 100)
	assertQuantity(t, "Balance", b.State(Main).Balance, 55)
}

func TestProcess_AcquireOnlyIsCommutative(t *testing.T) {
	txs := []Transaction{
		acquire("a", "2025-01-01T10:00:00Z", Main, 1000, 10),
		acquire("b", "2025-01-02T10:00:00Z", Main, 1200, 12),
		acquire("c", "2025-01-03T10:00:00Z", Main, 450, 9),
		acquire("d", "2025-01-04T10:00:00Z", Main, 2050, 20.5),
	}
	// total amount 4700 for 100+100+50+100 units.
	want := M(4700).Div(Q(350))

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]Transaction(nil), txs...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if got := Process(shuffled).State(Main).AverageCost(); !got.Equal(want) {
			t.Fatalf("AverageCost() = %s, want %s", got.Decimal(), want.Decimal())
		}
	}
}

func TestProcess_Idempotent(t *testing.T) {
	txs := []Transaction{
		acquire("a", "2025-01-01T10:00:00Z", Main, 1000, 10),
		dispose("b", "2025-01-02T10:00:00Z", Main, 30, 11),
		acquire("c", "2025-01-03T10:00:00Z", Trading, 450, 9),
		adjust("d", "2025-01-04T10:00:00Z", Main, -3),
		dispose("e", "2025-01-05T10:00:00Z", Trading, 10, 8),
	}
	first := Process(txs).Entries(ViewAll)
	second := Process(txs).Entries(ViewAll)
	if len(first) != len(second) {
		t.Fatalf("len(Entries()) = %d then %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Transaction.Equal(second[i].Transaction) ||
			!first[i].RealizedProfit.Equal(second[i].RealizedProfit) ||
			first[i].RealizedProfitPct != second[i].RealizedProfitPct {
			t.Errorf("Entries()[%d] = %+v then %+v", i, first[i], second[i])
		}
	}
}

func TestBook_EntriesAreReverseChronological(t *testing.T) {
	b := Process([]Transaction{
		acquire("b", "2025-01-02T10:00:00Z", Main, 100, 10),
		acquire("c", "2025-01-03T10:00:00Z", Main, 100, 10),
		acquire("a", "2025-01-01T10:00:00Z", Main, 100, 10),
	})
	var ids []string
	for _, e := range b.Entries(ViewOf(Main)) {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
