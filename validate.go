package nexus

import (
	"time"

	"github.com/shopspring/decimal"
)

// balanceTolerance absorbs rounding when a disposal empties a book.
var balanceTolerance = Q(decimal.New(1, -4))

// StateAsOf replays the transactions of book p dated at or before at.
func StateAsOf(txs []Transaction, p PortfolioID, at time.Time) PortfolioState {
	var s PortfolioState
	for _, tx := range Chronological(txs) {
		if tx.Date.After(at) {
			break
		}
		if tx.Portfolio == p {
			s.apply(tx)
		}
	}
	return s
}

// BalanceAsOf returns the balance of book p at instant at.
func BalanceAsOf(txs []Transaction, p PortfolioID, at time.Time) Quantity {
	return StateAsOf(txs, p, at).Balance
}

// CheckBalance verifies that tx can be inserted into txs: a disposal must not
// exceed the balance of its book as of its own date. Back-dated disposals are
// checked against the history before them, not against the current balance.
//
// It returns an *InsufficientBalanceError, matching ErrInsufficientBalance.
func CheckBalance(txs []Transaction, tx Transaction) error {
	if tx.Kind != Dispose {
		return nil
	}
	available := BalanceAsOf(txs, tx.Portfolio, tx.Date)
	if tx.Quantity.GreaterThan(available.Add(balanceTolerance)) {
		return &InsufficientBalanceError{
			Portfolio: tx.Portfolio,
			Requested: tx.Quantity,
			Available: available,
		}
	}
	return nil
}
