package nexus

import (
	"fmt"
	"slices"

	"github.com/etnz/nexus/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ledger is the set of transactions plus the active view selector.
//
// It only supports append and remove; reports are derived from a replay of
// the whole set (see Book). The last replay is memoized until the next
// mutation.
//
// A Ledger is not safe for concurrent use: mutations must be serialized by
// the caller.
type Ledger struct {
	transactions []Transaction
	view         View
	book         *Book // memoized replay, nil when stale.
	log          zerolog.Logger
}

// NewLedger creates a ledger holding txs. Transactions without an id get a
// fresh one; duplicated ids and malformed transactions are rejected.
func NewLedger(txs ...Transaction) (*Ledger, error) {
	l := &Ledger{
		transactions: make([]Transaction, 0, len(txs)),
		view:         ViewOf(Main),
		log:          zerolog.Nop(),
	}
	seen := make(map[string]struct{}, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if _, dup := seen[tx.ID]; dup {
			return nil, fmt.Errorf("transaction #%d: %w: %q", i, ErrDuplicateID, tx.ID)
		}
		seen[tx.ID] = struct{}{}
		tx.Date = date.Truncate(tx.Date)
		if err := tx.Check(); err != nil {
			return nil, fmt.Errorf("transaction #%d %q: %w", i, tx.ID, err)
		}
		l.transactions = append(l.transactions, tx)
	}
	return l, nil
}

// SetLogger sets the logger used to trace mutations.
func (l *Ledger) SetLogger(log zerolog.Logger) { l.log = log }

// Append adds tx under a fresh id and returns the stored transaction.
// Balance checks are not performed here, see AccountingSystem.Record.
func (l *Ledger) Append(tx Transaction) (Transaction, error) {
	if err := tx.Check(); err != nil {
		return Transaction{}, err
	}
	tx.ID = uuid.NewString()
	tx.Date = date.Truncate(tx.Date)
	l.transactions = append(l.transactions, tx)
	l.book = nil
	l.log.Debug().
		Str("id", tx.ID).
		Str("portfolio", tx.Portfolio.String()).
		Str("type", tx.Kind.String()).
		Str("quantity", tx.Quantity.String()).
		Msg("append transaction")
	return tx, nil
}

// Remove deletes the transaction with the given id. Other transactions are
// untouched, even if the deletion makes their history inconsistent; the next
// replay reflects the new set.
func (l *Ledger) Remove(id string) (Transaction, error) {
	i := slices.IndexFunc(l.transactions, func(tx Transaction) bool { return tx.ID == id })
	if i < 0 {
		return Transaction{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	tx := l.transactions[i]
	l.transactions = slices.Delete(l.transactions, i, i+1)
	l.book = nil
	l.log.Debug().Str("id", id).Str("type", tx.Kind.String()).Msg("remove transaction")
	return tx, nil
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	i := slices.IndexFunc(l.transactions, func(tx Transaction) bool { return tx.ID == id })
	if i < 0 {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// Transactions returns a copy of the transactions, in insertion order.
func (l *Ledger) Transactions() []Transaction { return slices.Clone(l.transactions) }

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// View returns the active view.
func (l *Ledger) View() View { return l.view }

// SetView changes the active view.
func (l *Ledger) SetView(v View) { l.view = v }

// Book returns the replay of the current set of transactions.
func (l *Ledger) Book() *Book {
	if l.book == nil {
		l.book = Process(l.transactions)
	}
	return l.book
}
