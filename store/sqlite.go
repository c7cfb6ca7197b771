package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/nexus"
	"github.com/etnz/nexus/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id           TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL,
	date         TEXT NOT NULL,
	type         TEXT NOT NULL,
	amount       TEXT NOT NULL,
	unit_price   TEXT NOT NULL,
	quantity     TEXT NOT NULL,
	note         TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// viewKey is the settings row holding the active view.
const viewKey = "active_view"

// SQLite stores the ledger in a SQLite database. Decimal values are stored
// as text to keep every digit.
type SQLite struct {
	db   *sql.DB
	path string
	log  zerolog.Logger
}

// OpenSQLite opens, and creates if needed, the database at path.
func OpenSQLite(path string, log zerolog.Logger) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{
		db:   db,
		path: path,
		log:  log.With().Str("store", "sqlite").Str("path", path).Logger(),
	}, nil
}

// Load implements Store.
func (s *SQLite) Load() (*nexus.Ledger, error) {
	rows, err := s.db.Query(`SELECT id, portfolio_id, date, type, amount, unit_price, quantity, note FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []nexus.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			s.log.Warn().Err(err).Msg("malformed transaction row")
			txs = nil
			break
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	var view string
	err = s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, viewKey).Scan(&view)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read view: %w", err)
	}
	return restore(txs, view, s.log), nil
}

func scanTransaction(rows *sql.Rows) (nexus.Transaction, error) {
	var id, portfolio, on, kind, amount, unitPrice, quantity, note string
	if err := rows.Scan(&id, &portfolio, &on, &kind, &amount, &unitPrice, &quantity, &note); err != nil {
		return nexus.Transaction{}, err
	}
	tx := nexus.Transaction{ID: id, Note: note}
	var err error
	if tx.Portfolio, err = nexus.ParsePortfolioID(portfolio); err != nil {
		return tx, err
	}
	if tx.Date, err = date.Parse(on); err != nil {
		return tx, err
	}
	if tx.Kind, err = nexus.ParseKind(kind); err != nil {
		return tx, err
	}
	var d decimal.Decimal
	if d, err = decimal.NewFromString(amount); err != nil {
		return tx, fmt.Errorf("transaction %q amount: %w", id, err)
	}
	tx.Amount = nexus.M(d)
	if d, err = decimal.NewFromString(unitPrice); err != nil {
		return tx, fmt.Errorf("transaction %q unit price: %w", id, err)
	}
	tx.UnitPrice = nexus.M(d)
	if d, err = decimal.NewFromString(quantity); err != nil {
		return tx, fmt.Errorf("transaction %q quantity: %w", id, err)
	}
	tx.Quantity = nexus.Q(d)
	return tx, nil
}

// Save implements Store. The whole table is replaced in one transaction.
func (s *SQLite) Save(l *nexus.Ledger) error {
	sqlTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.Exec(`DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	insert, err := sqlTx.Prepare(`
		INSERT INTO transactions (id, portfolio_id, date, type, amount, unit_price, quantity, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()
	for _, tx := range l.Transactions() {
		_, err := insert.Exec(
			tx.ID,
			tx.Portfolio.String(),
			date.Format(tx.Date),
			tx.Kind.String(),
			tx.Amount.Decimal().String(),
			tx.UnitPrice.Decimal().String(),
			tx.Quantity.String(),
			tx.Note,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %q: %w", tx.ID, err)
		}
	}
	_, err = sqlTx.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, viewKey, l.View().String())
	if err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}
	if err := sqlTx.Commit(); err != nil {
		s.log.Error().Err(err).Msg("could not save ledger")
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.log.Debug().Int("transactions", l.Len()).Msg("ledger saved")
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error { return s.db.Close() }
