// Package store loads and saves a nexus.Ledger.
//
// A store persists the whole ledger at once: Save replaces what was stored
// by the current set of transactions and the active view. Only the
// authoritative fields of the transactions are persisted, realized profits
// are recomputed on every replay.
//
// Loading is forgiving: malformed persisted data is logged and degrades to
// an empty ledger rather than failing.
package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/etnz/nexus"
	"github.com/rs/zerolog"
)

// Store is a whole snapshot persistence of a ledger.
type Store interface {
	// Load returns the persisted ledger, or an empty one.
	Load() (*nexus.Ledger, error)
	// Save replaces the persisted ledger with l.
	Save(l *nexus.Ledger) error
	Close() error
}

// Open opens the store at path. Files ending in .db, .sqlite or .sqlite3 are
// SQLite databases, anything else is a JSON file.
func Open(path string, log zerolog.Logger) (Store, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger file is required")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path, log)
	default:
		return NewFile(path, log), nil
	}
}

// restore builds the ledger from decoded data, degrading to an empty ledger
// when the data is inconsistent.
func restore(txs []nexus.Transaction, view string, log zerolog.Logger) *nexus.Ledger {
	l, err := nexus.NewLedger(txs...)
	if err != nil {
		log.Warn().Err(err).Msg("malformed ledger, starting from an empty one")
		l, _ = nexus.NewLedger()
	}
	l.SetLogger(log)
	v, err := nexus.ParseView(view)
	if err != nil {
		log.Warn().Err(err).Str("view", view).Msg("malformed view, using the default one")
		v = nexus.ViewOf(nexus.Main)
	}
	l.SetView(v)
	log.Debug().Int("transactions", l.Len()).Str("view", v.String()).Msg("ledger loaded")
	return l
}
