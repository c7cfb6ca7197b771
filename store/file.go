package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/nexus"
	"github.com/rs/zerolog"
)

// File stores the transactions as a JSON array in a file, and the active
// view in a sidecar file next to it (see ViewPath).
type File struct {
	path string
	log  zerolog.Logger
}

// NewFile returns the JSON file store at path. The file does not need to
// exist yet.
func NewFile(path string, log zerolog.Logger) *File {
	return &File{
		path: path,
		log:  log.With().Str("store", "file").Str("path", path).Logger(),
	}
}

// Path returns the path of the transactions file.
func (s *File) Path() string { return s.path }

// ViewPath returns the path of the file holding the active view.
func (s *File) ViewPath() string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path)) + ".view"
}

// Load implements Store. A missing file is an empty ledger.
func (s *File) Load() (*nexus.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not read ledger file %q: %w", s.path, err)
	}
	txs, err := nexus.DecodeTransactions(bytes.NewReader(data))
	if err != nil {
		s.log.Warn().Err(err).Msg("could not decode ledger file")
		txs = nil
	}

	view, err := os.ReadFile(s.ViewPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not read view file %q: %w", s.ViewPath(), err)
	}
	return restore(txs, string(view), s.log), nil
}

// Save implements Store. Files are replaced atomically.
func (s *File) Save(l *nexus.Ledger) error {
	var buf bytes.Buffer
	if err := nexus.EncodeTransactions(&buf, l.Transactions()); err != nil {
		return err
	}
	if err := writeFile(s.path, buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("could not save ledger")
		return fmt.Errorf("could not save ledger file %q: %w", s.path, err)
	}
	if err := writeFile(s.ViewPath(), []byte(l.View().String()+"\n")); err != nil {
		s.log.Error().Err(err).Msg("could not save view")
		return fmt.Errorf("could not save view file %q: %w", s.ViewPath(), err)
	}
	s.log.Debug().Int("transactions", l.Len()).Msg("ledger saved")
	return nil
}

// Close implements Store.
func (s *File) Close() error { return nil }

// writeFile writes data to a temporary file renamed to path.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
