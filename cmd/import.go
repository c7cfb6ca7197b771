package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/nexus"
	"github.com/google/subcommands"
)

type importCmd struct {
	path     string
	viewPath string
	replace  bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a JSON document" }
func (*importCmd) Usage() string {
	return `nx import [-path <jsonpath>] [-view-path <jsonpath>] [-replace] <file.json>

  Imports the transactions found at -path in a JSON document. The value at
  -path is either an array of transactions or a string holding one, as found
  in a browser local storage dump. Transactions written by earlier versions of
  the ledger (amountPesos, pricePerUsdt, COMPRA, VENTA...) are accepted.

  Imported transactions keep their id; those whose id is already in the ledger
  are skipped. With -replace, the ledger is replaced by the imported one.

Usage Examples:
$ nx import backup.json
$ nx import -path '$.usdt_transactions' -view-path '$.usdt_active_view' storage.json
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "path", "$", "JSONPath of the transactions in the document.")
	f.StringVar(&c.viewPath, "view-path", "", "JSONPath of the active view in the document, if any.")
	f.BoolVar(&c.replace, "replace", false, "Replace the ledger instead of merging into it.")
}

// selectValue returns the value at path in doc. A string value is itself
// decoded as JSON.
func selectValue(doc any, path string) (any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("could not evaluate %q: %w", path, err)
	}
	if s, ok := v.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			// A plain string, like a view selector.
			return s, nil
		}
		return inner, nil
	}
	return v, nil
}

// extractTransactions decodes the transactions at path in a JSON document.
func extractTransactions(data []byte, path string) ([]nexus.Transaction, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	v, err := selectValue(doc, path)
	if err != nil {
		return nil, err
	}
	if _, ok := v.([]any); !ok {
		return nil, fmt.Errorf("%q is not an array of transactions", path)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return nexus.DecodeTransactions(bytes.NewReader(raw))
}

// extractView decodes the view selector at path in a JSON document.
func extractView(data []byte, path string) (nexus.View, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("invalid JSON document: %w", err)
	}
	v, err := selectValue(doc, path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q is not a view selector", path)
	}
	return nexus.ParseView(s)
}

// merge returns the transactions of current followed by the imported ones
// whose id is new.
func merge(current, imported []nexus.Transaction) (merged []nexus.Transaction, skipped int) {
	seen := make(map[string]struct{}, len(current))
	for _, tx := range current {
		seen[tx.ID] = struct{}{}
	}
	merged = current
	for _, tx := range imported {
		if tx.ID != "" {
			if _, dup := seen[tx.ID]; dup {
				skipped++
				continue
			}
			seen[tx.ID] = struct{}{}
		}
		merged = append(merged, tx)
	}
	return merged, skipped
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("import expects a single file")
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail("%v", err)
	}
	imported, err := extractTransactions(data, c.path)
	if err != nil {
		return fail("%v", err)
	}

	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	v := s.Ledger.View()
	if strings.TrimSpace(c.viewPath) != "" {
		if v, err = extractView(data, c.viewPath); err != nil {
			return fail("%v", err)
		}
	}

	txs, skipped := imported, 0
	if !c.replace {
		txs, skipped = merge(s.Ledger.Transactions(), imported)
	}
	l, err := nexus.NewLedger(txs...)
	if err != nil {
		return fail("%v", err)
	}
	l.SetLogger(s.log)
	l.SetView(v)
	s.Ledger = l
	if err := s.save(); err != nil {
		return fail("%v", err)
	}
	fmt.Fprintf(stderr, "Imported %d transactions (%d skipped), the ledger holds %d.\n", len(imported)-skipped, skipped, l.Len())
	return subcommands.ExitSuccess
}
