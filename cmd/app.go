// Package cmd implements the nx command line application.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/nexus"
	"github.com/etnz/nexus/config"
	"github.com/etnz/nexus/logger"
	"github.com/etnz/nexus/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ledgerFile = flag.String("ledger-file", "", "Path to the ledger: a JSON file, or a SQLite database when it ends in .db or .sqlite. Overrides NEXUS_LEDGER_FILE.")
	Verbose    = flag.Bool("v", false, "Log debug messages.")
)

// Reports go to stdout, messages to stderr. Tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Commands lists every nx subcommand, grouped for the help output.
var Commands = []struct {
	Group   string
	Command subcommands.Command
}{
	{"transactions", &acquireCmd{}},
	{"transactions", &disposeCmd{}},
	{"transactions", &adjustCmd{}},
	{"transactions", &rmCmd{}},
	{"transactions", &previewCmd{}},
	{"transactions", &importCmd{}},
	{"reports", &historyCmd{}},
	{"reports", &statsCmd{}},
	{"reports", &monthlyCmd{}},
	{"reports", &scenariosCmd{}},
	{"reports", &simulateCmd{}},
	{"reports", &exportCmd{}},
	{"reports", &insightCmd{}},
	{"settings", &viewCmd{}},
	{"server", &serveCmd{}},
	{"help", &topicCmd{}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

// loadConfig reads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *ledgerFile != "" {
		cfg.LedgerFile = *ledgerFile
	}
	if *Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// session is the ledger opened for a single command.
type session struct {
	*nexus.AccountingSystem
	cfg   *config.Config
	log   zerolog.Logger
	store store.Store
}

// openSession loads the configuration, opens the store and loads the ledger.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Out: stderr})
	st, err := store.Open(cfg.LedgerFile, log)
	if err != nil {
		return nil, err
	}
	l, err := st.Load()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("could not load ledger %q: %w", cfg.LedgerFile, err)
	}
	as, err := nexus.NewAccountingSystem(l, cfg.MonthlyCeiling, cfg.FallbackPrice)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &session{AccountingSystem: as, cfg: cfg, log: log, store: st}, nil
}

// save persists the ledger.
func (s *session) save() error {
	if err := s.store.Save(s.Ledger); err != nil {
		return fmt.Errorf("could not save ledger %q: %w", s.cfg.LedgerFile, err)
	}
	return nil
}

func (s *session) Close() error { return s.store.Close() }

// view resolves a -view flag, the active view when empty.
func (s *session) view(flagValue string) (nexus.View, error) {
	if flagValue == "" {
		return s.Ledger.View(), nil
	}
	return nexus.ParseView(flagValue)
}

// renderMarkdown formats markdown for the terminal. Tests replace it.
var renderMarkdown = func(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printMarkdown(md string) { fmt.Fprint(stdout, renderMarkdown(md)) }

// fail prints err and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// usage prints a usage error and returns the usage status.
func usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}
