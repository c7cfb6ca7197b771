package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/nexus/httpapi"
	"github.com/etnz/nexus/insight"
	"github.com/etnz/nexus/logger"
	"github.com/etnz/nexus/store"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the ledger as a JSON API" }
func (*serveCmd) Usage() string {
	return `nx serve [-addr <host:port>]

  Serves the ledger over HTTP for a dashboard front end, under /api/v1.
  The insight endpoint is enabled when GEMINI_API_KEY is set.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Overrides NEXUS_LISTEN_ADDR.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("could not load configuration: %v", err)
	}
	if c.addr != "" {
		cfg.ListenAddr = c.addr
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Out: stderr})

	st, err := store.Open(cfg.LedgerFile, log)
	if err != nil {
		return fail("%v", err)
	}
	defer st.Close()

	var sum httpapi.Summarizer
	if cfg.GeminiAPIKey != "" {
		s, err := insight.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			return fail("%v", err)
		}
		sum = s
	} else {
		log.Warn().Msg("GEMINI_API_KEY is not set, insight is disabled")
	}

	srv, err := httpapi.New(httpapi.Config{
		Store:          st,
		MonthlyCeiling: cfg.MonthlyCeiling,
		FallbackPrice:  cfg.FallbackPrice,
		AllowedOrigins: cfg.AllowedOrigins,
		Summarizer:     sum,
		Logger:         log,
	})
	if err != nil {
		return fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}
