package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/nexus"
	"github.com/etnz/nexus/renderer"
	"github.com/google/subcommands"
)

// --- History Command ---

type historyCmd struct {
	view      string
	sort      string
	ascending bool
	json      bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list the transactions of a view with their realized profit" }
func (*historyCmd) Usage() string {
	return `nx history [-view <view>] [-sort date|quantity|amount|profit] [-asc] [-json]

  Lists the transactions of a view, most recent first by default. Disposals
  show the profit they realized against the average cost at their date.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.view, "view", "", "View to report on (main, trading or all). Defaults to the active view.")
	f.StringVar(&c.sort, "sort", "date", "Sort key: date, quantity, amount or profit.")
	f.BoolVar(&c.ascending, "asc", false, "Sort in ascending order.")
	f.BoolVar(&c.json, "json", false, "Print the annotated transactions as JSON.")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := nexus.ParseSortKey(c.sort)
	if err != nil {
		return usage("%v", err)
	}
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	v, err := s.view(c.view)
	if err != nil {
		return usage("%v", err)
	}
	entries := s.Entries(v)
	if key != nexus.ByDate || c.ascending {
		entries = nexus.SortEntries(entries, key, c.ascending)
	}
	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fail("%v", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderHistory(v, entries))
	return subcommands.ExitSuccess
}

// --- Stats Command ---

type statsCmd struct {
	view string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show balance, average cost and profits of a view" }
func (*statsCmd) Usage() string {
	return `nx stats [-view <view>]

  Shows the balance, the total invested, the weighted average cost, the
  realized profit, and the holdings valued at the last traded price.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.view, "view", "", "View to report on (main, trading or all). Defaults to the active view.")
}

func (c *statsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	v, err := s.view(c.view)
	if err != nil {
		return usage("%v", err)
	}
	printMarkdown(renderer.RenderStats(s.Stats(v)))
	return subcommands.ExitSuccess
}

// --- Monthly Command ---

type monthlyCmd struct{}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "show this month's spending against the ceiling" }
func (*monthlyCmd) Usage() string {
	return `nx monthly

  Sums the acquisitions of every book in the current calendar month (UTC) and
  compares them with NEXUS_MONTHLY_CEILING.
`
}

func (*monthlyCmd) SetFlags(*flag.FlagSet) {}

func (*monthlyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	printMarkdown(renderer.RenderMonthly(s.Monthly()))
	return subcommands.ExitSuccess
}

// --- Scenarios Command ---

type scenariosCmd struct {
	view  string
	price string
}

func (*scenariosCmd) Name() string     { return "scenarios" }
func (*scenariosCmd) Synopsis() string { return "project the sale of the whole balance" }
func (*scenariosCmd) Usage() string {
	return `nx scenarios [-view <view>] [-price <unit price>]

  Projects the sale of the whole balance at break even and at +2%, +5% and
  +10% over the average cost, and at -price when given.
`
}

func (c *scenariosCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.view, "view", "", "View to project (main, trading or all). Defaults to the active view.")
	f.StringVar(&c.price, "price", "", "An additional sale price to project.")
}

func (c *scenariosCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	price, err := parseDecimal("price", c.price)
	if err != nil {
		return usage("%v", err)
	}
	if price.IsNegative() {
		return usage("-price must be positive")
	}
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	v, err := s.view(c.view)
	if err != nil {
		return usage("%v", err)
	}
	st := s.Stats(v)
	var extra []nexus.Scenario
	if price.IsPositive() {
		at := nexus.M(price)
		extra = append(extra, nexus.Scenario{Label: "At " + at.String(), Projection: s.AtPrice(v, at)})
	}
	printMarkdown(renderer.RenderScenarios(st, s.Scenarios(v), extra...))
	return subcommands.ExitSuccess
}

// --- Simulate Command ---

type simulateCmd struct {
	view     string
	quantity string
	price    string
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "project the sale of a quantity at a price" }
func (*simulateCmd) Usage() string {
	return `nx simulate -q <quantity> -price <unit price> [-view <view>]

  Projects the proceeds and the profit of selling a quantity at a price,
  against the average cost of the view. The quantity is not checked against
  the balance.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.view, "view", "", "View whose average cost is used. Defaults to the active view.")
	f.StringVar(&c.quantity, "q", "", "Quantity to sell.")
	f.StringVar(&c.price, "price", "", "Unit price of the sale.")
}

func (c *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.quantity == "" || c.price == "" {
		return usage("-q and -price are required")
	}
	quantity, err := parseDecimal("q", c.quantity)
	if err != nil {
		return usage("%v", err)
	}
	price, err := parseDecimal("price", c.price)
	if err != nil {
		return usage("%v", err)
	}
	if quantity.IsNegative() || !price.IsPositive() {
		return usage("-q must not be negative and -price must be positive")
	}
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	v, err := s.view(c.view)
	if err != nil {
		return usage("%v", err)
	}
	avg := s.Stats(v).AverageCost
	printMarkdown(renderer.RenderProjection(v, avg, s.Simulate(v, nexus.Q(quantity), nexus.M(price))))
	return subcommands.ExitSuccess
}

// --- Export Command ---

type exportCmd struct {
	view   string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the history of a view as CSV" }
func (*exportCmd) Usage() string {
	return `nx export [-view <view>] [-o <file>]

  Writes the annotated history of a view as CSV, most recent first.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.view, "view", "", "View to export (main, trading or all). Defaults to the active view.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	v, err := s.view(c.view)
	if err != nil {
		return usage("%v", err)
	}

	w := stdout
	if c.output != "" {
		out, err := os.Create(c.output)
		if err != nil {
			return fail("%v", err)
		}
		defer out.Close()
		w = out
	}
	if err := nexus.WriteCSV(w, s.Entries(v)); err != nil {
		return fail("%v", err)
	}
	if c.output != "" {
		fmt.Fprintf(stderr, "Exported %s to %s.\n", v.Label(), c.output)
	}
	return subcommands.ExitSuccess
}
