package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/nexus"
	"github.com/etnz/nexus/date"
	"github.com/etnz/nexus/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tradeFlags are the flags shared by the commands entering a trade.
type tradeFlags struct {
	date      string
	portfolio string
	amount    string
	quantity  string
	price     string
	note      string
}

func (t *tradeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.date, "d", "", "Transaction date and time (YYYY-MM-DD or YYYY-MM-DDTHH:MM). Defaults to now.")
	f.StringVar(&t.portfolio, "p", "", "Book of the transaction (main or trading). Defaults to the active view.")
	f.StringVar(&t.amount, "a", "", "Amount in local currency. The quantity is amount/price.")
	f.StringVar(&t.quantity, "q", "", "Quantity of the asset. The amount is quantity×price.")
	f.StringVar(&t.price, "price", "", "Unit price in local currency.")
	f.StringVar(&t.note, "m", "", "An optional note for the transaction.")
}

// parseDecimal parses the value of flag name, zero when empty.
func parseDecimal(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid -%s %q: %w", name, value, err)
	}
	return d, nil
}

// transaction builds the trade described by the flags.
func (t *tradeFlags) transaction(kind nexus.Kind, s *session) (nexus.Transaction, error) {
	p := s.Ledger.View().Target()
	if t.portfolio != "" {
		var err error
		if p, err = nexus.ParsePortfolioID(t.portfolio); err != nil {
			return nexus.Transaction{}, err
		}
	}
	at := s.Now()
	if t.date != "" {
		var err error
		if at, err = date.Parse(t.date); err != nil {
			return nexus.Transaction{}, err
		}
	}
	if t.price == "" {
		return nexus.Transaction{}, fmt.Errorf("-price is required")
	}
	price, err := parseDecimal("price", t.price)
	if err != nil {
		return nexus.Transaction{}, err
	}
	amount, err := parseDecimal("a", t.amount)
	if err != nil {
		return nexus.Transaction{}, err
	}
	quantity, err := parseDecimal("q", t.quantity)
	if err != nil {
		return nexus.Transaction{}, err
	}
	tx, err := nexus.NewTrade(kind, at, p, nexus.M(price), nexus.M(amount), nexus.Q(quantity))
	if err != nil {
		return nexus.Transaction{}, err
	}
	return tx.WithNote(strings.TrimSpace(t.note)), nil
}

// record validates and appends a trade, then saves the ledger.
func record(kind nexus.Kind, flags *tradeFlags) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	tx, err := flags.transaction(kind, s)
	if err != nil {
		return usage("%v", err)
	}
	tx, err = s.Record(tx)
	if err != nil {
		return fail("%v", err)
	}
	if err := s.save(); err != nil {
		return fail("%v", err)
	}
	printMarkdown(renderer.RenderTransaction("Recorded", tx))
	return subcommands.ExitSuccess
}

// --- Acquire Command ---

type acquireCmd struct {
	tradeFlags
}

func (*acquireCmd) Name() string     { return "acquire" }
func (*acquireCmd) Synopsis() string { return "record an acquisition of the asset" }
func (*acquireCmd) Usage() string {
	return `nx acquire (-a <amount> | -q <quantity>) -price <unit price> [-d <date>] [-p <book>] [-m <note>]

  Records an acquisition, entered either by the amount spent in local currency
  or by the quantity received.

Usage Examples:
$ nx acquire -a 5000 -price 19.45
$ nx acquire -q 250 -price 19.45 -p trading -m "p2p offer"
`
}

func (c *acquireCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return record(nexus.Acquire, &c.tradeFlags)
}

// --- Dispose Command ---

type disposeCmd struct {
	tradeFlags
}

func (*disposeCmd) Name() string     { return "dispose" }
func (*disposeCmd) Synopsis() string { return "record a disposal of the asset" }
func (*disposeCmd) Usage() string {
	return `nx dispose [-a <amount> | -q <quantity>] -price <unit price> [-d <date>] [-p <book>] [-m <note>]

  Records a disposal, entered either by the proceeds in local currency or by
  the quantity sold. Without -a and -q, the whole balance of the book on that
  date is disposed of.

  The disposal is rejected when the book does not hold enough units on its
  date.
`
}

func (c *disposeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return record(nexus.Dispose, &c.tradeFlags)
}

// --- Preview Command ---

type previewCmd struct {
	tradeFlags
}

func (*previewCmd) Name() string { return "preview" }
func (*previewCmd) Synopsis() string {
	return "show the impact of an acquisition or a disposal without recording it"
}
func (*previewCmd) Usage() string {
	return `nx preview acquire|dispose (-a <amount> | -q <quantity>) -price <unit price> [-d <date>] [-p <book>]

  For an acquisition, shows the average cost of the book before and after.
  For a disposal, shows the realized profit it would produce.
`
}

func (c *previewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("preview expects acquire or dispose")
	}
	kind, err := nexus.ParseKind(f.Arg(0))
	if err != nil {
		return usage("%v", err)
	}

	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	tx, err := c.transaction(kind, s)
	if err != nil {
		return usage("%v", err)
	}
	switch kind {
	case nexus.Acquire:
		p, err := s.PreviewAcquire(tx)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.RenderAcquirePreview(p))
	default:
		e, err := s.PreviewDispose(tx)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.RenderDisposePreview(e))
	}
	return subcommands.ExitSuccess
}

// --- Adjust Command ---

type adjustCmd struct {
	portfolio string
	balance   string
}

func (*adjustCmd) Name() string     { return "adjust" }
func (*adjustCmd) Synopsis() string { return "reconcile a book with the balance actually held" }
func (*adjustCmd) Usage() string {
	return `nx adjust -balance <observed> [-p <book>]

  Records an adjustment bringing the balance of the book to the observed one.
  Nothing is recorded when the difference is negligible. The adjustment is
  valued at the current average cost: it changes the cost basis but never the
  realized profit.
`
}

func (c *adjustCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Book to reconcile (main or trading). Defaults to the active view.")
	f.StringVar(&c.balance, "balance", "", "Balance actually held.")
}

func (c *adjustCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.balance == "" {
		return usage("-balance is required")
	}
	observed, err := parseDecimal("balance", c.balance)
	if err != nil {
		return usage("%v", err)
	}
	if observed.IsNegative() {
		return usage("-balance must not be negative")
	}

	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	p := s.Ledger.View().Target()
	if c.portfolio != "" {
		if p, err = nexus.ParsePortfolioID(c.portfolio); err != nil {
			return usage("%v", err)
		}
	}
	tx, ok, err := s.Adjust(p, nexus.Q(observed))
	if err != nil {
		return fail("%v", err)
	}
	if !ok {
		fmt.Fprintf(stderr, "%s already holds %s, nothing to adjust.\n", p.Label(), observed.StringFixed(4))
		return subcommands.ExitSuccess
	}
	if err := s.save(); err != nil {
		return fail("%v", err)
	}
	printMarkdown(renderer.RenderTransaction("Adjusted", tx))
	return subcommands.ExitSuccess
}

// --- Rm Command ---

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove transactions from the ledger" }
func (*rmCmd) Usage() string {
	return `nx rm <id>...

  Removes the transactions with the given ids. The realized profits of the
  remaining transactions are recomputed.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage("rm expects at least one transaction id")
	}
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	for _, id := range f.Args() {
		tx, err := s.Delete(id)
		if err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stderr, "Removed %s %s of %s.\n", tx.Kind, tx.ID, date.Format(tx.Date))
	}
	if err := s.save(); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}
