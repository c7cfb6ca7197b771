package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/nexus"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// table is a markdown table read back from a rendered report.
type table struct {
	header []string
	rows   [][]string
}

// textOf concatenates the text segments below n.
func textOf(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// parseReport parses a rendered report and returns its headings and tables.
func parseReport(t *testing.T, report string) (headings []string, tables []table) {
	t.Helper()
	src := []byte(report)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			headings = append(headings, textOf(n, src))
		case *east.Table:
			var tb table
			for row := n.FirstChild(); row != nil; row = row.NextSibling() {
				var cells []string
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					cells = append(cells, textOf(cell, src))
				}
				if _, ok := row.(*east.TableHeader); ok {
					tb.header = cells
				} else {
					tb.rows = append(tb.rows, cells)
				}
			}
			tables = append(tables, tb)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return headings, tables
}

func sampleBook() *nexus.Book {
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := nexus.NewAcquire(day, nexus.Main, nexus.M(1000), nexus.M(10))
	a.ID = "a"
	b := nexus.NewDispose(day.AddDate(0, 0, 1), nexus.Main, nexus.Q(50), nexus.M(12)).WithNote("sold | p2p")
	b.ID = "b"
	c := nexus.NewAdjustment(day.AddDate(0, 0, 2), nexus.Main, nexus.Q(-25), nexus.M(10))
	c.ID = "c"
	return nexus.Process([]nexus.Transaction{a, b, c})
}

func TestRenderStats(t *testing.T) {
	s := nexus.NewStats(sampleBook(), nexus.ViewOf(nexus.Main), nexus.DefaultReferencePrice)
	headings, tables := parseReport(t, RenderStats(s))

	if diff := cmp.Diff([]string{"Main investment"}, headings); diff != "" {
		t.Errorf("RenderStats() headings mismatch (-want +got):\n%s", diff)
	}
	if len(tables) != 1 {
		t.Fatalf("RenderStats() has %d tables, want 1", len(tables))
	}
	want := [][]string{
		{"Balance", "25.0000"},
		{"Total invested", "$250.00"},
		{"Average cost", "$10.00"},
		{"Realized profit", "+$100.00"},
		{"Reference price", "$12.00"},
		{"Estimated value", "$300.00"},
		{"Unrealized profit", "+$50.00"},
	}
	if diff := cmp.Diff(want, tables[0].rows); diff != "" {
		t.Errorf("RenderStats() rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderHistory(t *testing.T) {
	entries := sampleBook().Entries(nexus.ViewAll)
	_, tables := parseReport(t, RenderHistory(nexus.ViewAll, entries))
	if len(tables) != 1 {
		t.Fatalf("RenderHistory() has %d tables, want 1", len(tables))
	}
	tb := tables[0]
	if len(tb.header) != 8 || len(tb.rows) != 3 {
		t.Fatalf("RenderHistory() table is %dx%d, want 8 columns and 3 rows", len(tb.header), len(tb.rows))
	}
	if got := tb.rows[0][2]; got != "ADJUST" {
		t.Errorf("first row type = %q, want ADJUST", got)
	}
	if got := tb.rows[1][6]; got != "+$100.00 (+20.00%)" {
		t.Errorf("disposal realized profit = %q, want %q", got, "+$100.00 (+20.00%)")
	}
	if got := tb.rows[1][7]; !strings.Contains(got, "p2p") {
		t.Errorf("disposal note = %q, want it in a single cell", got)
	}
	if got := tb.rows[2][6]; got != "" {
		t.Errorf("acquisition realized profit = %q, want empty", got)
	}
}

func TestRenderHistory_Empty(t *testing.T) {
	got := RenderHistory(nexus.ViewOf(nexus.Trading), nil)
	if !strings.Contains(got, "No transactions yet.") {
		t.Errorf("RenderHistory(nil) = %q, want the empty message", got)
	}
}

func TestRenderMonthly(t *testing.T) {
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := nexus.NewAcquire(day, nexus.Main, nexus.M(200000), nexus.M(20))
	b := nexus.NewAcquire(day.AddDate(0, 0, 3), nexus.Trading, nexus.M(100000), nexus.M(20))
	m := nexus.NewMonthlySpend([]nexus.Transaction{a, b}, day.AddDate(0, 0, 10), nexus.DefaultMonthlyCeiling)

	headings, tables := parseReport(t, RenderMonthly(m))
	if diff := cmp.Diff([]string{"Monthly spending: 2025-03", "Acquisitions"}, headings); diff != "" {
		t.Errorf("RenderMonthly() headings mismatch (-want +got):\n%s", diff)
	}
	if len(tables) != 2 {
		t.Fatalf("RenderMonthly() has %d tables, want 2", len(tables))
	}
	want := [][]string{
		{"Ceiling", "$291,853.13"},
		{"Spent", "$300,000.00"},
		{"Remaining", "$0.00"},
		{"Consumed", "100.00%"},
		{"Status", "critical"},
	}
	if diff := cmp.Diff(want, tables[0].rows); diff != "" {
		t.Errorf("RenderMonthly() rows mismatch (-want +got):\n%s", diff)
	}
	if got := tables[1].rows[1][2]; got != strings.Repeat("█", 10) {
		t.Errorf("second bar = %q, want half of the first", got)
	}
}

func TestRenderScenarios(t *testing.T) {
	s := nexus.NewStats(sampleBook(), nexus.ViewOf(nexus.Main), nexus.DefaultReferencePrice)
	extra := nexus.Scenario{Label: "At $14.00", Projection: nexus.Project(s.Balance, s.AverageCost, nexus.M(14))}
	_, tables := parseReport(t, RenderScenarios(s, nexus.Scenarios(s.Balance, s.AverageCost), extra))
	if len(tables) != 1 || len(tables[0].rows) != 5 {
		t.Fatalf("RenderScenarios() tables = %+v, want one table of 5 rows", tables)
	}
	want := []string{"Target +10%", "$11.00", "$275.00", "+$25.00", "+10.00%"}
	if diff := cmp.Diff(want, tables[0].rows[3]); diff != "" {
		t.Errorf("RenderScenarios() +10%% row mismatch (-want +got):\n%s", diff)
	}
	if got := tables[0].rows[4][0]; got != "At $14.00" {
		t.Errorf("RenderScenarios() extra row = %q", got)
	}
}

func TestRenderTransaction(t *testing.T) {
	tx := nexus.NewAcquire(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), nexus.Trading, nexus.M(1000), nexus.M(20))
	tx.ID = "abc"
	headings, tables := parseReport(t, RenderTransaction("Recorded", tx))
	if diff := cmp.Diff([]string{"Recorded"}, headings); diff != "" {
		t.Errorf("RenderTransaction() headings mismatch (-want +got):\n%s", diff)
	}
	if len(tables) != 1 || len(tables[0].rows) != 7 {
		t.Fatalf("RenderTransaction() tables = %+v, want one table of 7 rows", tables)
	}
	if got := tables[0].rows[4][1]; got != "50.0000" {
		t.Errorf("RenderTransaction() quantity = %q, want 50.0000", got)
	}
}

func TestRenderPreviews(t *testing.T) {
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p := nexus.AcquirePreview{
		Transaction: nexus.NewAcquire(day, nexus.Main, nexus.M(2000), nexus.M(20)),
		Current:     nexus.M(10),
		New:         nexus.M(15),
		Delta:       nexus.M(5),
	}
	headings, tables := parseReport(t, RenderAcquirePreview(p))
	if diff := cmp.Diff([]string{"Preview: ACQUIRE in Main investment"}, headings); diff != "" {
		t.Errorf("RenderAcquirePreview() headings mismatch (-want +got):\n%s", diff)
	}
	if len(tables) != 1 || tables[0].rows[4][1] != "+$5.00" {
		t.Errorf("RenderAcquirePreview() tables = %+v", tables)
	}

	e := nexus.Entry{
		Transaction:       nexus.NewDispose(day, nexus.Trading, nexus.Q(50), nexus.M(12)),
		RealizedProfit:    nexus.M(100),
		RealizedProfitPct: 20,
	}
	_, tables = parseReport(t, RenderDisposePreview(e))
	if len(tables) != 1 || tables[0].rows[3][1] != "+20.00%" {
		t.Errorf("RenderDisposePreview() tables = %+v", tables)
	}
}

func TestRenderProjection(t *testing.T) {
	p := nexus.Project(nexus.Q(10), nexus.M(10), nexus.M(9))
	_, tables := parseReport(t, RenderProjection(nexus.ViewAll, nexus.M(10), p))
	if len(tables) != 1 {
		t.Fatalf("RenderProjection() has %d tables, want 1", len(tables))
	}
	if got := tables[0].rows[4][1]; got != "-$10.00" {
		t.Errorf("RenderProjection() profit = %q, want -$10.00", got)
	}
}
