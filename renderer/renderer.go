// Package renderer formats ledger reports as markdown.
//
// Every report has a text/template in this directory; RenderXXX functions
// never fail, template errors are rendered in place of the report.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/nexus"
)

//go:embed *.md
var templates embed.FS

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	"qty":      func(q nexus.Quantity) string { return q.StringFixed(4) },
	"datetime": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
	"cell":     func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
	"bar":      func(p nexus.Percent) string { return strings.Repeat("█", int(p/5+0.5)) },
}

// RenderStats renders the stats of a view.
func RenderStats(s nexus.Stats) string {
	return renderTemplate("stats", "stats.md", map[string]string{
		"stats_table": "stats_table.md",
	}, s)
}

// RenderHistory renders the annotated history of a view, in the given order.
func RenderHistory(v nexus.View, entries []nexus.Entry) string {
	data := struct {
		View    nexus.View
		Entries []nexus.Entry
	}{v, entries}
	return renderTemplate("history", "history.md", nil, data)
}

// RenderMonthly renders the monthly spending tracker.
func RenderMonthly(m nexus.MonthlySpend) string {
	return renderTemplate("monthly", "monthly.md", nil, m)
}

// RenderScenarios renders the sale scenarios of a view. Extra projections,
// like a sale at a user supplied price, are appended as more rows.
func RenderScenarios(s nexus.Stats, scenarios []nexus.Scenario, extra ...nexus.Scenario) string {
	data := struct {
		nexus.Stats
		Scenarios []nexus.Scenario
	}{s, slices.Concat(scenarios, extra)}
	return renderTemplate("scenarios", "scenarios.md", nil, data)
}

// RenderProjection renders a simulated sale.
func RenderProjection(v nexus.View, averageCost nexus.Money, p nexus.Projection) string {
	data := struct {
		View        nexus.View
		AverageCost nexus.Money
		nexus.Projection
	}{v, averageCost, p}
	return renderTemplate("projection", "projection.md", nil, data)
}

// RenderTransaction renders a recorded transaction.
func RenderTransaction(title string, tx nexus.Transaction) string {
	data := struct {
		Title string
		nexus.Transaction
	}{title, tx}
	return renderTemplate("transaction", "transaction.md", nil, data)
}

// RenderAcquirePreview renders the impact of an acquisition on the average
// cost.
func RenderAcquirePreview(p nexus.AcquirePreview) string {
	return renderTemplate("preview", "preview.md", map[string]string{
		"preview_body": "preview_acquire.md",
	}, p)
}

// RenderDisposePreview renders the realized profit of a disposal.
func RenderDisposePreview(e nexus.Entry) string {
	return renderTemplate("preview", "preview.md", map[string]string{
		"preview_body": "preview_dispose.md",
	}, e)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
