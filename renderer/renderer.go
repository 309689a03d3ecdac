// Package renderer turns portfolio reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/portfolios"
)

//go:embed *.md
var templates embed.FS

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	// pct formats a value already expressed in percent.
	"pct": func(v float64) string { return portfolios.Percent(v).String() },
	// rate formats a fraction as a signed percentage.
	"rate": func(v float64) string { return portfolios.Rate(v).SignedString() },
	"num":  func(v float64) string { return fmt.Sprintf("%.4f", v) },
	"cell": func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
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

// OverviewReport is the data of the overview page.
type OverviewReport struct {
	Name string
	*portfolios.Overview
}

// RenderOverview renders the current holdings and the portfolio totals.
func RenderOverview(name string, o *portfolios.Overview) string {
	partials := map[string]string{
		"overview_holdings": "overview_holdings.md",
		"overview_summary":  "overview_summary.md",
		"warnings":          "warnings.md",
	}
	return renderTemplate("overview", "overview.md", partials, OverviewReport{Name: name, Overview: o})
}

// RenderPositions renders every position ever traded.
func RenderPositions(name string, positions []portfolios.Position) string {
	data := struct {
		Name      string
		Positions []portfolios.Position
	}{name, positions}
	return renderTemplate("positions", "positions.md", nil, data)
}

// RenderArchive renders the closed positions.
func RenderArchive(name string, closed []portfolios.ClosedPosition) string {
	data := struct {
		Name   string
		Closed []portfolios.ClosedPosition
	}{name, closed}
	return renderTemplate("archive", "archive.md", nil, data)
}

// TimeseriesReport is the data of the timeseries page.
type TimeseriesReport struct {
	Name   string
	Period string
	*portfolios.Timeseries
}

// RenderTimeseries renders a valuation series, one row per point.
func RenderTimeseries(name, period string, ts *portfolios.Timeseries) string {
	return renderTemplate("timeseries", "timeseries.md", nil, TimeseriesReport{Name: name, Period: period, Timeseries: ts})
}

// RenderReturns renders daily simple returns.
func RenderReturns(name string, r *portfolios.Returns) string {
	data := struct {
		Name string
		*portfolios.Returns
	}{name, r}
	return renderTemplate("returns", "returns.md", nil, data)
}

// RenderPerformance renders the yearly performance.
func RenderPerformance(name string, perf []portfolios.YearPerformance) string {
	data := struct {
		Name  string
		Years []portfolios.YearPerformance
	}{name, perf}
	return renderTemplate("performance", "performance.md", nil, data)
}

// BenchmarkReport is the data of the benchmark page.
type BenchmarkReport struct {
	*portfolios.BenchmarkSeries
	Cumulative []float64
}

// RenderBenchmark renders the benchmark closes with their log returns and
// the growth of 1 invested on the first day.
func RenderBenchmark(b *portfolios.BenchmarkSeries) string {
	return renderTemplate("benchmark", "benchmark.md", nil, BenchmarkReport{BenchmarkSeries: b, Cumulative: b.Cumulative()})
}

// LogReport is the data of the log page.
type LogReport struct {
	Name         string
	Transactions []portfolios.Transaction
	Warnings     []portfolios.Warning
}

// RenderLog renders the applied transactions in order and the warnings
// raised while applying them.
func RenderLog(name string, txs []portfolios.Transaction, warnings []portfolios.Warning) string {
	partials := map[string]string{"warnings": "warnings.md"}
	return renderTemplate("log", "log.md", partials, LogReport{Name: name, Transactions: txs, Warnings: warnings})
}

// RenderCostBases renders the cost of the held positions under each method.
func RenderCostBases(name string, bases []portfolios.CostBasis) string {
	data := struct {
		Name  string
		Bases []portfolios.CostBasis
	}{name, bases}
	return renderTemplate("lots", "lots.md", nil, data)
}
