package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portfolios/date"
	"github.com/etnz/portfolios/renderer"
	"github.com/google/subcommands"
)

// timeseriesCmd holds the flags for the 'timeseries' subcommand.
type timeseriesCmd struct {
	period string
}

func (*timeseriesCmd) Name() string     { return "timeseries" }
func (*timeseriesCmd) Synopsis() string { return "display the portfolio value over time" }
func (*timeseriesCmd) Usage() string {
	return `folio timeseries [-p <period>]

  Displays the cash, the market value of each security, the total and the
  deposited amount from the first transaction to today.
`
}

func (c *timeseriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "monthly", "Sampling period: daily, monthly or yearly")
}

func (c *timeseriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	ts := p.Timeseries().Sample(period)
	printMarkdown(renderer.RenderTimeseries(p.Name(), period.String(), ts))
	return subcommands.ExitSuccess
}

// returnsCmd holds the flags for the 'returns' subcommand.
type returnsCmd struct{}

func (*returnsCmd) Name() string     { return "returns" }
func (*returnsCmd) Synopsis() string { return "display the daily returns" }
func (*returnsCmd) Usage() string {
	return `folio returns

  Displays the daily simple return of the portfolio and of each held security.
`
}

func (c *returnsCmd) SetFlags(f *flag.FlagSet) {}

func (c *returnsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	printMarkdown(renderer.RenderReturns(p.Name(), p.Returns()))
	return subcommands.ExitSuccess
}

// performanceCmd holds the flags for the 'performance' subcommand.
type performanceCmd struct{}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "display the yearly performance" }
func (*performanceCmd) Usage() string {
	return `folio performance

  Displays, for each calendar year, the change of the growth ratio and of
  the return between the first and the last day of the year.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	printMarkdown(renderer.RenderPerformance(p.Name(), p.Performance()))
	return subcommands.ExitSuccess
}

// benchmarkCmd holds the flags for the 'benchmark' subcommand.
type benchmarkCmd struct {
	ticker string
}

func (*benchmarkCmd) Name() string     { return "benchmark" }
func (*benchmarkCmd) Synopsis() string { return "display a market index over the portfolio lifetime" }
func (*benchmarkCmd) Usage() string {
	return `folio benchmark [-t <ticker>]

  Displays the daily closes and log returns of a market index from the first
  transaction to today. The index defaults to the configured benchmark.
`
}

func (c *benchmarkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Index ticker, 'sp500' for the S&P 500")
}

func (c *benchmarkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, cfg, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	ticker := c.ticker
	if ticker == "" {
		ticker = cfg.Benchmark
	}
	b, err := p.Benchmark(ctx, ticker)
	if err != nil {
		return fail("loading benchmark", err)
	}
	printMarkdown(renderer.RenderBenchmark(b))
	return subcommands.ExitSuccess
}
