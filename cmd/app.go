// Package cmd implements the CLI application to report on a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/portfolios"
	"github.com/etnz/portfolios/date"
	"github.com/etnz/portfolios/eodhd"
	"github.com/google/subcommands"
)

// Reports are the report subcommands, in help order.
var Reports = []subcommands.Command{
	&overviewCmd{},
	&positionsCmd{},
	&lotsCmd{},
	&archiveCmd{},
	&timeseriesCmd{},
	&returnsCmd{},
	&performanceCmd{},
	&benchmarkCmd{},
	&logCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Reports {
		c.Register(cmd, "reports")
	}
	c.Register(&searchCmd{}, "securities")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "folio.toml", "Path to the TOML configuration file")
var ledgerGlob = flag.String("ledger", "*.csv", "Glob of the CSV files holding the transactions")
var todayFlag = flag.String("today", "", "Report as of this date instead of today (YYYY-MM-DD)")
var rawFlag = flag.Bool("raw", false, "Print plain markdown instead of rendering it for the terminal")

// stdout receives the reports.
var stdout io.Writer = os.Stdout

// loadConfig reads the configuration file, defaults apply when it does not exist.
func loadConfig() (*portfolios.Config, error) {
	return portfolios.LoadConfig(*configFile)
}

// newLogger returns a logger writing to stderr at the configured level.
func newLogger(cfg *portfolios.Config) *portfolios.Logger {
	return portfolios.NewLogger(cfg.Logging.Level, os.Stderr)
}

// newClient returns the EODHD client described by cfg.
func newClient(cfg *portfolios.Config, logger *portfolios.Logger) *eodhd.Client {
	return eodhd.New(cfg.EODHD.APIKey,
		eodhd.WithBaseURL(cfg.EODHD.BaseURL),
		eodhd.WithTimeout(cfg.EODHD.GetTimeout()),
		eodhd.WithLogger(logger),
		eodhd.WithCacheDir(filepath.Join(cfg.DataDir, "http")),
	)
}

// readLedger reads every CSV file matching the ledger glob, one batch per file.
func readLedger() ([][]portfolios.Row, error) {
	files, err := filepath.Glob(*ledgerGlob)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger pattern %q: %w", *ledgerGlob, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no ledger file matches %q", *ledgerGlob)
	}
	slices.Sort(files)
	batches := make([][]portfolios.Row, 0, len(files))
	for _, file := range files {
		rows, err := readFile(file)
		if err != nil {
			return nil, err
		}
		batches = append(batches, rows)
	}
	return batches, nil
}

func readFile(name string) ([]portfolios.Row, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := portfolios.ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}

// openPortfolio loads the configuration and replays the ledger.
//
// Prices are fetched from EODHD and kept in the data directory, which serves
// them when EODHD cannot be reached.
func openPortfolio(ctx context.Context) (*portfolios.Portfolio, *portfolios.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)
	provider := portfolios.NewFileCache(filepath.Join(cfg.DataDir, "prices"), newClient(cfg, logger), logger)

	opts := append(cfg.Options(), portfolios.WithLogger(logger))
	if *todayFlag != "" {
		today, err := date.Parse(*todayFlag)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid -today: %w", err)
		}
		opts = append(opts, portfolios.WithToday(today))
	}
	p := portfolios.New(cfg.Name, cfg.Currency, provider, opts...)

	batches, err := readLedger()
	if err != nil {
		return nil, nil, err
	}
	if err := p.Replay(ctx, batches...); err != nil {
		var rowErr *portfolios.RowError
		if errors.As(err, &rowErr) {
			logger.Error().Int("row", rowErr.Index).Str("date", rowErr.Row.Date.String()).Str("ticker", rowErr.Row.Ticker).Msg("replay failed")
		}
		return nil, nil, err
	}
	return p, cfg, nil
}

// printMarkdown prints md rendered for the terminal, or as is with -raw.
func printMarkdown(md string) {
	if *rawFlag {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// fail reports err on stderr.
func fail(what string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	return subcommands.ExitFailure
}
