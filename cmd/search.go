package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// searchCmd holds the flags for the 'search' subcommand.
type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search EODHD for a security ticker" }
func (*searchCmd) Usage() string {
	return `folio search <term>

  Searches EODHD for securities matching the term and prints the ticker to
  use in the ledger.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a search term is required")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail("loading configuration", err)
	}
	client := newClient(cfg, newLogger(cfg))
	results, err := client.Search(ctx, strings.Join(f.Args(), " "))
	if err != nil {
		return fail("searching", err)
	}

	var b strings.Builder
	fmt.Fprintln(&b, "| Ticker | Name | Type | Country | Currency | ISIN | MIC | Previous Close |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|:---|:---|---:|")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %.2f (%s) |\n",
			r.Ticker(), r.Name, r.Type, r.Country, r.Currency, r.ISIN, r.MIC, r.PreviousClose, r.PreviousCloseDate)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
