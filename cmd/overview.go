package cmd

import (
	"context"
	"flag"

	"github.com/etnz/portfolios/renderer"
	"github.com/google/subcommands"
)

// overviewCmd holds the flags for the 'overview' subcommand.
type overviewCmd struct{}

func (*overviewCmd) Name() string     { return "overview" }
func (*overviewCmd) Synopsis() string { return "display the current holdings and the portfolio value" }
func (*overviewCmd) Usage() string {
	return `folio overview

  Displays every held security valued at its last close, under each cost
  basis method, then the cash, the portfolio value and its return.
`
}

func (c *overviewCmd) SetFlags(f *flag.FlagSet) {}

func (c *overviewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	printMarkdown(renderer.RenderOverview(p.Name(), p.Overview()))
	return subcommands.ExitSuccess
}

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct{}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display every position ever traded" }
func (*positionsCmd) Usage() string {
	return `folio positions

  Displays the quantities bought and sold, the amounts invested and devested
  and the return of every traded security, largest first.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	printMarkdown(renderer.RenderPositions(p.Name(), p.Positions()))
	return subcommands.ExitSuccess
}

// archiveCmd holds the flags for the 'archive' subcommand.
type archiveCmd struct{}

func (*archiveCmd) Name() string     { return "archive" }
func (*archiveCmd) Synopsis() string { return "display the closed positions" }
func (*archiveCmd) Usage() string {
	return `folio archive

  Displays the securities that were held and have been fully sold.
`
}

func (c *archiveCmd) SetFlags(f *flag.FlagSet) {}

func (c *archiveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	printMarkdown(renderer.RenderArchive(p.Name(), p.ArchiveOverview()))
	return subcommands.ExitSuccess
}
