package cmd

import (
	"context"
	"flag"

	"github.com/etnz/portfolios/renderer"
	"github.com/google/subcommands"
)

// logCmd holds the flags for the 'log' subcommand.
type logCmd struct{}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "display the applied transactions and warnings" }
func (*logCmd) Usage() string {
	return `folio log

  Displays every transaction in the order it was applied, with the warnings
  raised while replaying the ledger.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {}

func (c *logCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	printMarkdown(renderer.RenderLog(p.Name(), p.Transactions(), p.Warnings()))
	return subcommands.ExitSuccess
}
