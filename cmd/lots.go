package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portfolios"
	"github.com/etnz/portfolios/renderer"
	"github.com/google/subcommands"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	method string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "display the cost basis of the held positions" }
func (*lotsCmd) Usage() string {
	return `folio lots [-m <method>]

  Displays the unit cost, the cost and the unrealized gain of every held
  position under the average, FIFO or LIFO cost basis method.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "m", "all", "Cost basis method: average, fifo, lifo or all")
}

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	methods := portfolios.CostBasisMethods
	if c.method != "all" {
		m, err := portfolios.ParseCostBasisMethod(c.method)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		methods = []portfolios.CostBasisMethod{m}
	}
	p, _, err := openPortfolio(ctx)
	if err != nil {
		return fail("loading portfolio", err)
	}
	printMarkdown(renderer.RenderCostBases(p.Name(), p.CostBases(methods...)))
	return subcommands.ExitSuccess
}
