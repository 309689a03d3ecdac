package cmd

import (
	"flag"
	"slices"

	"github.com/etnz/portfolios"
	"github.com/etnz/portfolios/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors complete the values of known flags.
var predictors = map[string]complete.Predictor{
	"config": predict.Files("*.toml"),
	"ledger": predict.Files("*.csv"),
	"p":      predict.Set{"daily", "monthly", "yearly"},
	"t":      predict.Set{"sp500", portfolios.DefaultBenchmark},
	"m":      predict.Set{"all", "average", "fifo", "lifo"},
}

// flagsOf returns the completion of every flag in f.
func flagsOf(f *flag.FlagSet) map[string]complete.Predictor {
	res := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := predictors[fl.Name]; ok {
			res[fl.Name] = p
			return
		}
		res[fl.Name] = predict.Nothing
	})
	return res
}

// Completion describes the command line for shell completion.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagsOf(global),
	}
	for _, c := range append(slices.Clone(Reports), &searchCmd{}) {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = &complete.Command{Flags: flagsOf(f)}
	}
	root.Sub["help"] = &complete.Command{Args: subcommandNames()}
	topics, _ := docs.AllTopics()
	root.Sub["topic"] = &complete.Command{Args: predict.Set(append(topics, "*"))}
	return root
}

func subcommandNames() predict.Set {
	names := predict.Set{"search", "topic"}
	for _, c := range Reports {
		names = append(names, c.Name())
	}
	return names
}
