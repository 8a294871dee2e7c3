// Command hpt values a portfolio over its whole history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/hportfolio/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"journal":       predict.Files("*.json"),
		"provider":      predict.Set(cmd.Providers),
		"eodhd-api-key": predict.Something,
		"fee":           predict.Something,
		"cash":          predict.Something,
		"start":         predict.Something,
		"log-level":     predict.Set{"debug", "info", "warn", "error"},
		"cache-dir":     predict.Dirs("*"),
		"raw":           predict.Nothing,
	},
	Sub: map[string]*complete.Command{
		"summary": {Flags: map[string]complete.Predictor{
			"w":    predict.Something,
			"html": predict.Nothing,
		}},
		"history": {Flags: map[string]complete.Predictor{
			"from": predict.Something,
			"to":   predict.Something,
			"html": predict.Nothing,
		}},
		"invested": {Flags: map[string]complete.Predictor{
			"d": predict.Something,
		}},
		"tickers":  {},
		"search":   {Args: predict.Something},
		"help":     {},
		"commands": {},
		"flags":    {},
	},
}

func main() {
	// When called by the shell for completion, Complete answers and exits.
	completion.Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if err := cmd.SetupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
