package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/hportfolio/date"
	"github.com/etnz/hportfolio/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	from string
	to   string
	html bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily value of the portfolio" }
func (*historyCmd) Usage() string {
	return `hpt history [-from <date>] [-to <date>] [-html]

  Replays the journal and displays, for every day of the range, the value of
  the portfolio, the cash invested so far and the resulting profit and loss.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day of the range, defaults to the first replayed day")
	f.StringVar(&c.to, "to", "", "Last day of the range, defaults to today")
	f.BoolVar(&c.html, "html", false, "Print the history as an html page")
}

// rangeOf parses the from and to flags, empty values fall back to first and last.
func rangeOf(from, to string, first, last date.Date) (date.Range, error) {
	rng := date.NewRange(first, last)
	var err error
	if from != "" {
		if rng.From, err = date.Parse(from); err != nil {
			return rng, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if to != "" {
		if rng.To, err = date.Parse(to); err != nil {
			return rng, fmt.Errorf("invalid -to: %w", err)
		}
	}
	if rng.To.Before(rng.From) {
		return rng, fmt.Errorf("empty range %s", rng)
	}
	return rng, nil
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := refreshedEngine(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	series := e.Series()
	first := today()
	if len(series) > 0 {
		first = series[0].On
	}
	rng, err := rangeOf(c.from, c.to, first, today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	md := renderer.HistoryMarkdown(series, rng)
	if err := printReport(fmt.Sprintf("History %s", rng), md, c.html); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
