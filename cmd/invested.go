package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/hportfolio/date"
	"github.com/google/subcommands"
)

type investedCmd struct {
	date string
}

func (*investedCmd) Name() string     { return "invested" }
func (*investedCmd) Synopsis() string { return "display the cash invested as of a date" }
func (*investedCmd) Usage() string {
	return `hpt invested [-d <date>]

  Displays the sum of the deposits made on or before the date. No price is
  fetched.
`
}

func (c *investedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date to report on, defaults to today")
}

func (c *investedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on := today()
	if c.date != "" {
		var err error
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	e, err := openEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Invested as of %s: %s\n", on, e.InvestedAsOf(on))
	return subcommands.ExitSuccess
}
