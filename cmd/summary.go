package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	watch int
	html  bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio value, profit and holdings" }
func (*summaryCmd) Usage() string {
	return `hpt summary [-w <seconds>] [-html]

  Refreshes prices, replays the journal and displays the current value,
  profit and loss, and every holding with its cost basis and day change.

  With -w, the journal is read again every <seconds> and the summary is
  printed again once the new replay is done. Stop with Ctrl-C.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.watch, "w", 0, "Reload the journal and prices every <seconds>, 0 to print once")
	f.BoolVar(&c.html, "html", false, "Print the summary as an html page")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.watch < 0 {
		fmt.Fprintln(os.Stderr, "Error: -w must not be negative")
		return subcommands.ExitUsageError
	}
	e, err := refreshedEngine(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.print(e); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.watch == 0 {
		return subcommands.ExitSuccess
	}

	tick := time.NewTicker(time.Duration(c.watch) * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-tick.C:
		}
		j, err := hportfolio.ReadJournal(*journalFile)
		if err != nil {
			slog.Error("cannot read journal, keeping the previous one", "journal", *journalFile, "err", err)
			continue
		}
		e.SetJournal(j)
		_ = e.Reload(ctx, true).Then(func(err error) {
			if err != nil {
				slog.Error("reload failed", "err", err)
				return
			}
			if err := c.print(e); err != nil {
				slog.Error("cannot print summary", "err", err)
			}
		})
	}
}

func (c *summaryCmd) print(e *hportfolio.Engine) error {
	s := renderer.NewSummary(e, today())
	md := renderer.SummaryMarkdown(s)
	if c.html {
		return printReport(fmt.Sprintf("Portfolio Summary on %s", s.On), md, true)
	}
	outMu.Lock()
	fmt.Fprint(stdout, renderer.Headline(s))
	outMu.Unlock()
	return printReport("", md, false)
}
