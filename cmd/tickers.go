package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

type tickersCmd struct{}

func (*tickersCmd) Name() string     { return "tickers" }
func (*tickersCmd) Synopsis() string { return "display the fetched tickers and their last price" }
func (*tickersCmd) Usage() string {
	return `hpt tickers

  Refreshes prices and lists every ticker of the journal with its last known
  price and the quantity held today.
`
}

func (*tickersCmd) SetFlags(f *flag.FlagSet) {}

func (*tickersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := refreshedEngine(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	latest := e.Journal().Latest

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	table := md.TableSet{
		Header: []string{"Ticker", "Held", "Last Price"},
		Rows:   [][]string{},
	}
	for _, ticker := range e.Cache().Tickers() {
		held := "-"
		if q, ok := latest[ticker]; ok {
			held = q.String()
		}
		price := "n/a"
		if p, ok := e.Cache().LastPrice(ticker); ok {
			price = p.String()
		}
		table.Rows = append(table.Rows, []string{ticker, held, price})
	}
	doc.Table(table)
	printMarkdown(doc.String())
	return subcommands.ExitSuccess
}
