package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/hportfolio/eodhd"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search a ticker symbol on EODHD" }
func (*searchCmd) Usage() string {
	return `hpt search <term>...

  Searches EODHD for securities matching the terms. The Symbol column is the
  ticker to use in the journal with -provider eodhd. Requires an API key.
`
}

func (*searchCmd) SetFlags(f *flag.FlagSet) {}

func (*searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing search term")
		return subcommands.ExitUsageError
	}
	key := apiKey()
	if key == "" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", eodhd.ErrMissingKey)
		return subcommands.ExitUsageError
	}
	client := eodhd.New(key, "", *cacheDir)
	results, err := client.Search(ctx, strings.Join(f.Args(), " "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	table := md.TableSet{
		Header: []string{"Symbol", "Name", "Type", "Currency", "Previous Close"},
		Rows:   [][]string{},
	}
	for _, r := range results {
		table.Rows = append(table.Rows, []string{
			r.Symbol(), r.Name, r.Type, r.Currency,
			fmt.Sprintf("%.2f (%s)", r.PreviousClose, r.PreviousCloseDate),
		})
	}
	doc.Table(table)
	printMarkdown(doc.String())
	return subcommands.ExitSuccess
}
