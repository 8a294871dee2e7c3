// Package cmd implements the CLI application to value a portfolio history.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
	"github.com/etnz/hportfolio/eodhd"
	"github.com/etnz/hportfolio/renderer"
	"github.com/etnz/hportfolio/yahoo"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&summaryCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&investedCmd{}, "reports")

	c.Register(&tickersCmd{}, "prices")
	c.Register(&searchCmd{}, "prices")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	journalFile = flag.String("journal", "data.json", "Path to the journal file (JSON)")
	provider    = flag.String("provider", "yahoo", "Price provider, one of: yahoo, eodhd")
	eodhdAPIKey = flag.String("eodhd-api-key", "", "EODHD API key, defaults to $EODHD_API_KEY")
	fee         = flag.String("fee", "1", "Fee charged on every quantity change, in the journal currency")
	cashTicker  = flag.String("cash", hportfolio.DefaultCash, "Ticker holding the cash in the journal")
	startDate   = flag.String("start", "", "First replayed day, defaults to the earliest journal date")
	logLevel    = flag.String("log-level", "info", "Log level, one of: debug, info, warn, error")
	cacheDir    = flag.String("cache-dir", "", "Directory of the HTTP cache, defaults to the system temp dir")
	raw         = flag.Bool("raw", false, "Print reports as markdown source instead of rendering them")
)

// Providers lists the supported -provider values.
var Providers = []string{"yahoo", "eodhd"}

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// outMu serializes reports printed from reload continuations.
var outMu sync.Mutex

// today is the CLI clock.
var today = date.Today

// SetupLogging installs the default slog logger on stderr at -log-level.
func SetupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid -log-level %q: %w", *logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// apiKey returns the EODHD key from the flag or the environment.
func apiKey() string {
	if *eodhdAPIKey != "" {
		return *eodhdAPIKey
	}
	return os.Getenv("EODHD_API_KEY")
}

// newFetcher returns the price fetcher selected by -provider.
var newFetcher = func(currency string) (hportfolio.PriceFetcher, error) {
	switch strings.ToLower(*provider) {
	case "yahoo":
		return yahoo.New(currency, *cacheDir), nil
	case "eodhd":
		key := apiKey()
		if key == "" {
			return nil, eodhd.ErrMissingKey
		}
		return eodhd.New(key, currency, *cacheDir), nil
	default:
		return nil, fmt.Errorf("unknown -provider %q, want one of %v", *provider, Providers)
	}
}

// engineOptions converts the global flags into engine options.
func engineOptions() ([]hportfolio.Option, error) {
	f, err := decimal.NewFromString(*fee)
	if err != nil {
		return nil, fmt.Errorf("invalid -fee %q: %w", *fee, err)
	}
	opts := []hportfolio.Option{
		hportfolio.WithFee(f),
		hportfolio.WithCash(*cashTicker),
		hportfolio.WithClock(today),
		hportfolio.WithLogger(slog.Default()),
	}
	if *startDate != "" {
		start, err := date.Parse(*startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid -start: %w", err)
		}
		opts = append(opts, hportfolio.WithStart(start))
	}
	return opts, nil
}

// openEngine reads the journal and builds an engine that has not replayed yet.
func openEngine() (*hportfolio.Engine, error) {
	j, err := hportfolio.ReadJournal(*journalFile)
	if err != nil {
		return nil, err
	}
	opts, err := engineOptions()
	if err != nil {
		return nil, err
	}
	fetcher, err := newFetcher(j.Currency)
	if err != nil {
		return nil, err
	}
	return hportfolio.NewEngine(j, fetcher, opts...), nil
}

// refreshedEngine opens the engine and replays the journal.
func refreshedEngine(ctx context.Context) (*hportfolio.Engine, error) {
	e, err := openEngine()
	if err != nil {
		return nil, err
	}
	if err := e.Refresh(ctx, false); err != nil {
		return nil, err
	}
	return e, nil
}

// printMarkdown renders md for the terminal, or as is with -raw.
func printMarkdown(md string) {
	outMu.Lock()
	defer outMu.Unlock()
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		slog.Warn("cannot render markdown", "err", err)
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		slog.Warn("cannot render markdown", "err", err)
		out = md
	}
	fmt.Fprint(stdout, out)
}

// printReport prints md as an html page with asHTML, or for the terminal.
func printReport(title, md string, asHTML bool) error {
	if !asHTML {
		printMarkdown(md)
		return nil
	}
	page, err := renderer.HTML(title, md)
	if err != nil {
		return err
	}
	outMu.Lock()
	defer outMu.Unlock()
	_, err = fmt.Fprint(stdout, page)
	return err
}
