package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assetbook"
	"github.com/etnz/assetbook/date"
	"github.com/etnz/assetbook/renderer"
	"github.com/etnz/assetbook/yahoo"
	"github.com/google/subcommands"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	date string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch prices and reconcile the day's snapshot" }
func (*fetchCmd) Usage() string {
	return `abk fetch [-date <date>]

  Fetches the latest prices, reconciles the day's snapshot into the
  workbook and saves it. No briefing, no payload.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "target day for the snapshot (defaults to today)")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	on := date.Today()
	if c.date != "" {
		var err error
		on, err = date.Parse(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	book, err := LoadWorkbook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fetcher := assetbook.NewFetcher(yahoo.NewClient())
	quotes, news, err := fetcher.Fetch(ctx, book.Symbols())
	if err != nil {
		// Partial results are usable; the reconciler falls back to the
		// last known price for anything missing.
		fmt.Fprintf(os.Stderr, "warning, %v\n", err)
	}

	snapshot, warnings, err := book.Reconcile(quotes, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning, %s\n", w)
	}

	if err := SaveWorkbook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.SummaryMarkdown(book, snapshot, book.Performance(on)))
	fmt.Printf("Collected %d headlines.\n", len(news))
	return subcommands.ExitSuccess
}
