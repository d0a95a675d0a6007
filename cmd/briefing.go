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

// briefingCmd holds the flags for the 'briefing' subcommand.
type briefingCmd struct {
	date string
	news bool
}

func (*briefingCmd) Name() string     { return "briefing" }
func (*briefingCmd) Synopsis() string { return "preview the advisor briefing without publishing" }
func (*briefingCmd) Usage() string {
	return `abk briefing [-date <date>] [-news]

  Runs the pipeline up to the briefing and prints it. Neither the workbook
  nor any payload file is written.
`
}

func (c *briefingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "target day for the briefing (defaults to today)")
	f.BoolVar(&c.news, "news", false, "also print the ranked headlines")
}

func (c *briefingCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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
	if len(book.Symbols()) == 0 {
		fmt.Fprintln(os.Stderr, "Error: the workbook holds no positions; run 'abk init' first")
		return subcommands.ExitFailure
	}

	// No targets: the run reconciles in memory only, nothing reaches disk.
	result, err := assetbook.Run(ctx, assetbook.RunConfig{
		Book:      book,
		Source:    yahoo.NewClient(),
		Generator: newGenerator(ctx),
		On:        on,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.BriefingMarkdown(result.Approved))
	if c.news {
		printMarkdown(renderer.NewsMarkdown(result.Ranked))
	}
	return subcommands.ExitSuccess
}
