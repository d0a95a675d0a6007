package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assetbook/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily snapshot history" }
func (*historyCmd) Usage() string {
	return `abk history

  Displays every recorded daily snapshot: the bucket values, the total
  balance and the NAV, in chronological order.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, err := LoadWorkbook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if book.Days() == 0 {
		fmt.Println("No daily snapshots recorded yet.")
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.HistoryMarkdown(book))
	return subcommands.ExitSuccess
}
