package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assetbook"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the workbook file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `abk fmt

  Validates and formats the workbook file. This command reads all rows,
  verifies the integrity rules, and writes them back in a canonical JSONL
  form: holdings first, then daily snapshots in chronological order.
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// Strict load: formatting a missing workbook is an error, not a
	// silent fresh start.
	book, err := assetbook.LoadWorkbook(*workbookFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := SaveWorkbook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "✅ Successfully formatted %q.\n", *workbookFile)
	return subcommands.ExitSuccess
}
