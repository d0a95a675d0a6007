package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assetbook"
	"github.com/etnz/assetbook/date"
	"github.com/google/subcommands"
)

// initCmd holds the flags for the 'init' subcommand.
type initCmd struct {
	force bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a starter workbook" }
func (*initCmd) Usage() string {
	return `abk init [-f]

  Creates a workbook seeded with the three buckets: a cash position, gold
  in grams and one US stock. Edit the file to match your actual holdings,
  then run 'abk fetch' to price them.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "f", false, "overwrite an existing workbook")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.force {
		if _, err := os.Stat(*workbookFile); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %q already exists, use -f to overwrite\n", *workbookFile)
			return subcommands.ExitFailure
		}
	}

	book := assetbook.NewWorkbook()
	book.AddHolding(assetbook.Holding{Symbol: "CASH", Name: "US Dollar", Quantity: assetbook.Q(1000), Price: assetbook.USD(1)})
	book.AddHolding(assetbook.Holding{Symbol: "XAU", Name: "Gold (grams)", Quantity: assetbook.Q(10), Price: assetbook.USD(0)})
	book.AddHolding(assetbook.Holding{Symbol: "SPY", Name: "SPDR S&P 500 ETF", Quantity: assetbook.Q(2), Price: assetbook.USD(0)})

	// The first daily row anchors the NAV index at 1.00. Without it no run
	// can compute a NAV, so the starter workbook records one valued from the
	// seeded holdings.
	book.UpsertDaily(assetbook.DailySnapshot{
		On:     date.Today(),
		Cash:   assetbook.USD(1000),
		Gold:   assetbook.USD(0),
		Stocks: assetbook.USD(0),
		Total:  assetbook.USD(1000),
		NAV:    1.00,
		Note:   "baseline",
	})

	if err := SaveWorkbook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Created starter workbook %q. Edit it to match your holdings, then run 'abk fetch'.\n", *workbookFile)
	return subcommands.ExitSuccess
}
