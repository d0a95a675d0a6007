package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assetbook"
	"github.com/etnz/assetbook/agent"
	"github.com/etnz/assetbook/date"
	"github.com/etnz/assetbook/renderer"
	"github.com/etnz/assetbook/yahoo"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// dailyCmd holds the flags for the 'daily' subcommand.
type dailyCmd struct {
	date   string
	out    string
	dryRun bool
}

func (*dailyCmd) Name() string     { return "daily" }
func (*dailyCmd) Synopsis() string { return "run the full daily cycle and publish the payload" }
func (*dailyCmd) Usage() string {
	return `abk daily [-date <date>] [-o <file>] [-n] [extra targets...]

  Fetches prices and headlines, reconciles the day's snapshot into the
  workbook, generates the advisor briefing and publishes the payload.
  Extra arguments are additional payload destinations. With -date the
  pipeline re-runs as of that past day.
`
}

func (c *dailyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "target day for the run (defaults to today)")
	f.StringVar(&c.out, "o", "payload.json", "payload destination file")
	f.BoolVar(&c.dryRun, "n", false, "run everything but write nothing")
}

func (c *dailyCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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

	var targets []string
	if !c.dryRun {
		targets = append(targets, c.out)
		targets = append(targets, f.Args()...)
	}

	result, err := assetbook.Run(ctx, assetbook.RunConfig{
		Book:      book,
		Source:    yahoo.NewClient(),
		Generator: newGenerator(ctx),
		On:        on,
		Targets:   targets,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if !c.dryRun {
		if err := SaveWorkbook(book); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.BriefingMarkdown(result.Approved))
	printSteps(result.Diags)

	// A degraded run still published a payload; only structural failures
	// change the exit code.
	return subcommands.ExitSuccess
}

// newGenerator returns the Gemini-backed generator, or nil to let the
// pipeline fall back to the rule-based briefing.
func newGenerator(ctx context.Context) assetbook.Generator {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return nil
	}
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning, could not initialize Gemini's client:", err)
		return nil
	}
	return agent.New(client)
}

func printSteps(d *assetbook.Diagnostics) {
	for _, s := range d.Steps() {
		fmt.Printf("%-10s %-9s %s\n", s.Name, s.Status, s.Detail)
	}
}
