// Package cmd implements the CLI application to run the asset pipeline.
package cmd

import (
	"errors"
	"flag"
	"io/fs"
	"log"

	"github.com/etnz/assetbook"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	register(c, &initCmd{}, "workbook")
	register(c, &fmtCmd{}, "workbook")
	register(c, &historyCmd{}, "workbook")

	register(c, &dailyCmd{}, "pipeline")
	register(c, &fetchCmd{}, "pipeline")
	register(c, &briefingCmd{}, "pipeline")

	register(c, &topicCmd{}, "documentation")
}

var commandNames = map[string]bool{}

func register(c *subcommands.Commander, cmd subcommands.Command, group string) {
	commandNames[cmd.Name()] = true
	c.Register(cmd, group)
}

// Builtin reports whether name is a registered subcommand or one of the
// commander's own helpers. Anything else may be an extension.
func Builtin(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	return commandNames[name]
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global vaariables.

var workbookFile = flag.String("workbook-file", "workbook.jsonl", "Path to the workbook file (JSONL format)")

// LoadWorkbook loads the app workbook file.
// A missing file yields an empty workbook; any other failure is fatal to
// the command.
func LoadWorkbook() (*assetbook.Workbook, error) {
	book, err := assetbook.LoadWorkbook(*workbookFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("warning, workbook does not exist, starting from an empty one instead")
		return assetbook.NewWorkbook(), nil
	}
	return book, err
}

// SaveWorkbook writes the app workbook file back.
func SaveWorkbook(book *assetbook.Workbook) error {
	return assetbook.SaveWorkbook(*workbookFile, book)
}
