package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/assetbook/cmd"
	"github.com/etnz/assetbook/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion declares the shell completion tree for abk. When the shell
// invokes the binary in completion mode (COMP_LINE is set) it prints
// candidates and exits, so it must run before flag parsing.
func completion() {
	topics, _ := docs.GetAllTopics()
	topics = append(topics, "readme", "*")

	abk := &complete.Command{
		Sub: map[string]*complete.Command{
			"init":    {Flags: map[string]complete.Predictor{"f": predict.Nothing}},
			"fmt":     {},
			"history": {},
			"fetch": {Flags: map[string]complete.Predictor{
				"date": predict.Something,
			}},
			"daily": {Flags: map[string]complete.Predictor{
				"date": predict.Something,
				"o":    predict.Files("*.json"),
				"n":    predict.Nothing,
			}},
			"briefing": {Flags: map[string]complete.Predictor{
				"date": predict.Something,
				"news": predict.Nothing,
			}},
			"topic": {Args: predict.Set(topics)},
		},
		Flags: map[string]complete.Predictor{
			"workbook-file": predict.Files("*.jsonl"),
		},
	}
	abk.Complete("abk")
}

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// Unknown subcommands dispatch to abk-<name> extensions found on PATH.
	if sub := flag.Arg(0); sub != "" && !cmd.Builtin(sub) {
		if ran, code := cmd.RunExtension(sub, flag.Args()[1:]); ran {
			os.Exit(code)
		}
	}

	os.Exit(int(commander.Execute(context.Background())))
}
