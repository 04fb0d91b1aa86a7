// Command ibexctl renders the IBEX35 closing-price dataset from the terminal:
// the pivot table, a ticker history, the markdown report and the ticker list.
//
//	ibexctl [-file precios_cierre_bolsa.csv] <command> [flags]
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var sourceFile = flag.String("file", "", "closing-price CSV or XLSX (defaults to the configured source file)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands(sourceFile, os.Stdout) {
		commander.Register(c, "data")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
