// Command booland answers topic queries with unranked Boolean conjunction:
// a document matches when it contains every stemmed query term.
//
// Usage:
//
//	booland <index_dir> <queries_file> <output_file>
//
// The output file must not pre-exist.
package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wizenheimer/latimes"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := &cli.App{
		Name:      "booland",
		Usage:     "run Boolean AND retrieval over a LATimes index",
		ArgsUsage: "<index_dir> <queries_file> <output_file>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("boolean retrieval failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: booland <index_dir> <queries_file> <output_file>", 1)
	}

	idx, err := latimes.LoadIndex(c.Args().Get(0))
	if err != nil {
		return err
	}
	queries, err := latimes.LoadQueries(c.Args().Get(1))
	if err != nil {
		return err
	}
	out, err := latimes.CreateRunFile(c.Args().Get(2))
	if err != nil {
		return err
	}
	defer out.Close()

	return latimes.NewBooleanEngine(idx).WriteRun(out, queries)
}
