// Command indexer builds an on-disk LATimes index from a gzipped corpus.
//
// Usage:
//
//	indexer <latimes.gz> <index_dir>
//
// The index directory must not pre-exist; it is created and populated with
// the date-partitioned document store and the three serialized maps.
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
		Name:      "indexer",
		Usage:     "build a LATimes index from a gzipped corpus",
		ArgsUsage: "<latimes.gz> <index_dir>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("indexing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: indexer <latimes.gz> <index_dir>", 1)
	}
	return latimes.BuildIndex(c.Args().Get(0), c.Args().Get(1))
}
