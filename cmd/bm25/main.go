// Command bm25 answers topic queries with BM25 ranked retrieval, emitting at
// most 1000 results per topic in TREC run format.
//
// Usage:
//
//	bm25 <index_dir> <queries_file> <output_file>
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
		Name:      "bm25",
		Usage:     "run BM25 ranked retrieval over a LATimes index",
		ArgsUsage: "<index_dir> <queries_file> <output_file>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("bm25 retrieval failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: bm25 <index_dir> <queries_file> <output_file>", 1)
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

	return latimes.NewBM25Engine(idx).WriteRun(out, queries)
}
