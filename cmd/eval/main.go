// Command eval scores a TREC run file against relevance judgments and prints
// the per-topic effectiveness table (AP, P@10, NDCG@10, NDCG@1000, TBG) on
// stdout.
//
// Usage:
//
//	eval <index_dir> <qrels_file> <result_file>
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
		Name:      "eval",
		Usage:     "evaluate a TREC run file against qrels",
		ArgsUsage: "<index_dir> <qrels_file> <result_file>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("evaluation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: eval <index_dir> <qrels_file> <result_file>", 1)
	}

	idx, err := latimes.LoadIndex(c.Args().Get(0))
	if err != nil {
		return err
	}
	qrels, err := latimes.LoadQrels(c.Args().Get(1))
	if err != nil {
		return err
	}
	lines, err := latimes.LoadRunFile(c.Args().Get(2))
	if err != nil {
		return err
	}

	metrics, err := latimes.NewEvaluator(idx, qrels).Evaluate(lines)
	if err != nil {
		return err
	}
	return latimes.WriteTable(os.Stdout, metrics)
}
