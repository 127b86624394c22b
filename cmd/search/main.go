// Command search opens an interactive query session with query-biased
// snippets over a built index.
//
// Usage:
//
//	search <index_dir>
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
		Name:      "search",
		Usage:     "interactive search over a LATimes index",
		ArgsUsage: "<index_dir>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("search session failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: search <index_dir>", 1)
	}

	idx, err := latimes.LoadIndex(c.Args().Get(0))
	if err != nil {
		return err
	}

	return latimes.NewSession(idx, os.Stdin, os.Stdout).Run()
}
