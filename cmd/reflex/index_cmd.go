package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/reflexsearch/reflex/internal/config"
	"github.com/reflexsearch/reflex/internal/indexer"
)

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "build or refresh the .reflex cache for a directory tree",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "reparse every file regardless of content hash"},
			&cli.StringFlag{Name: "branch", Value: "main", Usage: "branch name to record results under"},
			&cli.IntFlag{Name: "workers", Usage: "parallel worker count (default: GOMAXPROCS)"},
		},
		Action: func(c *cli.Context) error {
			root := "."
			if c.NArg() > 0 {
				root = c.Args().First()
			}

			cfg, err := config.Load(config.CacheDir(root))
			if err != nil {
				return err
			}

			workers := c.Int("workers")
			if workers <= 0 {
				workers = cfg.Performance.Workers
			}

			opts := indexer.Options{
				Branch:           c.String("branch"),
				Force:            c.Bool("force"),
				Workers:          workers,
				MaxFileSizeBytes: cfg.Index.MaxFileSizeBytes,
				ExcludeDirs:      cfg.Index.ExcludeDirs,
				RespectGitignore: cfg.Index.RespectGitignore,
				CaseFoldMaxPerm:  cfg.Performance.CaseFoldMaxPerm,
				SymbolPolicy:     cfg.Symbols.Policy,
				SchemaHash:       schemaHash,
			}

			stats, diags, err := indexer.Index(context.Background(), root, opts)
			if err != nil {
				return err
			}

			fmt.Printf("indexed %d files (%d reused, %d removed), %d symbols, %d trigrams in %s\n",
				stats.FilesTotal, stats.FilesReused, stats.FilesRemoved, stats.SymbolCount, stats.TrigramCount, stats.Duration)
			for _, d := range diags {
				fmt.Printf("warning: %s\n", d.Error())
			}
			return nil
		},
	}
}
