package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/reflexsearch/reflex/internal/cache"
	"github.com/reflexsearch/reflex/internal/config"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "print a snapshot of an indexed directory's cache",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "branch", Value: "main"},
		},
		Action: func(c *cli.Context) error {
			root := "."
			if c.NArg() > 0 {
				root = c.Args().First()
			}

			cacheDir := config.CacheDir(root)
			cc, err := cache.Open(cacheDir)
			if err != nil {
				return err
			}
			defer cc.Close()

			s, err := cc.Stats(c.String("branch"))
			if err != nil {
				return err
			}
			postings, _ := cc.GetStatistic("total_postings")

			fmt.Printf("files:     %d\n", s.TotalFiles)
			fmt.Printf("symbols:   %d\n", s.TotalSymbols)
			fmt.Printf("postings:  %s\n", postings)
			fmt.Printf("schema:    %s\n", s.SchemaHash)
			fmt.Printf("updated:   %s\n", s.LastUpdated)
			return nil
		},
	}
}
