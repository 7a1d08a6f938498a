package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/reflexsearch/reflex/internal/query"
	"github.com/reflexsearch/reflex/internal/symbols"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "search an indexed directory tree",
		ArgsUsage: "pattern",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Value: ".", Usage: "indexed root directory"},
			&cli.StringFlag{Name: "branch", Value: "main"},
			&cli.BoolFlag{Name: "symbols", Usage: "search the symbol index instead of full text"},
			&cli.StringFlag{Name: "kind", Usage: "restrict symbol search to one kind (struct, class, function, ...)"},
			&cli.StringFlag{Name: "lang", Usage: "restrict results to one language"},
			&cli.BoolFlag{Name: "regex", Usage: "treat pattern as a regular expression"},
			&cli.StringSliceFlag{Name: "glob", Usage: "only include paths matching this glob"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "exclude paths matching this glob"},
			&cli.BoolFlag{Name: "paths", Usage: "print unique matching paths only"},
			&cli.BoolFlag{Name: "case-insensitive", Aliases: []string{"i"}},
			&cli.IntFlag{Name: "limit", Value: query.DefaultMaxResults},
			&cli.BoolFlag{Name: "json", Usage: "emit results as JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("query requires exactly one pattern argument", 1)
			}
			pattern := c.Args().First()

			e, err := query.Open(c.String("root"), c.String("branch"), schemaHash)
			if err != nil {
				return err
			}
			defer e.Close()

			filter := query.Filter{
				SymbolsMode:     c.Bool("symbols"),
				UseRegex:        c.Bool("regex"),
				GlobInclude:     c.StringSlice("glob"),
				GlobExclude:     c.StringSlice("exclude"),
				CaseInsensitive: c.Bool("case-insensitive"),
				PathsOnly:       c.Bool("paths"),
				MaxResults:      c.Int("limit"),
			}
			if k := c.String("kind"); k != "" {
				if kind, ok := symbols.ParseKind(k); ok {
					filter.Kind = &kind
				} else {
					return cli.Exit(fmt.Sprintf("unknown symbol kind %q", k), 1)
				}
			}
			if l := c.String("lang"); l != "" {
				lang := symbols.Language(l)
				filter.Language = &lang
			}

			results, err := e.Search(pattern, filter)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return json.NewEncoder(os.Stdout).Encode(results)
			}
			printResults(results, filter.PathsOnly)
			return nil
		},
	}
}

func printResults(results []query.SearchResult, pathsOnly bool) {
	for _, r := range results {
		if pathsOnly {
			fmt.Println(r.Path)
			continue
		}
		if r.Symbol != "" {
			fmt.Printf("%s:%d:%d: %s %s\n", r.Path, r.Span.StartLine, r.Span.StartCol, r.Kind, r.Symbol)
			continue
		}
		fmt.Printf("%s:%d:%d: %s\n", r.Path, r.Span.StartLine, r.Span.StartCol, r.Preview)
	}
}
