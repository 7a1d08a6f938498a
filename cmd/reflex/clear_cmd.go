package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/reflexsearch/reflex/internal/cache"
	"github.com/reflexsearch/reflex/internal/config"
)

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "remove a directory's .reflex cache entirely",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			root := "."
			if c.NArg() > 0 {
				root = c.Args().First()
			}
			cacheDir := config.CacheDir(root)

			lock, err := cache.Lock(context.Background(), cacheDir)
			if err != nil {
				return err
			}
			if err := cache.Clear(cacheDir); err != nil {
				lock.Unlock()
				return err
			}
			if err := lock.Unlock(); err != nil {
				return err
			}
			_ = os.Remove(filepath.Join(cacheDir, "meta.lock"))

			fmt.Printf("cleared %s\n", cacheDir)
			return nil
		},
	}
}
