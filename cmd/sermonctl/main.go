// Command sermonctl ingests transcripts, loads the Bible corpus and queries
// sermondex from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/sermondex/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sermonctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sermonctl",
		Usage:   "Sermon transcript search from the command line",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Config environment, reads config/<env>.yaml",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Explicit config file path (overrides --env)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Cache embeddings in a local badger directory instead of the configured backend",
			},
		},
		Commands: []*cli.Command{
			ingestCommand(),
			searchCommand(),
			bibleSearchCommand(),
			loadBibleCommand(),
			askCommand(),
			initIndexCommand(),
		},
	}
}
