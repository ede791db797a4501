package main

import (
	"github.com/urfave/cli/v3"

	"github.com/Clark-Hu/movielens-catalog/internal/exporter"
	"github.com/Clark-Hu/movielens-catalog/internal/importer"
)

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply the embedded schema migrations",
		Action: r.Migrate,
	}
}

func importCommand(r *Runner, kind importer.Kind, usage string) *cli.Command {
	return &cli.Command{
		Name:  "import-" + string(kind),
		Usage: usage,
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Rows per insert transaction (defaults from IMPORT_*_BATCH)",
			},
		},
		Action: r.Import(kind),
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export movies with their MovieLens link to CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path to output CSV file",
				Value:   exporter.DefaultOutput,
			},
		},
		Action: r.Export,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API",
		Action: r.Serve,
	}
}
