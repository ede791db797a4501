package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielens-catalog/internal/app"
	"github.com/Clark-Hu/movielens-catalog/internal/config"
	"github.com/Clark-Hu/movielens-catalog/internal/exporter"
	"github.com/Clark-Hu/movielens-catalog/internal/importer"
	"github.com/Clark-Hu/movielens-catalog/internal/logging"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
	"github.com/Clark-Hu/movielens-catalog/internal/store"
)

// Runner holds the dependencies shared by every command action.
type Runner struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
	output io.Writer
}

// RunnerOpts allows tests to inject configuration and output.
type RunnerOpts struct {
	Config *config.Config
	Logger *zap.Logger
	Output io.Writer
}

// NewRunner creates a Runner. Configuration is loaded lazily by Setup
// unless provided.
func NewRunner(opts RunnerOpts) *Runner {
	r := &Runner{logger: opts.Logger, output: opts.Output}
	if opts.Config != nil {
		r.cfg = *opts.Config
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		migrateCommand(r),
		importCommand(r, importer.KindMovies, "Import movies.csv (movieId,title,genres)"),
		importCommand(r, importer.KindRatings, "Import ratings.csv (userId,movieId,rating,timestamp)"),
		importCommand(r, importer.KindTags, "Import tags.csv (userId,movieId,tag,timestamp)"),
		exportCommand(r),
		serveCommand(r),
	}
}

// Setup loads configuration and builds the logger before any command runs.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Args().Len() == 0 {
		return ctx, nil
	}
	if r.cfg.DBURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return ctx, fmt.Errorf("config: %w", err)
		}
		r.cfg = cfg
	}
	if r.logger == nil {
		logger, err := logging.New(r.cfg.LogLevel, r.cfg.LogFormat)
		if err != nil {
			return ctx, err
		}
		r.logger = logger
	}
	return ctx, nil
}

// Close releases the database pool and flushes logs.
func (r *Runner) Close() {
	r.store.Close()
	if r.logger != nil {
		_ = r.logger.Sync()
	}
}

func (r *Runner) openStore(ctx context.Context) (*store.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	st, err := app.OpenStore(ctx, r.cfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	r.store = st
	return st, nil
}

// Migrate applies the schema.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	r.writePlainln("Migrations applied.")
	return nil
}

// Import returns the action for one import-<kind> command.
func (r *Runner) Import(kind importer.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.StringArg("path")
		if path == "" {
			return fmt.Errorf("a CSV file path is required")
		}
		batchSize := int(cmd.Int("batch-size"))
		if batchSize <= 0 {
			batchSize = r.defaultBatchSize(kind)
		}

		st, err := r.openStore(ctx)
		if err != nil {
			return err
		}

		r.writePlainln("Starting import of %s from %s", kind, path)
		im := importer.New(repository.New(st), r.logger)
		stats, err := im.ImportFile(ctx, kind, path, batchSize)
		if err != nil {
			return err
		}
		r.writePlainln("Import completed. Rows processed: %s, Entries created: %s, Skipped: %s.",
			humanize.Comma(stats.RowsProcessed), humanize.Comma(stats.Inserted), humanize.Comma(stats.Skipped))
		return nil
	}
}

func (r *Runner) defaultBatchSize(kind importer.Kind) int {
	switch kind {
	case importer.KindMovies:
		if r.cfg.MovieBatchSize > 0 {
			return r.cfg.MovieBatchSize
		}
		return importer.DefaultMovieBatchSize
	case importer.KindRatings:
		if r.cfg.RatingBatchSize > 0 {
			return r.cfg.RatingBatchSize
		}
		return importer.DefaultRatingBatchSize
	default:
		if r.cfg.TagBatchSize > 0 {
			return r.cfg.TagBatchSize
		}
		return importer.DefaultTagBatchSize
	}
}

// Export writes the catalog CSV.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	r.writePlainln("Starting export of movies to %s", path)
	n, err := exporter.New(repository.New(st).Movies, r.cfg.LinkBaseURL, r.logger).ExportFile(ctx, path)
	if err != nil {
		return err
	}
	r.writePlainln("Movies export completed successfully (%s movies).", humanize.Comma(n))
	return nil
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	return app.Serve(ctx, r.cfg, st, r.logger)
}

func (r *Runner) writePlainln(format string, args ...interface{}) {
	fmt.Fprintf(r.output, format+"\n", args...)
}
