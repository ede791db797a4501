// Command movielens manages the catalog: schema, CSV import and export, and
// the HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, NewRunner(RunnerOpts{}), os.Args, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code. The
// runner is closed before returning so the pool and logger are released
// on every path.
func run(ctx context.Context, runner *Runner, args []string, stderr io.Writer) int {
	defer runner.Close()

	app := &cli.Command{
		Name:     "movielens",
		Usage:    "MovieLens catalog service and data tools",
		Before:   runner.Setup,
		Commands: runner.register(),
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "movielens: %v\n", err)
		return 1
	}
	return 0
}
