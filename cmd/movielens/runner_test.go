package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Clark-Hu/movielens-catalog/internal/config"
	"github.com/Clark-Hu/movielens-catalog/internal/importer"
)

func newTestRunner(cfg config.Config) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	return NewRunner(RunnerOpts{Config: &cfg, Logger: zap.NewNop(), Output: &out}), &out
}

func TestRegisterCommands(t *testing.T) {
	r, _ := newTestRunner(config.Config{})
	var names []string
	for _, c := range r.register() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"migrate", "import-movies", "import-ratings", "import-tags", "export", "serve"}, names)
}

func TestDefaultBatchSize(t *testing.T) {
	r, _ := newTestRunner(config.Config{MovieBatchSize: 10})
	assert.Equal(t, 10, r.defaultBatchSize(importer.KindMovies))
	assert.Equal(t, importer.DefaultRatingBatchSize, r.defaultBatchSize(importer.KindRatings))
	assert.Equal(t, importer.DefaultTagBatchSize, r.defaultBatchSize(importer.KindTags))
}

func TestExportCommandDefaultOutput(t *testing.T) {
	r, _ := newTestRunner(config.Config{})
	cmd := exportCommand(r)
	require.Len(t, cmd.Flags, 1)
	flag, ok := cmd.Flags[0].(*cli.StringFlag)
	require.True(t, ok)
	assert.Equal(t, "movies_export.csv", flag.Value)
	assert.Equal(t, []string{"o"}, flag.Aliases)
}

func TestImportRequiresPath(t *testing.T) {
	r, _ := newTestRunner(config.Config{DBURL: "postgres://unused"})
	app := &cli.Command{Name: "movielens", Commands: r.register()}

	err := app.Run(context.Background(), []string{"movielens", "import-movies"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file path is required")
}

type syncCountingCore struct {
	zapcore.Core
	syncs int
}

func (c *syncCountingCore) Sync() error {
	c.syncs++
	return c.Core.Sync()
}

func TestRunClosesRunnerOnError(t *testing.T) {
	core := &syncCountingCore{Core: zapcore.NewNopCore()}
	cfg := config.Config{DBURL: "postgres://unused"}
	r := NewRunner(RunnerOpts{Config: &cfg, Logger: zap.New(core), Output: &bytes.Buffer{}})

	var stderr bytes.Buffer
	code := run(context.Background(), r, []string{"movielens", "import-movies"}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "movielens: a CSV file path is required")
	assert.Equal(t, 1, core.syncs)
}

func TestRunSucceeds(t *testing.T) {
	r, _ := newTestRunner(config.Config{})
	var stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), r, []string{"movielens"}, &stderr))
	assert.Empty(t, stderr.String())
}
