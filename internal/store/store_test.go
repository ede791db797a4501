package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Clark-Hu/movielens-catalog/internal/store"
	"github.com/Clark-Hu/movielens-catalog/internal/testutil/pgtest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	pool := pgtest.NewPool(t, "movies_test_store")
	ctx := context.Background()

	core, logs := observer.New(zap.InfoLevel)
	st := store.NewWithPool(pool, zap.New(core))

	// pgtest already applied the schema once.
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx))
	assert.NotZero(t, logs.Len())

	var tables int
	err := pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM information_schema.tables
        WHERE table_schema = 'public' AND table_name IN ('movies', 'ratings', 'tags')
    `).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 3, tables)
}

func TestHealthCheck(t *testing.T) {
	pool := pgtest.NewPool(t, "movies_test_store_health")
	st := store.NewWithPool(pool, nil)

	require.NoError(t, st.HealthCheck(context.Background()))
	assert.NotNil(t, st.Stats())

	var nilStore *store.Store
	assert.Error(t, nilStore.HealthCheck(context.Background()))
}
