package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokohq/go-shop-api/internal/testutil"
	"github.com/tokohq/go-shop-api/migrations"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := testutil.NewTestPool(t) // already runs Apply once

	require.NoError(t, migrations.Apply(ctx, pool))

	var applied int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	require.Greater(t, applied, 0)

	for _, table := range []string{"users", "products", "orders", "order_lines"} {
		var exists bool
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table,
		).Scan(&exists))
		require.True(t, exists, "table %s should exist", table)
	}
}
