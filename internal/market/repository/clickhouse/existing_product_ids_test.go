package clickhouse

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/stretchr/testify/require"
)

func TestRepository_ExistingProductIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns the cached subset", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{queryFn: staticRows([]any{uint64(2)}, []any{uint64(5)})}
		repo, metrics := newTestRepository(conn)

		existing, err := repo.ExistingProductIDs(ctx, model.Testnet, []uint64{1, 2, 5, 9})
		require.NoError(t, err)
		require.Equal(t, map[uint64]struct{}{2: {}, 5: {}}, existing)
		require.Equal(t, []any{model.Testnet, []uint64{1, 2, 5, 9}}, conn.queryArgs[0])

		op, obsErr := metrics.last(t)
		require.Equal(t, "existing_product_ids", op)
		require.NoError(t, obsErr)
	})

	t.Run("empty input never hits the store", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}
		repo, _ := newTestRepository(conn)

		existing, err := repo.ExistingProductIDs(ctx, model.Testnet, nil)
		require.NoError(t, err)
		require.Empty(t, existing)
		require.Empty(t, conn.queries)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		t.Parallel()

		queryErr := errors.New("read timeout")
		conn := &fakeConn{queryFn: func(context.Context, string, ...any) (driver.Rows, error) {
			return nil, queryErr
		}}
		repo, metrics := newTestRepository(conn)

		_, err := repo.ExistingProductIDs(ctx, model.Testnet, []uint64{1})
		require.ErrorIs(t, err, queryErr)

		_, obsErr := metrics.last(t)
		require.ErrorIs(t, obsErr, queryErr)
	})
}
