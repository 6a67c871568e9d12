package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

// UpsertProductIfAbsent inserts a product only when its blockchain id is not
// present yet and reports whether an insert happened. Replayed creation
// events become no-ops, so the first successful decode wins.
func (r *Repository) UpsertProductIfAbsent(ctx context.Context, p model.Product) (bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("upsert_product_if_absent", p.Network, err, start)
	}()

	exists, err := r.productExists(ctx, p.Network, p.BlockchainID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err = r.insertProducts(ctx, []model.Product{p}); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) productExists(ctx context.Context, network model.Network, id uint64) (exists bool, err error) {
	const query = `
SELECT count() AS matches
FROM market_products
WHERE network = ? AND blockchain_id = ?`

	rows, err := r.conn.Query(ctx, query, network, id)
	if err != nil {
		return false, fmt.Errorf("query product existence: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return false, fmt.Errorf("product existence not returned")
	}
	var matches uint64
	if err = rows.Scan(&matches); err != nil {
		return false, fmt.Errorf("scan product existence: %w", err)
	}
	if err = rows.Err(); err != nil {
		return false, fmt.Errorf("iterate product existence: %w", err)
	}
	return matches > 0, nil
}
