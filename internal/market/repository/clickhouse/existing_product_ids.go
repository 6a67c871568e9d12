package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

// ExistingProductIDs returns which of the given blockchain ids already have a
// cached record. The replay path subtracts these before bulk-inserting.
func (r *Repository) ExistingProductIDs(ctx context.Context, network model.Network, ids []uint64) (map[uint64]struct{}, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("existing_product_ids", network, err, start)
	}()

	existing := make(map[uint64]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	const query = `
SELECT DISTINCT blockchain_id
FROM market_products
WHERE network = ? AND blockchain_id IN ?`

	rows, err := r.conn.Query(ctx, query, network, ids)
	if err != nil {
		return nil, fmt.Errorf("query existing product ids: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var id uint64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan existing product id: %w", err)
		}
		existing[id] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing product ids: %w", err)
	}

	return existing, nil
}
