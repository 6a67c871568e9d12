package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

// LastSyncedBlock returns the highest block the synchronizer has fully
// processed for a network, zero when the cache is fresh.
func (r *Repository) LastSyncedBlock(ctx context.Context, network model.Network) (uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("last_synced_block", network, err, start)
	}()

	const query = `
SELECT coalesce(max(last_synced_block), toUInt64(0)) AS last_block
FROM market_sync_status
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, network)
	if err != nil {
		return 0, fmt.Errorf("query last synced block: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var height uint64
	if !rows.Next() {
		return 0, fmt.Errorf("last synced block not found")
	}
	if err = rows.Scan(&height); err != nil {
		return 0, fmt.Errorf("scan last synced block: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate last synced block: %w", err)
	}

	return height, nil
}

// SetLastSyncedBlock persists the resume offset after a range of events has
// been fully ingested.
func (r *Repository) SetLastSyncedBlock(ctx context.Context, network model.Network, height uint64) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("set_last_synced_block", network, err, start)
	}()

	const query = `
INSERT INTO market_sync_status (
	network,
	last_synced_block
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare sync status batch: %w", err)
	}
	if err = batch.Append(string(network), height); err != nil {
		return fmt.Errorf("append sync status: %w", err)
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("set last synced block: %w", err)
	}
	return nil
}
