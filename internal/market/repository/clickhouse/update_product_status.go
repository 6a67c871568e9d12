package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

// UpdateProductStatus records an auction outcome by rewriting the cached row
// with the new status and the finalizing block as its version. The engine
// keeps the highest-versioned row, so the update survives later replays of
// the creation event. Returns ErrProductNotFound when the creation event has
// not been ingested yet.
func (r *Repository) UpdateProductStatus(ctx context.Context, network model.Network, id uint64, status model.ProductStatus, blockNumber uint64) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("update_product_status", network, err, start)
	}()

	current, err := r.product(ctx, network, id)
	if err != nil {
		return err
	}

	current.Status = status
	current.BlockNumber = blockNumber
	err = r.insertProducts(ctx, []model.Product{*current})
	return err
}

func (r *Repository) product(ctx context.Context, network model.Network, id uint64) (p *model.Product, err error) {
	const query = `
SELECT
	blockchain_id,
	name,
	category,
	ipfs_image_hash,
	ipfs_desc_hash,
	auction_start_time,
	auction_end_time,
	price,
	condition,
	product_status,
	block_number,
	tx_hash
FROM market_products FINAL
WHERE network = ? AND blockchain_id = ?`

	rows, err := r.conn.Query(ctx, query, network, id)
	if err != nil {
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}

	var (
		product model.Product
		status  uint8
	)
	product.Network = network
	if err = rows.Scan(
		&product.BlockchainID,
		&product.Name,
		&product.Category,
		&product.IPFSImageHash,
		&product.IPFSDescHash,
		&product.AuctionStartTime,
		&product.AuctionEndTime,
		&product.Price,
		&product.Condition,
		&status,
		&product.BlockNumber,
		&product.TxHash,
	); err != nil {
		return nil, fmt.Errorf("scan product %d: %w", id, err)
	}
	product.Status = model.ProductStatus(status)

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product %d: %w", id, err)
	}

	return &product, nil
}
