package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

// Products returns cached records matching the filter, sorted ascending by
// auction end time. FINAL collapses any replaced row versions.
func (r *Repository) Products(ctx context.Context, network model.Network, filter model.ProductFilter) ([]model.Product, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("products", network, err, start)
	}()

	query := `
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
WHERE network = ? AND product_status = ?`
	args := []any{network, uint8(filter.Status)}

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.EndTimeAfter > 0 {
		query += ` AND auction_end_time > ?`
		args = append(args, filter.EndTimeAfter)
	}
	if filter.EndTimeBefore > 0 {
		query += ` AND auction_end_time < ?`
		args = append(args, filter.EndTimeBefore)
	}
	query += `
ORDER BY auction_end_time ASC`

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var products []model.Product
	for rows.Next() {
		var (
			p      model.Product
			status uint8
		)
		p.Network = network
		if err = rows.Scan(
			&p.BlockchainID,
			&p.Name,
			&p.Category,
			&p.IPFSImageHash,
			&p.IPFSDescHash,
			&p.AuctionStartTime,
			&p.AuctionEndTime,
			&p.Price,
			&p.Condition,
			&status,
			&p.BlockNumber,
			&p.TxHash,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Status = model.ProductStatus(status)
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
