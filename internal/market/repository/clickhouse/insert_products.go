package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

// InsertProducts stores product rows in ClickHouse. Callers on the replay
// path must pre-filter ids already present; the ReplacingMergeTree engine
// only collapses stragglers that race past that check.
func (r *Repository) InsertProducts(ctx context.Context, products []model.Product) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_products", firstNetwork(products), err, start)
	}()

	err = r.insertProducts(ctx, products)
	return err
}

func (r *Repository) insertProducts(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	const query = `
INSERT INTO market_products (
	network,
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
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare products batch: %w", err)
	}

	for _, p := range products {
		if err := batch.Append(
			string(p.Network),
			p.BlockchainID,
			p.Name,
			p.Category,
			p.IPFSImageHash,
			p.IPFSDescHash,
			p.AuctionStartTime,
			p.AuctionEndTime,
			p.Price,
			p.Condition,
			uint8(p.Status),
			p.BlockNumber,
			p.TxHash,
		); err != nil {
			return fmt.Errorf("append product %d: %w", p.BlockchainID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

func firstNetwork(products []model.Product) model.Network {
	if len(products) == 0 {
		return ""
	}
	return products[0].Network
}
