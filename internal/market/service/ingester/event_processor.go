package ingester

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/auctionsight/auctionsight-backend/internal/market/chain"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/auctionsight/auctionsight-backend/internal/market/repository/clickhouse"
	"github.com/auctionsight/auctionsight-backend/pkg/batcher"
	"go.uber.org/zap"
)

type eventProcessor struct {
	repo          Repository
	network       model.Network
	logger        *zap.Logger
	bulkThreshold int
}

// Process ingests one batch of decoded events. Creations land before
// finalizations so an outcome in the same window finds its row.
func (p *eventProcessor) Process(ctx context.Context, events []chain.Event) error {
	if len(events) == 0 {
		return nil
	}

	var (
		creations     []model.Product
		finalizations []*chain.AuctionFinalized
	)
	for _, event := range events {
		switch {
		case event.ProductCreated != nil:
			creations = append(creations, event.ProductCreated.Product)
		case event.AuctionFinalized != nil:
			finalizations = append(finalizations, event.AuctionFinalized)
		}
	}

	if len(creations) >= p.bulkThreshold {
		if err := p.bulkInsert(ctx, creations); err != nil {
			return err
		}
	} else {
		for _, product := range creations {
			inserted, err := p.repo.UpsertProductIfAbsent(ctx, product)
			if err != nil {
				return fmt.Errorf("upsert product %d: %w", product.BlockchainID, err)
			}
			if !inserted {
				p.logger.Debug("skip replayed product", zap.Uint64("id", product.BlockchainID))
			}
		}
	}

	for _, finalized := range finalizations {
		err := p.repo.UpdateProductStatus(ctx, p.network, finalized.ProductID, finalized.Status, finalized.BlockNumber)
		if errors.Is(err, clickhouse.ErrProductNotFound) {
			p.logger.Warn("finalization before creation; skipping",
				zap.Uint64("id", finalized.ProductID),
				zap.Uint64("block", finalized.BlockNumber),
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("update product %d status: %w", finalized.ProductID, err)
		}
	}

	return nil
}

// bulkInsert subtracts already-cached ids and streams the remainder through
// the batcher, so replaying history from genesis stays idempotent and does
// not issue one insert per event.
func (p *eventProcessor) bulkInsert(ctx context.Context, products []model.Product) error {
	ids := make([]uint64, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.BlockchainID)
	}

	existing, err := p.repo.ExistingProductIDs(ctx, p.network, ids)
	if err != nil {
		return fmt.Errorf("existing product ids: %w", err)
	}

	fresh := products[:0:0]
	seen := make(map[uint64]struct{}, len(products))
	for _, product := range products {
		if _, ok := existing[product.BlockchainID]; ok {
			continue
		}
		// Duplicate creations can also appear inside one window.
		if _, ok := seen[product.BlockchainID]; ok {
			continue
		}
		seen[product.BlockchainID] = struct{}{}
		fresh = append(fresh, product)
	}
	if len(fresh) == 0 {
		p.logger.Debug("bulk batch fully replayed", zap.Int("events", len(products)))
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var flushErr error
	var flushMu sync.Mutex

	recordErr := func(e error) {
		flushMu.Lock()
		defer flushMu.Unlock()
		if flushErr == nil {
			flushErr = e
			cancel()
		}
	}

	b := batcher.New[model.Product](
		p.logger.Named("productBatcher"),
		func(ctx context.Context, batch []model.Product) error {
			if err := p.repo.InsertProducts(ctx, batch); err != nil {
				recordErr(err)
				return err
			}
			return nil
		},
		productBatcherCapacity,
		productBatcherFlushInterval,
		productBatcherFlushRPS,
	)
	b.Start(ctx)

	var addErr error
	for _, product := range fresh {
		if addErr = b.Add(ctx, product); addErr != nil {
			break
		}
	}

	// Stop drains whatever is still buffered into final flushes, so every
	// added item has been offered to the callback once it returns.
	b.Stop()

	flushMu.Lock()
	defer flushMu.Unlock()
	if flushErr != nil {
		return fmt.Errorf("insert products: %w", flushErr)
	}
	return addErr
}
