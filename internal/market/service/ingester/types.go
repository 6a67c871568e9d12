// Package ingester keeps the product cache in sync with the marketplace
// contract's event log.
package ingester

import (
	"context"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/chain"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

type (
	EventFetcher interface {
		// Fetch returns the next window of decoded events, or nil when the
		// cache is caught up with the chain tip.
		Fetch(ctx context.Context) (*EventBatch, error)
	}
	EventProcessor interface {
		Process(ctx context.Context, events []chain.Event) error
	}

	SyncIngesterMetrics interface {
		ObserveFetchEvents(err error, started time.Time)
		ObserveProcessBatch(err error, events int, started time.Time)
	}

	Repository interface {
		LastSyncedBlock(ctx context.Context, network model.Network) (uint64, error)
		SetLastSyncedBlock(ctx context.Context, network model.Network, height uint64) error
		UpsertProductIfAbsent(ctx context.Context, p model.Product) (bool, error)
		ExistingProductIDs(ctx context.Context, network model.Network, ids []uint64) (map[uint64]struct{}, error)
		InsertProducts(ctx context.Context, products []model.Product) error
		UpdateProductStatus(ctx context.Context, network model.Network, id uint64, status model.ProductStatus, blockNumber uint64) error
	}
)

// EventBatch is one contiguous window of the event log. ToBlock becomes the
// new resume offset once every event in the window is persisted.
type EventBatch struct {
	Events    []chain.Event
	FromBlock uint64
	ToBlock   uint64
	// Backlog reports that the chain tip is still ahead of ToBlock, so the
	// loop should continue without its usual pause.
	Backlog bool
}
