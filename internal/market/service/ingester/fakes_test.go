package ingester

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/chain"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/auctionsight/auctionsight-backend/internal/market/repository/clickhouse"
)

// fakeRepository is an in-memory Repository used across the package tests.
type fakeRepository struct {
	mu sync.Mutex

	lastSynced    uint64
	lastSyncedErr error
	setBlocks     []uint64
	setErr        error

	products    map[uint64]model.Product
	upsertErr   error
	insertErr   error
	insertDelay time.Duration
	existingErr error
	updateErr   error

	upsertCalls int
	insertCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{products: make(map[uint64]model.Product)}
}

func (f *fakeRepository) LastSyncedBlock(context.Context, model.Network) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSynced, f.lastSyncedErr
}

func (f *fakeRepository) SetLastSyncedBlock(_ context.Context, _ model.Network, height uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.setBlocks = append(f.setBlocks, height)
	f.lastSynced = height
	return nil
}

func (f *fakeRepository) UpsertProductIfAbsent(_ context.Context, p model.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	if _, ok := f.products[p.BlockchainID]; ok {
		return false, nil
	}
	f.products[p.BlockchainID] = p
	return true, nil
}

func (f *fakeRepository) ExistingProductIDs(_ context.Context, _ model.Network, ids []uint64) (map[uint64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existingErr != nil {
		return nil, f.existingErr
	}
	existing := make(map[uint64]struct{})
	for _, id := range ids {
		if _, ok := f.products[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

func (f *fakeRepository) InsertProducts(_ context.Context, products []model.Product) error {
	if f.insertDelay > 0 {
		time.Sleep(f.insertDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, p := range products {
		f.products[p.BlockchainID] = p
	}
	return nil
}

func (f *fakeRepository) UpdateProductStatus(_ context.Context, _ model.Network, id uint64, status model.ProductStatus, blockNumber uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, clickhouse.ErrProductNotFound)
	}
	p.Status = status
	p.BlockNumber = blockNumber
	f.products[id] = p
	return nil
}

type fakeSource struct {
	mu sync.Mutex

	latest    uint64
	latestErr error
	events    map[blockRange][]chain.Event
	fetchErr  error
	fetched   []blockRange
}

func (f *fakeSource) LatestBlock(context.Context) (uint64, error) {
	return f.latest, f.latestErr
}

func (f *fakeSource) FetchEvents(_ context.Context, from, to uint64) ([]chain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	r := blockRange{from: from, to: to}
	f.fetched = append(f.fetched, r)
	return f.events[r], nil
}

type fakeFetcher struct {
	batch *EventBatch
	err   error
}

func (f *fakeFetcher) Fetch(context.Context) (*EventBatch, error) {
	return f.batch, f.err
}

type fakeProcessor struct {
	processed [][]chain.Event
	err       error
}

func (f *fakeProcessor) Process(_ context.Context, events []chain.Event) error {
	f.processed = append(f.processed, events)
	return f.err
}

type fakeMetrics struct {
	mu        sync.Mutex
	fetches   int
	fetchErrs int
	batches   int
	batchErrs int
}

func (m *fakeMetrics) ObserveFetchEvents(err error, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if err != nil {
		m.fetchErrs++
	}
}

func (m *fakeMetrics) ObserveProcessBatch(err error, _ int, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	if err != nil {
		m.batchErrs++
	}
}
