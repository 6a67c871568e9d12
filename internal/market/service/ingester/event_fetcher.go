package ingester

import (
	"context"
	"sync"

	"github.com/auctionsight/auctionsight-backend/internal/market/chain"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/auctionsight/auctionsight-backend/pkg/workerpool"
)

type eventFetcher struct {
	source      chain.EventSource
	repository  Repository
	network     model.Network
	startBlock  uint64
	chunkSize   uint64
	maxChunks   uint64
	workerCount int
}

type blockRange struct {
	from uint64
	to   uint64
}

// Fetch resumes from the persisted offset and pulls the next window of logs,
// fanning chunked ranges out over a worker pool while the backlog is deep.
func (f *eventFetcher) Fetch(ctx context.Context) (*EventBatch, error) {
	last, err := f.repository.LastSyncedBlock(ctx, f.network)
	if err != nil {
		return nil, err
	}

	from := last + 1
	if from < f.startBlock {
		from = f.startBlock
	}

	latest, err := f.source.LatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	if from > latest {
		return nil, nil
	}

	to := from + f.chunkSize*f.maxChunks - 1
	if to > latest {
		to = latest
	}

	ranges := splitRange(from, to, f.chunkSize)
	if len(ranges) == 1 {
		events, err := f.source.FetchEvents(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return &EventBatch{Events: events, FromBlock: from, ToBlock: to, Backlog: to < latest}, nil
	}

	var (
		mu     sync.Mutex
		events []chain.Event
	)
	err = workerpool.Process(ctx, f.workerCount, ranges, func(ctx context.Context, r blockRange) error {
		chunk, err := f.source.FetchEvents(ctx, r.from, r.to)
		if err != nil {
			return err
		}
		mu.Lock()
		events = append(events, chunk...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &EventBatch{Events: events, FromBlock: from, ToBlock: to, Backlog: to < latest}, nil
}

func splitRange(from, to, chunkSize uint64) []blockRange {
	var ranges []blockRange
	for start := from; start <= to; start += chunkSize {
		end := start + chunkSize - 1
		if end > to {
			end = to
		}
		ranges = append(ranges, blockRange{from: start, to: end})
	}
	return ranges
}
