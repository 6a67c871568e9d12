package ingester

import (
	"context"
	"errors"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/clock"
	"github.com/auctionsight/auctionsight-backend/internal/market/chain"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"go.uber.org/zap"
)

// SyncIngesterService mirrors the contract event log into the product cache,
// resuming from the last fully processed block and following the chain live.
type SyncIngesterService struct {
	logger            *zap.Logger
	network           model.Network
	metrics           SyncIngesterMetrics
	repository        Repository
	sleep             func(context.Context, time.Duration) error
	sleepDuration     time.Duration
	longSleepDuration time.Duration
	postBatchSleep    time.Duration
	eventFetcher      EventFetcher
	eventProcessor    EventProcessor
	headSignal        <-chan struct{}
}

// NewSyncIngesterService builds a SyncIngesterService with dependencies.
// startBlock is the contract deployment block; nothing before it can carry
// marketplace events.
func NewSyncIngesterService(
	repo Repository,
	source chain.EventSource,
	metrics SyncIngesterMetrics,
	network model.Network,
	startBlock uint64,
	logger *zap.Logger,
	headSignal <-chan struct{},
) (*SyncIngesterService, error) {
	logger = logger.With(zap.String("network", string(network)))
	if metrics == nil {
		return nil, errors.New("sync ingester metrics is required")
	}

	return &SyncIngesterService{
		logger:            logger,
		network:           network,
		metrics:           metrics,
		repository:        repo,
		sleep:             clock.SleepWithContext,
		sleepDuration:     sleepDuration,
		longSleepDuration: longSleepDuration,
		postBatchSleep:    postBatchSleepDuration,
		headSignal:        headSignal,
		eventFetcher: &eventFetcher{
			source:      source,
			repository:  repo,
			network:     network,
			startBlock:  startBlock,
			chunkSize:   logChunkSize,
			maxChunks:   maxChunksPerFetch,
			workerCount: defaultWorkerCount,
		},
		eventProcessor: &eventProcessor{
			repo:          repo,
			network:       network,
			logger:        logger.Named("eventProcessor"),
			bulkThreshold: bulkInsertThreshold,
		},
	}, nil
}

// Run starts the sync loop until the context is canceled. Transport errors
// back the loop off instead of killing it; the persisted offset guarantees
// no events are skipped across retries or restarts.
func (s *SyncIngesterService) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.run(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", s.sleepDuration))
			if sleepErr := s.wait(ctx, s.sleepDuration); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (s *SyncIngesterService) run(ctx context.Context) error {
	started := time.Now()
	batch, err := s.eventFetcher.Fetch(ctx)
	s.metrics.ObserveFetchEvents(err, started)
	if err != nil {
		s.logger.Error("fetch events failed", zap.Error(err))
		return err
	}

	if batch == nil {
		s.logger.Debug("caught up with chain tip; sleeping", zap.Duration("sleep", s.longSleepDuration))
		return s.wait(ctx, s.longSleepDuration)
	}

	s.logger.Info("processing events",
		zap.Int("events", len(batch.Events)),
		zap.Uint64("from", batch.FromBlock),
		zap.Uint64("to", batch.ToBlock),
	)
	started = time.Now()
	if err = s.eventProcessor.Process(ctx, batch.Events); err != nil {
		s.metrics.ObserveProcessBatch(err, len(batch.Events), started)
		return err
	}
	s.metrics.ObserveProcessBatch(nil, len(batch.Events), started)

	if err = s.repository.SetLastSyncedBlock(ctx, s.network, batch.ToBlock); err != nil {
		return err
	}

	if batch.Backlog {
		return s.sleep(ctx, s.postBatchSleep)
	}
	return s.wait(ctx, s.sleepDuration)
}

func (s *SyncIngesterService) wait(ctx context.Context, d time.Duration) error {
	if s.headSignal == nil {
		return s.sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.headSignal:
		return nil
	case <-timer.C:
		return nil
	}
}
