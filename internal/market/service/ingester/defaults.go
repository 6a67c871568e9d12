package ingester

import "time"

const (
	defaultWorkerCount = 4

	logChunkSize      uint64 = 10_000
	maxChunksPerFetch uint64 = 10

	// Batches at or above this size take the bulk dedupe-and-insert path;
	// smaller ones upsert row by row.
	bulkInsertThreshold = 32

	productBatcherCapacity      = 1000
	productBatcherFlushInterval = 1 * time.Second
	productBatcherFlushRPS      = 5

	sleepDuration          = 5 * time.Second
	longSleepDuration      = 15 * time.Second
	postBatchSleepDuration = 1 * time.Second
)
