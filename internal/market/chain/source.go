// Package chain defines interfaces and structs shared between marketplace
// ingestion components.
package chain

import "context"

// EventSource provides decoded marketplace contract events over an inclusive
// block range, plus the chain tip used to bound that range.
type EventSource interface {
	LatestBlock(ctx context.Context) (uint64, error)
	FetchEvents(ctx context.Context, fromBlock, toBlock uint64) ([]Event, error)
}
