package rpcclient

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

type (
	// Client is the node client surface the marketplace source uses,
	// satisfied by ethclient.Client.
	Client interface {
		BlockNumber(ctx context.Context) (uint64, error)
		FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	}

	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// ObservedClient wraps a node client with per-operation metrics.
type ObservedClient struct {
	client     Client
	rpcMetrics RPCMetrics
}

func NewObservedClient(client Client, rpcMetrics RPCMetrics) *ObservedClient {
	return &ObservedClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

func (r *ObservedClient) BlockNumber(ctx context.Context) (number uint64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("block_number", err, started)
	}()
	return r.client.BlockNumber(ctx)
}

func (r *ObservedClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) (logs []types.Log, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("filter_logs", err, started)
	}()
	return r.client.FilterLogs(ctx, q)
}
