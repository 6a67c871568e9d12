package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/auctionsight/auctionsight-backend/internal/market/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// RPCClient is the subset of the node client the source needs.
type RPCClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// EventSource implements chain.EventSource against an EVM node.
type EventSource struct {
	rpc      RPCClient
	decoder  *Decoder
	contract common.Address
	logger   *zap.Logger
}

// NewEventSource creates an EventSource for a deployed marketplace contract.
func NewEventSource(rpc RPCClient, decoder *Decoder, contract common.Address, logger *zap.Logger) (*EventSource, error) {
	if decoder == nil {
		return nil, fmt.Errorf("decoder is required")
	}
	return &EventSource{
		rpc:      rpc,
		decoder:  decoder,
		contract: contract,
		logger:   logger,
	}, nil
}

// LatestBlock returns the current chain tip.
func (s *EventSource) LatestBlock(ctx context.Context) (uint64, error) {
	number, err := s.rpc.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	return number, nil
}

// FetchEvents returns decoded marketplace events for an inclusive block
// range. Malformed logs are logged and skipped; they never fail the range.
func (s *EventSource) FetchEvents(ctx context.Context, fromBlock, toBlock uint64) ([]chain.Event, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{s.contract},
		Topics:    [][]common.Hash{s.decoder.Topics()},
	}

	logs, err := s.rpc.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("filter logs %d-%d: %w", fromBlock, toBlock, err)
	}

	events := make([]chain.Event, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}
		event, err := s.decoder.Decode(log)
		if err != nil {
			s.logger.Warn("skip undecodable log",
				zap.Uint64("block", log.BlockNumber),
				zap.String("tx", log.TxHash.Hex()),
				zap.Error(err),
			)
			continue
		}
		events = append(events, event)
	}

	return events, nil
}
