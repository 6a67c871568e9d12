package ethereum

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// HeadSubscriber is satisfied by ethclient.Client when the node endpoint
// supports subscriptions (websocket or ipc).
type HeadSubscriber interface {
	SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
}

// StartHeadSignal subscribes to new chain heads and coalesces them into a
// wake-up channel for the sync loop. The subscription is re-established after
// failures; an http-only endpoint just leaves the loop on its poll interval.
func StartHeadSignal(ctx context.Context, subscriber HeadSubscriber, logger *zap.Logger) <-chan struct{} {
	if subscriber == nil {
		return nil
	}

	notify := make(chan struct{}, 1)

	go func() {
		heads := make(chan *types.Header, 8)
		for {
			if ctx.Err() != nil {
				return
			}

			sub, err := subscriber.SubscribeNewHead(ctx, heads)
			if err != nil {
				logger.Warn("subscribe new heads failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			if !forwardHeads(ctx, sub, heads, notify, logger) {
				return
			}
		}
	}()

	return notify
}

// forwardHeads pumps one subscription until it errors or the context ends.
// Returns false when the caller should stop resubscribing.
func forwardHeads(ctx context.Context, sub ethereum.Subscription, heads <-chan *types.Header, notify chan<- struct{}, logger *zap.Logger) bool {
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return false
		case err := <-sub.Err():
			logger.Warn("head subscription dropped", zap.Error(err))
			return true
		case <-heads:
			select {
			case notify <- struct{}{}:
			default:
			}
		}
	}
}
