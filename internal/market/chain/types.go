package chain

import "github.com/auctionsight/auctionsight-backend/internal/market/model"

// Event is a decoded marketplace contract event. Exactly one of the payload
// fields is set.
type Event struct {
	ProductCreated   *ProductCreated
	AuctionFinalized *AuctionFinalized
}

// ProductCreated wraps a decoded product-creation event. Product carries the
// block number and transaction hash of the emitting log.
type ProductCreated struct {
	Product model.Product
}

// AuctionFinalized wraps a decoded auction-outcome event.
type AuctionFinalized struct {
	ProductID   uint64
	Status      model.ProductStatus
	BlockNumber uint64
}

// BlockNumber returns the emitting block of whichever payload is set.
func (e Event) BlockNumber() uint64 {
	switch {
	case e.ProductCreated != nil:
		return e.ProductCreated.Product.BlockNumber
	case e.AuctionFinalized != nil:
		return e.AuctionFinalized.BlockNumber
	default:
		return 0
	}
}
