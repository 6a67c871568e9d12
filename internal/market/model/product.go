// Package model defines domain models for the auction marketplace cache.
package model

// Network identifies the chain the cache mirrors.
type Network string

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Devnet  Network = "devnet"
)

// ProductStatus mirrors the contract-side auction outcome enum.
type ProductStatus uint8

const (
	// StatusActive marks an auction without a recorded outcome.
	StatusActive ProductStatus = 0
	// StatusSold marks an auction finalized with a winning bid.
	StatusSold ProductStatus = 1
	// StatusUnsold marks an auction finalized without a winning bid.
	StatusUnsold ProductStatus = 2
)

// Product is the denormalized cache record for one on-chain product.
// The chain is authoritative; rows here are a rebuildable projection of
// creation and finalization events.
type Product struct {
	Network          Network       `json:"-"`
	BlockchainID     uint64        `json:"blockchainId"`
	Name             string        `json:"name"`
	Category         string        `json:"category"`
	IPFSImageHash    string        `json:"ipfsImageHash"`
	IPFSDescHash     string        `json:"ipfsDescHash"`
	AuctionStartTime int64         `json:"auctionStartTime"`
	AuctionEndTime   int64         `json:"auctionEndTime"`
	// Price is the starting price in wei as a decimal string. uint256 on
	// the contract side, so it does not fit fixed-width integer types.
	Price string `json:"price"`
	Condition        uint8         `json:"condition"`
	Status           ProductStatus `json:"productStatus"`
	BlockNumber      uint64        `json:"-"`
	TxHash           string        `json:"-"`
}

// ProductFilter is the conjunction of constraints a cache query supports.
// Zero bounds mean "unconstrained"; Category empty means "any category".
type ProductFilter struct {
	Status        ProductStatus
	Category      string
	EndTimeAfter  int64
	EndTimeBefore int64
}
