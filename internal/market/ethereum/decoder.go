// Package ethereum implements chain.EventSource for an EVM marketplace
// contract.
package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/auctionsight/auctionsight-backend/internal/market/chain"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/auctionsight/auctionsight-backend/pkg/safe"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// marketplaceABI covers the two events the cache mirrors. The contract emits
// more, but nothing else feeds the product projection.
const marketplaceABI = `[
	{
		"type": "event",
		"name": "NewProduct",
		"anonymous": false,
		"inputs": [
			{"name": "_productId", "type": "uint256", "indexed": false},
			{"name": "_name", "type": "string", "indexed": false},
			{"name": "_category", "type": "string", "indexed": false},
			{"name": "_imageLink", "type": "string", "indexed": false},
			{"name": "_descLink", "type": "string", "indexed": false},
			{"name": "_auctionStartTime", "type": "uint256", "indexed": false},
			{"name": "_auctionEndTime", "type": "uint256", "indexed": false},
			{"name": "_startPrice", "type": "uint256", "indexed": false},
			{"name": "_productCondition", "type": "uint256", "indexed": false}
		]
	},
	{
		"type": "event",
		"name": "AuctionFinalized",
		"anonymous": false,
		"inputs": [
			{"name": "_productId", "type": "uint256", "indexed": false},
			{"name": "_productStatus", "type": "uint256", "indexed": false}
		]
	}
]`

type newProductEvent struct {
	ProductID        *big.Int `abi:"_productId"`
	Name             string   `abi:"_name"`
	Category         string   `abi:"_category"`
	ImageLink        string   `abi:"_imageLink"`
	DescLink         string   `abi:"_descLink"`
	AuctionStartTime *big.Int `abi:"_auctionStartTime"`
	AuctionEndTime   *big.Int `abi:"_auctionEndTime"`
	StartPrice       *big.Int `abi:"_startPrice"`
	ProductCondition *big.Int `abi:"_productCondition"`
}

type auctionFinalizedEvent struct {
	ProductID     *big.Int `abi:"_productId"`
	ProductStatus *big.Int `abi:"_productStatus"`
}

// Decoder turns raw contract logs into chain events.
type Decoder struct {
	spec               abi.ABI
	newProductID       common.Hash
	auctionFinalizedID common.Hash
	network            model.Network
}

// NewDecoder builds a Decoder for the marketplace contract events.
func NewDecoder(network model.Network) (*Decoder, error) {
	spec, err := abi.JSON(strings.NewReader(marketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}
	return &Decoder{
		spec:               spec,
		newProductID:       spec.Events["NewProduct"].ID,
		auctionFinalizedID: spec.Events["AuctionFinalized"].ID,
		network:            network,
	}, nil
}

// Topics returns the event signatures the log filter should match.
func (d *Decoder) Topics() []common.Hash {
	return []common.Hash{d.newProductID, d.auctionFinalizedID}
}

// Decode parses a single contract log into a chain event.
func (d *Decoder) Decode(log types.Log) (chain.Event, error) {
	if len(log.Topics) == 0 {
		return chain.Event{}, fmt.Errorf("log %s:%d has no topics", log.TxHash, log.Index)
	}

	switch log.Topics[0] {
	case d.newProductID:
		created, err := d.decodeNewProduct(log)
		if err != nil {
			return chain.Event{}, err
		}
		return chain.Event{ProductCreated: created}, nil
	case d.auctionFinalizedID:
		finalized, err := d.decodeAuctionFinalized(log)
		if err != nil {
			return chain.Event{}, err
		}
		return chain.Event{AuctionFinalized: finalized}, nil
	default:
		return chain.Event{}, fmt.Errorf("unexpected event topic %s", log.Topics[0])
	}
}

func (d *Decoder) decodeNewProduct(log types.Log) (*chain.ProductCreated, error) {
	var raw newProductEvent
	if err := d.spec.UnpackIntoInterface(&raw, "NewProduct", log.Data); err != nil {
		return nil, fmt.Errorf("unpack NewProduct: %w", err)
	}

	id, err := safe.BigUint64(raw.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product id: %w", err)
	}
	startTime, err := safe.BigInt64(raw.AuctionStartTime)
	if err != nil {
		return nil, fmt.Errorf("product %d auction start time: %w", id, err)
	}
	endTime, err := safe.BigInt64(raw.AuctionEndTime)
	if err != nil {
		return nil, fmt.Errorf("product %d auction end time: %w", id, err)
	}
	if endTime <= startTime {
		return nil, fmt.Errorf("product %d auction end %d not after start %d", id, endTime, startTime)
	}
	if raw.StartPrice == nil {
		return nil, fmt.Errorf("product %d start price missing", id)
	}
	condition, err := safe.BigUint8(raw.ProductCondition)
	if err != nil {
		return nil, fmt.Errorf("product %d condition: %w", id, err)
	}

	return &chain.ProductCreated{
		Product: model.Product{
			Network:          d.network,
			BlockchainID:     id,
			Name:             raw.Name,
			Category:         raw.Category,
			IPFSImageHash:    raw.ImageLink,
			IPFSDescHash:     raw.DescLink,
			AuctionStartTime: startTime,
			AuctionEndTime:   endTime,
			Price:            raw.StartPrice.String(),
			Condition:        condition,
			Status:           model.StatusActive,
			BlockNumber:      log.BlockNumber,
			TxHash:           log.TxHash.Hex(),
		},
	}, nil
}

func (d *Decoder) decodeAuctionFinalized(log types.Log) (*chain.AuctionFinalized, error) {
	var raw auctionFinalizedEvent
	if err := d.spec.UnpackIntoInterface(&raw, "AuctionFinalized", log.Data); err != nil {
		return nil, fmt.Errorf("unpack AuctionFinalized: %w", err)
	}

	id, err := safe.BigUint64(raw.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product id: %w", err)
	}
	status, err := safe.BigUint8(raw.ProductStatus)
	if err != nil {
		return nil, fmt.Errorf("product %d status: %w", id, err)
	}
	if status != uint8(model.StatusSold) && status != uint8(model.StatusUnsold) {
		return nil, fmt.Errorf("product %d finalized with unknown status %d", id, status)
	}

	return &chain.AuctionFinalized{
		ProductID:   id,
		Status:      model.ProductStatus(status),
		BlockNumber: log.BlockNumber,
	}, nil
}
