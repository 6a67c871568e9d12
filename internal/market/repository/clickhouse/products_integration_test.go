package clickhouse

import (
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

func (s *RepositorySuite) TestProductsSortedByEndTime() {
	s.seedProducts([]model.Product{
		newProduct(3, 3_000, "Art"),
		newProduct(1, 1_000, "Art"),
		newProduct(2, 2_000, "Books"),
	})

	products, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{Status: model.StatusActive})
	s.Require().NoError(err)
	s.Require().Len(products, 3)

	s.Equal(uint64(1), products[0].BlockchainID)
	s.Equal(uint64(2), products[1].BlockchainID)
	s.Equal(uint64(3), products[2].BlockchainID)
}

func (s *RepositorySuite) TestProductsCategoryFilter() {
	s.seedProducts([]model.Product{
		newProduct(1, 1_000, "Art"),
		newProduct(2, 2_000, "Books"),
		newProduct(3, 3_000, "Art"),
	})

	products, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{
		Status:   model.StatusActive,
		Category: "Art",
	})
	s.Require().NoError(err)
	s.Len(products, 2)
	for _, p := range products {
		s.Equal("Art", p.Category)
	}
}

func (s *RepositorySuite) TestProductsEndTimeBounds() {
	s.seedProducts([]model.Product{
		newProduct(1, 1_000, "Art"),
		newProduct(2, 2_000, "Art"),
		newProduct(3, 3_000, "Art"),
	})

	// Strict bounds exclude rows sitting exactly on them.
	products, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{
		Status:        model.StatusActive,
		EndTimeAfter:  1_000,
		EndTimeBefore: 3_000,
	})
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	s.Equal(uint64(2), products[0].BlockchainID)
}

func (s *RepositorySuite) TestProductsNetworkIsolation() {
	mainnet := newProduct(1, 1_000, "Art")
	mainnet.Network = model.Mainnet
	s.seedProducts([]model.Product{mainnet, newProduct(2, 2_000, "Art")})

	products, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{Status: model.StatusActive})
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	s.Equal(uint64(2), products[0].BlockchainID)
	s.Equal(model.Testnet, products[0].Network)
}

func (s *RepositorySuite) TestProductsEmptyStore() {
	products, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{Status: model.StatusActive})
	s.Require().NoError(err)
	s.Empty(products)
}
