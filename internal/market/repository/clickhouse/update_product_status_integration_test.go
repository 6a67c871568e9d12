package clickhouse

import (
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

func (s *RepositorySuite) TestUpdateProductStatus() {
	s.seedProducts([]model.Product{
		newProduct(1, 1_000, "Art"),
		newProduct(2, 2_000, "Art"),
	})

	err := s.repo.UpdateProductStatus(s.testCtx, model.Testnet, 1, model.StatusSold, 50)
	s.Require().NoError(err)

	// The sold product drops out of active listings.
	active, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{Status: model.StatusActive})
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(uint64(2), active[0].BlockchainID)

	sold, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{Status: model.StatusSold})
	s.Require().NoError(err)
	s.Require().Len(sold, 1)
	s.Equal(uint64(1), sold[0].BlockchainID)
	s.Equal(uint64(50), sold[0].BlockNumber)

	// Only the versioned row survives, not a duplicate.
	s.Equal(uint64(2), s.countProducts())
}

func (s *RepositorySuite) TestUpdateProductStatusSurvivesReplay() {
	product := newProduct(1, 1_000, "Art")
	s.seedProducts([]model.Product{product})

	s.Require().NoError(s.repo.UpdateProductStatus(s.testCtx, model.Testnet, 1, model.StatusUnsold, 50))

	// A later replay of the creation event carries the lower original block
	// number and must lose to the finalized row.
	inserted, err := s.repo.UpsertProductIfAbsent(s.testCtx, product)
	s.Require().NoError(err)
	s.False(inserted)

	unsold, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{Status: model.StatusUnsold})
	s.Require().NoError(err)
	s.Require().Len(unsold, 1)
}

func (s *RepositorySuite) TestUpdateProductStatusMissingProduct() {
	err := s.repo.UpdateProductStatus(s.testCtx, model.Testnet, 404, model.StatusSold, 50)
	s.Require().ErrorIs(err, ErrProductNotFound)
}
