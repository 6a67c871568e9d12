package clickhouse

import (
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

func (s *RepositorySuite) TestUpsertProductIfAbsent() {
	product := newProduct(1, 1_000, "Art")

	inserted, err := s.repo.UpsertProductIfAbsent(s.testCtx, product)
	s.Require().NoError(err)
	s.True(inserted)
	s.Equal(uint64(1), s.countProducts())

	// Replaying the same creation event must not add a second row.
	replay := product
	replay.Name = "replayed name"
	inserted, err = s.repo.UpsertProductIfAbsent(s.testCtx, replay)
	s.Require().NoError(err)
	s.False(inserted)
	s.Equal(uint64(1), s.countProducts())

	products, err := s.repo.Products(s.testCtx, model.Testnet, model.ProductFilter{Status: model.StatusActive})
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	s.Equal(product.Name, products[0].Name)
}

func (s *RepositorySuite) TestExistingProductIDs() {
	s.seedProducts([]model.Product{
		newProduct(1, 1_000, "Art"),
		newProduct(3, 3_000, "Art"),
	})

	existing, err := s.repo.ExistingProductIDs(s.testCtx, model.Testnet, []uint64{1, 2, 3, 4})
	s.Require().NoError(err)
	s.Equal(map[uint64]struct{}{1: {}, 3: {}}, existing)

	existing, err = s.repo.ExistingProductIDs(s.testCtx, model.Mainnet, []uint64{1, 3})
	s.Require().NoError(err)
	s.Empty(existing)
}
