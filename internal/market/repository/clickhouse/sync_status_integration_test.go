package clickhouse

import (
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
)

func (s *RepositorySuite) TestSyncStatusRoundTrip() {
	height, err := s.repo.LastSyncedBlock(s.testCtx, model.Testnet)
	s.Require().NoError(err)
	s.Zero(height)

	s.Require().NoError(s.repo.SetLastSyncedBlock(s.testCtx, model.Testnet, 100))
	s.Require().NoError(s.repo.SetLastSyncedBlock(s.testCtx, model.Testnet, 250))

	height, err = s.repo.LastSyncedBlock(s.testCtx, model.Testnet)
	s.Require().NoError(err)
	s.Equal(uint64(250), height)

	// Offsets are tracked per network.
	height, err = s.repo.LastSyncedBlock(s.testCtx, model.Mainnet)
	s.Require().NoError(err)
	s.Zero(height)
}
