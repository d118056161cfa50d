package store

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-core/internal/logger"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/stretchr/testify/suite"
)

// LocalBackendTestSuite exercises the DuckDB+Parquet backend against real
// Parquet files under a per-test temp directory, no mocking.
type LocalBackendTestSuite struct {
	suite.Suite
	ctx     context.Context
	backend *LocalBackend
}

func TestLocalBackendSuite(t *testing.T) {
	suite.Run(t, new(LocalBackendTestSuite))
}

func (suite *LocalBackendTestSuite) SetupTest() {
	suite.ctx = context.Background()

	backend, err := NewLocalBackend(suite.T().TempDir(), logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.backend = backend
}

func (suite *LocalBackendTestSuite) TearDownTest() {
	if suite.backend != nil && suite.backend.db != nil {
		suite.backend.db.Close()
	}
}

func (suite *LocalBackendTestSuite) TestSaveLoadRoundTripSignals() {
	target := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signals := tables.SignalTable{
		{Datetime: target, Symbol: "AAPL"},
		{Datetime: target, Symbol: "MSFT"},
	}

	key := "2024/01/signals_2024-01-01.parquet"
	suite.NoError(suite.backend.Save(suite.ctx, key, signals))

	var loaded tables.SignalTable

	found, err := suite.backend.Load(suite.ctx, key, &loaded)
	suite.NoError(err)
	suite.True(found)
	suite.Require().Len(loaded, 2)
	suite.Equal("AAPL", loaded[0].Symbol)
	suite.True(loaded[0].Datetime.Equal(target))
}

func (suite *LocalBackendTestSuite) TestSaveLoadRoundTripOrders() {
	orders := tables.OrderTable{
		{Symbol: "AAPL", Side: tables.SideBuy, Quantity: 10, OrderType: tables.OrderTypeMarket, Price: optional.None[float64]()},
		{Symbol: "MSFT", Side: tables.SideSell, Quantity: 5, OrderType: tables.OrderTypeLimit, Price: optional.Some(115.5)},
	}

	key := "2024/01/entry_orders_2024-01-01.parquet"
	suite.NoError(suite.backend.Save(suite.ctx, key, orders))

	var loaded tables.OrderTable

	found, err := suite.backend.Load(suite.ctx, key, &loaded)
	suite.NoError(err)
	suite.True(found)
	suite.Require().Len(loaded, 2)
	suite.True(loaded[0].Price.IsNone())
	suite.Require().True(loaded[1].Price.IsSome())
	suite.InDelta(115.5, loaded[1].Price.Unwrap(), 1e-9)
	suite.Equal(tables.OrderTypeLimit, loaded[1].OrderType)
}

func (suite *LocalBackendTestSuite) TestSaveEmptyTableRoundTrip() {
	key := "2024/01/exit_orders_2024-01-01.parquet"
	suite.NoError(suite.backend.Save(suite.ctx, key, tables.OrderTable{}))

	var loaded tables.OrderTable

	found, err := suite.backend.Load(suite.ctx, key, &loaded)
	suite.NoError(err)
	suite.True(found)
	suite.Empty(loaded)
}

func (suite *LocalBackendTestSuite) TestOverwriteReplacesPriorRows() {
	key := "2024/01/signals_2024-01-01.parquet"
	target := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	suite.NoError(suite.backend.Save(suite.ctx, key, tables.SignalTable{
		{Datetime: target, Symbol: "AAPL"},
	}))
	suite.NoError(suite.backend.Save(suite.ctx, key, tables.SignalTable{
		{Datetime: target, Symbol: "GOOG"},
	}))

	var loaded tables.SignalTable

	found, err := suite.backend.Load(suite.ctx, key, &loaded)
	suite.NoError(err)
	suite.True(found)
	suite.Require().Len(loaded, 1)
	suite.Equal("GOOG", loaded[0].Symbol)
}

func (suite *LocalBackendTestSuite) TestLoadMissingReturnsNotFound() {
	var loaded tables.SignalTable

	found, err := suite.backend.Load(suite.ctx, "2024/01/signals_2024-01-01.parquet", &loaded)
	suite.NoError(err)
	suite.False(found)
}

func (suite *LocalBackendTestSuite) TestExists() {
	key := "2024/01/signals_2024-01-01.parquet"

	ok, err := suite.backend.Exists(suite.ctx, key)
	suite.NoError(err)
	suite.False(ok)

	target := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.NoError(suite.backend.Save(suite.ctx, key, tables.SignalTable{{Datetime: target, Symbol: "AAPL"}}))

	ok, err = suite.backend.Exists(suite.ctx, key)
	suite.NoError(err)
	suite.True(ok)
}

func (suite *LocalBackendTestSuite) TestListMatchesGlobAcrossPartitions() {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	suite.NoError(suite.backend.Save(suite.ctx, "2024/01/signals_2024-01-01.parquet", tables.SignalTable{{Datetime: d1, Symbol: "AAPL"}}))
	suite.NoError(suite.backend.Save(suite.ctx, "2024/02/signals_2024-02-15.parquet", tables.SignalTable{{Datetime: d2, Symbol: "AAPL"}}))
	suite.NoError(suite.backend.Save(suite.ctx, "2024/01/entry_orders_2024-01-01.parquet", tables.OrderTable{}))

	keys, err := suite.backend.List(suite.ctx, "", "signals_*.parquet")
	suite.NoError(err)
	suite.Len(keys, 2)
	suite.Contains(keys, "2024/01/signals_2024-01-01.parquet")
	suite.Contains(keys, "2024/02/signals_2024-02-15.parquet")
}

func (suite *LocalBackendTestSuite) TestListEmptyPrefix() {
	keys, err := suite.backend.List(suite.ctx, "nope", "signals_*.parquet")
	suite.NoError(err)
	suite.Empty(keys)
}

// The backend also has to satisfy the ArtifactStore end to end, including
// Latest's date parse over real file names.
func (suite *LocalBackendTestSuite) TestArtifactStoreLatestOverLocalBackend() {
	s := New(suite.backend, "")

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	suite.NoError(s.Save(suite.ctx, tables.KindSignals, d1, tables.SignalTable{{Datetime: d1, Symbol: "AAPL"}}))
	suite.NoError(s.Save(suite.ctx, tables.KindSignals, d2, tables.SignalTable{{Datetime: d2, Symbol: "AAPL"}}))

	latest, found, err := s.Latest(suite.ctx)
	suite.NoError(err)
	suite.True(found)
	suite.True(latest.Equal(d2))
}
