package iterctx

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-core/internal/store"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ContextTestSuite struct {
	suite.Suite
	ctx    context.Context
	target time.Time
}

func TestContextSuite(t *testing.T) {
	suite.Run(t, new(ContextTestSuite))
}

func (suite *ContextTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.target = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *ContextTestSuite) TestNewContextEmpty() {
	c := New(suite.target)

	suite.Equal(suite.target, c.CurrentDatetime)
	suite.True(c.Signals.IsNone())
	suite.True(c.PortfolioPlan.IsNone())
	suite.True(c.CurrentPositions.IsNone())
}

func (suite *ContextTestSuite) TestRequireSignalsMissing() {
	c := New(suite.target)

	_, err := c.RequireSignals("ConstructPortfolio")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodePrerequisiteMissing))
}

func (suite *ContextTestSuite) TestSetAndRequireSignals() {
	c := New(suite.target)
	signals := &tables.SignalTable{{Datetime: suite.target, Symbol: "AAPL"}}
	c.SetSignals(signals)

	got, err := c.RequireSignals("ConstructPortfolio")
	suite.NoError(err)
	suite.Equal(signals, got)
}

// Resume from persisted signals: a fresh context reloaded from the
// store observes artifacts produced by a prior process.
func (suite *ContextTestSuite) TestReloadObservesPriorProcessArtifacts() {
	s := store.New(store.NewMemoryBackend(), "base")

	signals := tables.SignalTable{{Datetime: suite.target, Symbol: "AAPL"}}
	suite.NoError(s.Save(suite.ctx, tables.KindSignals, suite.target, signals))

	reloaded, err := Reload(suite.ctx, s, suite.target)
	suite.NoError(err)
	suite.True(reloaded.Signals.IsSome())
	suite.Equal("AAPL", (*reloaded.Signals.Unwrap())[0].Symbol)
	suite.True(reloaded.PortfolioPlan.IsNone())
}

func (suite *ContextTestSuite) TestReloadEmptyWhenNothingPersisted() {
	s := store.New(store.NewMemoryBackend(), "base")

	reloaded, err := Reload(suite.ctx, s, suite.target)
	suite.NoError(err)
	suite.True(reloaded.Signals.IsNone())
}

func (suite *ContextTestSuite) TestCurrentPositionsNeverPersisted() {
	c := New(suite.target)
	positions := &tables.PositionTable{{Symbol: "AAPL", Quantity: 10, AvgPrice: 100}}
	c.SetCurrentPositions(positions)

	suite.True(c.CurrentPositions.IsSome())

	// Reload never restores positions from the store.
	reloaded, err := Reload(suite.ctx, store.New(store.NewMemoryBackend(), "base"), suite.target)
	suite.NoError(err)
	suite.True(reloaded.CurrentPositions.IsNone())
}
