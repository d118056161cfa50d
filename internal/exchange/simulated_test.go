package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-core/internal/simulator"
	"github.com/rxtech-lab/argo-core/internal/simulator/commission_fee"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/stretchr/testify/suite"
)

type fakeOHLCVSource struct {
	rows tables.OHLCVTable
}

func (f *fakeOHLCVSource) Fetch(_ context.Context, start, end time.Time, _ []string) (*tables.OHLCVTable, error) {
	var out tables.OHLCVTable

	for _, row := range f.rows {
		if !row.Datetime.Before(start) && !row.Datetime.After(end) {
			out = append(out, row)
		}
	}

	return &out, nil
}

type SimulatedExchangeTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestSimulatedExchangeSuite(t *testing.T) {
	suite.Run(t, new(SimulatedExchangeTestSuite))
}

func (suite *SimulatedExchangeTestSuite) SetupTest() {
	suite.ctx = context.Background()
}

func (suite *SimulatedExchangeTestSuite) TestSubmitMarketOrderThenFetchPositions() {
	t1, _ := time.Parse("2006-01-02", "2024-01-01")
	t2, _ := time.Parse("2006-01-02", "2024-01-02")

	source := &fakeOHLCVSource{rows: tables.OHLCVTable{
		{Datetime: t1, Symbol: "AAPL", Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
		{Datetime: t2, Symbol: "AAPL", Open: 105, High: 106, Low: 104, Close: 105, Volume: 1},
	}}

	cost := simulator.CostConfig{MarketFillPriceType: simulator.MarketFillNextOpen}
	sim := simulator.New(cost, source, commission_fee.NewZeroCommissionFee(), t1)
	client := NewSimulatedExchangeClient(sim)

	orders := tables.OrderTable{{Symbol: "AAPL", Side: tables.SideBuy, Quantity: 10, OrderType: tables.OrderTypeMarket}}
	suite.NoError(client.SubmitOrders(suite.ctx, &orders))

	positions, err := client.FetchPositions(suite.ctx)
	suite.NoError(err)
	suite.Require().Len(*positions, 1)
	suite.InDelta(10, (*positions)[0].Quantity, 1e-9)
}

func (suite *SimulatedExchangeTestSuite) TestSubmitLimitOrderMissingPriceFails() {
	sim := simulator.New(simulator.CostConfig{}, &fakeOHLCVSource{}, commission_fee.NewZeroCommissionFee(), time.Now())
	client := NewSimulatedExchangeClient(sim)

	orders := tables.OrderTable{{
		Symbol: "AAPL", Side: tables.SideBuy, Quantity: 10,
		OrderType: tables.OrderTypeLimit, Price: optional.None[float64](),
	}}

	err := client.SubmitOrders(suite.ctx, &orders)
	suite.Error(err)
}

func (suite *SimulatedExchangeTestSuite) TestFetchFillsDelegatesToSimulator() {
	sim := simulator.New(simulator.CostConfig{}, &fakeOHLCVSource{}, commission_fee.NewZeroCommissionFee(), time.Now())
	client := NewSimulatedExchangeClient(sim)

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 1)

	fills, err := client.FetchFills(suite.ctx, start, end)
	suite.NoError(err)
	suite.Empty(*fills)
}
