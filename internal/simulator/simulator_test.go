package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-core/internal/simulator/commission_fee"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/stretchr/testify/suite"
)

type fakeOHLCVSource struct {
	rows tables.OHLCVTable
}

func (f *fakeOHLCVSource) Fetch(_ context.Context, start, end time.Time, symbols []string) (*tables.OHLCVTable, error) {
	var out tables.OHLCVTable

	for _, row := range f.rows {
		if row.Datetime.Before(start) || row.Datetime.After(end) {
			continue
		}

		if len(symbols) > 0 && !contains(symbols, row.Symbol) {
			continue
		}

		out = append(out, row)
	}

	return &out, nil
}

func contains(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if s == symbol {
			return true
		}
	}

	return false
}

func bar(day string, o, h, l, c float64) tables.OHLCVRow {
	t, _ := time.Parse("2006-01-02", day)
	return tables.OHLCVRow{Datetime: t, Symbol: "AAPL", Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

type SimulatorTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func (suite *SimulatorTestSuite) SetupTest() {
	suite.ctx = context.Background()
}

// Market buy under next_open: slippage against the taker, next bar timestamp.
func (suite *SimulatorTestSuite) TestMarketBuyNextOpen() {
	source := &fakeOHLCVSource{rows: tables.OHLCVTable{
		bar("2024-01-01", 100, 106, 99, 105),
		bar("2024-01-02", 105, 111, 104, 110),
	}}

	cursor, _ := time.Parse("2006-01-02T15:04", "2024-01-01T09:00")
	cost := CostConfig{CommissionRate: 0.001, SlippageBps: 10, MarketFillPriceType: MarketFillNextOpen}
	sim := New(cost, source, commission_fee.NewPercentageCommissionFee(cost.CommissionRate), cursor)

	fill, err := sim.SubmitMarketOrder(suite.ctx, "AAPL", tables.SideBuy, 10)
	suite.NoError(err)
	suite.Require().NotNil(fill)

	suite.InDelta(105.105, fill.FilledPrice, 1e-9)
	// commission = filled_price * quantity * commission_rate.
	suite.InDelta(105.105*10*0.001, fill.Commission, 1e-6)

	expectedTimestamp, _ := time.Parse("2006-01-02", "2024-01-02")
	suite.True(fill.Timestamp.Equal(expectedTimestamp))
}

// No fill when the cursor has advanced past the last bar.
func (suite *SimulatorTestSuite) TestMarketBuyNextOpenNoNextBar() {
	source := &fakeOHLCVSource{rows: tables.OHLCVTable{
		bar("2024-01-01", 100, 106, 99, 105),
		bar("2024-01-02", 105, 111, 104, 110),
	}}

	cursor, _ := time.Parse("2006-01-02", "2024-01-02")
	cost := CostConfig{CommissionRate: 0.001, SlippageBps: 10, MarketFillPriceType: MarketFillNextOpen}
	sim := New(cost, source, commission_fee.NewPercentageCommissionFee(cost.CommissionRate), cursor)

	fill, err := sim.SubmitMarketOrder(suite.ctx, "AAPL", tables.SideBuy, 10)
	suite.NoError(err)
	suite.Nil(fill)
}

// Limit sell: equality does not fill; a price just below the bar's
// high fills at the limit price with no slippage.
func (suite *SimulatorTestSuite) TestLimitSellEqualityNoFill() {
	source := &fakeOHLCVSource{rows: tables.OHLCVTable{
		bar("2024-01-01", 100, 106, 99, 105),
		bar("2024-01-02", 105, 115, 104, 110),
	}}

	cursor, _ := time.Parse("2006-01-02", "2024-01-01")
	cost := CostConfig{LimitFillBarType: LimitFillNextBar}
	sim := New(cost, source, commission_fee.NewZeroCommissionFee(), cursor)

	fill, err := sim.SubmitLimitOrder(suite.ctx, "AAPL", tables.SideSell, 10, 115)
	suite.NoError(err)
	suite.Nil(fill)

	fill, err = sim.SubmitLimitOrder(suite.ctx, "AAPL", tables.SideSell, 10, 114.99)
	suite.NoError(err)
	suite.Require().NotNil(fill)
	suite.InDelta(114.99, fill.FilledPrice, 1e-9)

	expectedTimestamp, _ := time.Parse("2006-01-02", "2024-01-02")
	suite.True(fill.Timestamp.Equal(expectedTimestamp))
}

// A sell larger than the open long flips into a short at the fill price.
func (suite *SimulatorTestSuite) TestPositionFlip() {
	source := &fakeOHLCVSource{}
	cost := CostConfig{}
	sim := New(cost, source, commission_fee.NewZeroCommissionFee(), time.Now())

	t1, _ := time.Parse("2006-01-02", "2024-01-01")
	t2, _ := time.Parse("2006-01-02", "2024-01-02")

	sim.fills = tables.FillTable{
		{OrderID: "1", Symbol: "AAPL", Side: tables.SideBuy, FilledQuantity: 10, FilledPrice: 100, Timestamp: t1},
		{OrderID: "2", Symbol: "AAPL", Side: tables.SideSell, FilledQuantity: 15, FilledPrice: 110, Timestamp: t2},
	}

	positions, err := sim.Positions()
	suite.NoError(err)
	suite.Require().Len(*positions, 1)
	suite.Equal("AAPL", (*positions)[0].Symbol)
	suite.InDelta(-5, (*positions)[0].Quantity, 1e-9)
	suite.InDelta(110, (*positions)[0].AvgPrice, 1e-9)
}

// Opening a short from flat keeps avg_price non-negative.
func (suite *SimulatorTestSuite) TestShortOpen() {
	source := &fakeOHLCVSource{}
	cost := CostConfig{}
	sim := New(cost, source, commission_fee.NewZeroCommissionFee(), time.Now())

	t1, _ := time.Parse("2006-01-02", "2024-01-01")
	sim.fills = tables.FillTable{
		{OrderID: "1", Symbol: "AAPL", Side: tables.SideSell, FilledQuantity: 10, FilledPrice: 100, Timestamp: t1},
	}

	positions, err := sim.Positions()
	suite.NoError(err)
	suite.Require().Len(*positions, 1)
	suite.InDelta(-10, (*positions)[0].Quantity, 1e-9)
	suite.InDelta(100, (*positions)[0].AvgPrice, 1e-9)
}

func (suite *SimulatorTestSuite) TestExactCloseRemovesPosition() {
	source := &fakeOHLCVSource{}
	cost := CostConfig{}
	sim := New(cost, source, commission_fee.NewZeroCommissionFee(), time.Now())

	t1, _ := time.Parse("2006-01-02", "2024-01-01")
	t2, _ := time.Parse("2006-01-02", "2024-01-02")
	sim.fills = tables.FillTable{
		{OrderID: "1", Symbol: "AAPL", Side: tables.SideBuy, FilledQuantity: 10, FilledPrice: 100, Timestamp: t1},
		{OrderID: "2", Symbol: "AAPL", Side: tables.SideSell, FilledQuantity: 10, FilledPrice: 110, Timestamp: t2},
	}

	positions, err := sim.Positions()
	suite.NoError(err)
	suite.Empty(*positions)
}

func (suite *SimulatorTestSuite) TestFetchFillsFiltersByTimestampRange() {
	source := &fakeOHLCVSource{}
	cost := CostConfig{}
	sim := New(cost, source, commission_fee.NewZeroCommissionFee(), time.Now())

	t1, _ := time.Parse("2006-01-02", "2024-01-01")
	t2, _ := time.Parse("2006-01-02", "2024-06-01")
	sim.fills = tables.FillTable{
		{OrderID: "1", Symbol: "AAPL", Side: tables.SideBuy, FilledQuantity: 10, FilledPrice: 100, Timestamp: t1},
		{OrderID: "2", Symbol: "AAPL", Side: tables.SideBuy, FilledQuantity: 10, FilledPrice: 100, Timestamp: t2},
	}

	start, _ := time.Parse("2006-01-02", "2024-01-01")
	end, _ := time.Parse("2006-01-02", "2024-01-31")

	fills, err := sim.FetchFills(suite.ctx, start, end)
	suite.NoError(err)
	suite.Len(*fills, 1)
	suite.Equal("1", (*fills)[0].OrderID)
}
