package datasource

import (
	"context"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/stretchr/testify/suite"
)

// fakeDataSource is a canned DataSource for exercising OHLCVValidatingSource
// without a network call.
type fakeDataSource struct {
	table *tables.OHLCVTable
	err   error
}

func (f *fakeDataSource) Fetch(ctx context.Context, start, end time.Time, symbols []string) (*tables.OHLCVTable, error) {
	return f.table, f.err
}

type DataSourceTestSuite struct {
	suite.Suite
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

func (suite *DataSourceTestSuite) TestOHLCVValidatingSourcePassesValidRows() {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	valid := tables.OHLCVTable{
		{Datetime: now, Symbol: "BTCUSDT", Open: 100, High: 110, Low: 90, Close: 105, Volume: 10},
	}

	src := NewOHLCVValidatingSource(&fakeDataSource{table: &valid})

	out, err := src.Fetch(context.Background(), now.Add(-time.Hour), now, []string{"BTCUSDT"})
	suite.NoError(err)
	suite.Len(*out, 1)
}

func (suite *DataSourceTestSuite) TestOHLCVValidatingSourceRejectsMissingSymbol() {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	invalid := tables.OHLCVTable{
		{Datetime: now, Symbol: "", Open: 100, High: 110, Low: 90, Close: 105, Volume: 10},
	}

	src := NewOHLCVValidatingSource(&fakeDataSource{table: &invalid})

	_, err := src.Fetch(context.Background(), now.Add(-time.Hour), now, []string{"BTCUSDT"})
	suite.Error(err)
}

func (suite *DataSourceTestSuite) TestOHLCVValidatingSourceWrapsInnerError() {
	src := NewOHLCVValidatingSource(&fakeDataSource{err: context.DeadlineExceeded})

	_, err := src.Fetch(context.Background(), time.Now(), time.Now(), []string{"BTCUSDT"})
	suite.Error(err)
}

// fakePolygonIterator implements polygonAggsIterator over a canned slice.
type fakePolygonIterator struct {
	aggs []models.Agg
	pos  int
}

func (f *fakePolygonIterator) Next() bool {
	if f.pos >= len(f.aggs) {
		return false
	}
	f.pos++
	return true
}

func (f *fakePolygonIterator) Item() models.Agg {
	return f.aggs[f.pos-1]
}

func (f *fakePolygonIterator) Err() error { return nil }

type fakePolygonClient struct {
	iterator *fakePolygonIterator
}

func (f *fakePolygonClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) polygonAggsIterator {
	return f.iterator
}

func (suite *DataSourceTestSuite) TestPolygonSourceFetchConvertsAggs() {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fake := &fakePolygonClient{iterator: &fakePolygonIterator{aggs: []models.Agg{
		{Timestamp: models.Millis(now), Open: 100, High: 110, Low: 90, Close: 105, Volume: 10},
	}}}

	src := newPolygonSourceWithClient(fake, 1, models.Minute)

	out, err := src.Fetch(context.Background(), now.Add(-time.Hour), now, []string{"AAPL"})
	suite.NoError(err)
	suite.Len(*out, 1)
	suite.Equal("AAPL", (*out)[0].Symbol)
	suite.Equal(100.0, (*out)[0].Open)
}

func (suite *DataSourceTestSuite) TestPolygonSourceRequiresSymbols() {
	src := newPolygonSourceWithClient(&fakePolygonClient{iterator: &fakePolygonIterator{}}, 1, models.Minute)

	_, err := src.Fetch(context.Background(), time.Now(), time.Now(), nil)
	suite.Error(err)
}

func (suite *DataSourceTestSuite) TestNewPolygonSourceRejectsEmptyAPIKey() {
	_, err := NewPolygonSource("", 1, models.Minute)
	suite.Error(err)
}

func (suite *DataSourceTestSuite) TestBinanceKlineToRowParsesStrings() {
	kline := &binance.Kline{
		OpenTime:  1704067200000,
		Open:      "100.5",
		High:      "110.0",
		Low:       "90.0",
		Close:     "105.0",
		Volume:    "10",
		CloseTime: 1704067259999,
	}

	row, err := binanceKlineToRow("BTCUSDT", kline)
	suite.NoError(err)
	suite.Equal("BTCUSDT", row.Symbol)
	suite.Equal(100.5, row.Open)
	suite.Equal(int64(10), row.Volume)
}

func (suite *DataSourceTestSuite) TestBinanceKlineToRowRejectsUnparsablePrice() {
	kline := &binance.Kline{Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1"}

	_, err := binanceKlineToRow("BTCUSDT", kline)
	suite.Error(err)
}
