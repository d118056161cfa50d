package datasource

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// polygonAggsIterator is the subset of the iter.Iter[models.Agg] result
// returned by ListAggs, narrowed so a fake can stand in for it in tests.
type polygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// polygonAPIClient is the subset of polygon.Client this provider calls.
type polygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) polygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) polygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

// PolygonSource is a live OHLCV DataSource backed by Polygon.io's aggregates
// (bars) endpoint, for equities and other non-crypto universes.
type PolygonSource struct {
	apiClient  polygonAPIClient
	multiplier int
	timespan   models.Timespan
}

// NewPolygonSource creates a PolygonSource using the given API key and bar
// size (e.g. multiplier=1, timespan=models.Minute).
func NewPolygonSource(apiKey string, multiplier int, timespan models.Timespan) (*PolygonSource, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeDataSourceError, "polygon source requires a non-empty API key")
	}

	client := polygon.New(apiKey)

	return &PolygonSource{
		apiClient:  &polygonClientWrapper{client: client},
		multiplier: multiplier,
		timespan:   timespan,
	}, nil
}

// newPolygonSourceWithClient builds a PolygonSource around a fake
// polygonAPIClient, for tests.
func newPolygonSourceWithClient(apiClient polygonAPIClient, multiplier int, timespan models.Timespan) *PolygonSource {
	return &PolygonSource{apiClient: apiClient, multiplier: multiplier, timespan: timespan}
}

// Fetch implements DataSource by issuing one ListAggs call per symbol.
func (s *PolygonSource) Fetch(ctx context.Context, start, end time.Time, symbols []string) (*tables.OHLCVTable, error) {
	if len(symbols) == 0 {
		return nil, errors.New(errors.ErrCodeDataSourceError, "polygon source requires an explicit symbol list")
	}

	var out tables.OHLCVTable

	for _, ticker := range symbols {
		//nolint:exhaustruct // third-party struct with many optional fields
		params := models.ListAggsParams{
			Ticker:     ticker,
			Multiplier: s.multiplier,
			Timespan:   s.timespan,
			From:       models.Millis(start),
			To:         models.Millis(end),
		}.WithLimit(50000)

		aggsIter := s.apiClient.ListAggs(ctx, params)

		for aggsIter.Next() {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			agg := aggsIter.Item()
			out = append(out, tables.OHLCVRow{
				Datetime: time.Time(agg.Timestamp),
				Symbol:   ticker,
				Open:     agg.Open,
				High:     agg.High,
				Low:      agg.Low,
				Close:    agg.Close,
				Volume:   int64(agg.Volume),
			})
		}

		if err := aggsIter.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataSourceError, fmt.Sprintf("polygon aggs fetch failed for %s", ticker), err)
		}
	}

	return &out, nil
}
