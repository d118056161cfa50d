package datasource

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// klinesService is the chained-builder subset of binance.KlinesService the
// fetch path drives, narrowed so a fake can stand in for it.
type klinesService interface {
	Symbol(symbol string) klinesService
	Interval(interval string) klinesService
	StartTime(startTime int64) klinesService
	EndTime(endTime int64) klinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// binanceKlinesWrapper wraps binance.KlinesService's chained builder so the
// fetch call below can be tested against a fake.
type binanceKlinesWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesWrapper) Symbol(symbol string) klinesService {
	w.service = w.service.Symbol(symbol)
	return w
}

func (w *binanceKlinesWrapper) Interval(interval string) klinesService {
	w.service = w.service.Interval(interval)
	return w
}

func (w *binanceKlinesWrapper) StartTime(startTime int64) klinesService {
	w.service = w.service.StartTime(startTime)
	return w
}

func (w *binanceKlinesWrapper) EndTime(endTime int64) klinesService {
	w.service = w.service.EndTime(endTime)
	return w
}

func (w *binanceKlinesWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

// BinanceSource is a live OHLCV DataSource backed by go-binance/v2's klines
// endpoint.
type BinanceSource struct {
	client   *binance.Client
	interval string
}

// NewBinanceSource creates a BinanceSource using public (unauthenticated)
// market-data endpoints at the given kline interval (e.g. "1m", "1h", "1d").
func NewBinanceSource(interval string) *BinanceSource {
	return &BinanceSource{
		client:   binance.NewClient("", ""),
		interval: interval,
	}
}

// Fetch implements DataSource by issuing one klines call per symbol and
// concatenating the rows.
func (s *BinanceSource) Fetch(ctx context.Context, start, end time.Time, symbols []string) (*tables.OHLCVTable, error) {
	if len(symbols) == 0 {
		return nil, errors.New(errors.ErrCodeDataSourceError, "binance source requires an explicit symbol list")
	}

	var out tables.OHLCVTable

	for _, symbol := range symbols {
		svc := &binanceKlinesWrapper{service: s.client.NewKlinesService()}

		klines, err := svc.Symbol(symbol).
			Interval(s.interval).
			StartTime(start.UnixMilli()).
			EndTime(end.UnixMilli()).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataSourceError, fmt.Sprintf("binance klines fetch failed for %s", symbol), err)
		}

		for _, k := range klines {
			row, err := binanceKlineToRow(symbol, k)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to parse binance kline", err)
			}

			out = append(out, row)
		}
	}

	return &out, nil
}

func binanceKlineToRow(symbol string, k *binance.Kline) (tables.OHLCVRow, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return tables.OHLCVRow{}, err
	}

	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return tables.OHLCVRow{}, err
	}

	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return tables.OHLCVRow{}, err
	}

	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return tables.OHLCVRow{}, err
	}

	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return tables.OHLCVRow{}, err
	}

	return tables.OHLCVRow{
		Datetime: time.UnixMilli(k.OpenTime),
		Symbol:   symbol,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Volume:   int64(volume),
	}, nil
}
