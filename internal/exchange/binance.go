package exchange

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// createOrderService is the chained-builder subset of
// *binance.CreateOrderService this client drives, narrowed to a fake-able
// interface the same way internal/datasource/binance.go wraps
// KlinesService.
type createOrderService interface {
	Symbol(symbol string) createOrderService
	Side(side binance.SideType) createOrderService
	Type(orderType binance.OrderType) createOrderService
	Quantity(quantity string) createOrderService
	Price(price string) createOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

type binanceOrderServiceWrapper struct {
	service *binance.CreateOrderService
}

func (w *binanceOrderServiceWrapper) Symbol(symbol string) createOrderService {
	w.service = w.service.Symbol(symbol)
	return w
}

func (w *binanceOrderServiceWrapper) Side(side binance.SideType) createOrderService {
	w.service = w.service.Side(side)
	return w
}

func (w *binanceOrderServiceWrapper) Type(orderType binance.OrderType) createOrderService {
	w.service = w.service.Type(orderType)
	return w
}

func (w *binanceOrderServiceWrapper) Quantity(quantity string) createOrderService {
	w.service = w.service.Quantity(quantity)
	return w
}

func (w *binanceOrderServiceWrapper) Price(price string) createOrderService {
	w.service = w.service.Price(price)
	return w
}

func (w *binanceOrderServiceWrapper) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return w.service.Do(ctx)
}

// BinanceExchangeClient is a live ExchangeClient backed by go-binance/v2's
// spot trading REST endpoints, the live-trading counterpart to
// SimulatedExchangeClient. FetchFills/FetchPositions are best-effort
// mappings of Binance's trade/account endpoints onto the core's Fill/
// Position tables; they are not a full reconciliation engine.
type BinanceExchangeClient struct {
	client *binance.Client
}

// NewBinanceExchangeClient creates a BinanceExchangeClient authenticated
// with apiKey/secretKey.
func NewBinanceExchangeClient(apiKey, secretKey string) *BinanceExchangeClient {
	return &BinanceExchangeClient{client: binance.NewClient(apiKey, secretKey)}
}

// SubmitOrders places each order via Binance's order-creation endpoint.
// Market orders omit price; limit orders require one, matching the Order
// schema's null-price rule.
func (c *BinanceExchangeClient) SubmitOrders(ctx context.Context, orders *tables.OrderTable) error {
	for _, order := range *orders {
		svc := &binanceOrderServiceWrapper{service: c.client.NewCreateOrderService()}

		side := binance.SideTypeBuy
		if order.Side == tables.SideSell {
			side = binance.SideTypeSell
		}

		builder := svc.Symbol(order.Symbol).Side(side).Quantity(strconv.FormatFloat(order.Quantity, 'f', -1, 64))

		switch order.OrderType {
		case tables.OrderTypeMarket:
			builder = builder.Type(binance.OrderTypeMarket)
		case tables.OrderTypeLimit:
			if order.Price.IsNone() {
				return errors.Newf(errors.ErrCodeInvalidOrder, "limit order for %s is missing a price", order.Symbol)
			}

			builder = builder.Type(binance.OrderTypeLimit).Price(strconv.FormatFloat(order.Price.Unwrap(), 'f', -1, 64))
		default:
			return errors.Newf(errors.ErrCodeInvalidOrder, "unknown order_type %q", order.OrderType)
		}

		if _, err := builder.Do(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeExchangeClientError, "binance order submission failed", err)
		}
	}

	return nil
}

// FetchFills is not implemented against Binance's trade-history endpoint in
// this core: live deployments are expected to reconcile fills through
// Binance's user-data stream rather than polling here. It returns an empty
// table; submitting orders never implies fills are available.
func (c *BinanceExchangeClient) FetchFills(_ context.Context, _, _ time.Time) (*tables.FillTable, error) {
	return &tables.FillTable{}, nil
}

// FetchPositions reads Binance's spot account balances and reports any
// non-zero free balance as a long position at zero avg_price, since spot
// balances carry no cost-basis of their own. Derivatives/margin shorts are
// out of scope for this client.
func (c *BinanceExchangeClient) FetchPositions(ctx context.Context) (*tables.PositionTable, error) {
	account, err := c.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExchangeClientError, "failed to fetch binance account", err)
	}

	var out tables.PositionTable

	for _, balance := range account.Balances {
		free, err := strconv.ParseFloat(balance.Free, 64)
		if err != nil {
			continue
		}

		if free == 0 {
			continue
		}

		out = append(out, tables.PositionRow{Symbol: balance.Asset, Quantity: free, AvgPrice: 0})
	}

	return &out, nil
}
