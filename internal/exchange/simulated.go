package exchange

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-core/internal/simulator"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// SimulatedExchangeClient bridges the ExchangeClient contract to a
// backtest-local Simulator. SubmitOrders dispatches each order to the
// simulator's market or limit fill rule depending on OrderType; a non-fill
// (no judging bar) is not an error.
type SimulatedExchangeClient struct {
	sim *simulator.Simulator
}

// NewSimulatedExchangeClient wraps sim to satisfy ExchangeClient.
func NewSimulatedExchangeClient(sim *simulator.Simulator) *SimulatedExchangeClient {
	return &SimulatedExchangeClient{sim: sim}
}

// SubmitOrders fills each order against the simulator in order. It does not
// return fills directly: callers observe them via FetchFills.
func (c *SimulatedExchangeClient) SubmitOrders(ctx context.Context, orders *tables.OrderTable) error {
	for _, order := range *orders {
		switch order.OrderType {
		case tables.OrderTypeMarket:
			if _, err := c.sim.SubmitMarketOrder(ctx, order.Symbol, order.Side, order.Quantity); err != nil {
				return errors.Wrap(errors.ErrCodeExchangeClientError, "simulated market order failed", err)
			}
		case tables.OrderTypeLimit:
			if order.Price.IsNone() {
				return errors.Newf(errors.ErrCodeInvalidOrder, "limit order for %s is missing a price", order.Symbol)
			}

			if _, err := c.sim.SubmitLimitOrder(ctx, order.Symbol, order.Side, order.Quantity, order.Price.Unwrap()); err != nil {
				return errors.Wrap(errors.ErrCodeExchangeClientError, "simulated limit order failed", err)
			}
		default:
			return errors.Newf(errors.ErrCodeInvalidOrder, "unknown order_type %q", order.OrderType)
		}
	}

	return nil
}

// FetchFills delegates to the simulator's fill log.
func (c *SimulatedExchangeClient) FetchFills(ctx context.Context, start, end time.Time) (*tables.FillTable, error) {
	return c.sim.FetchFills(ctx, start, end)
}

// FetchPositions delegates to the simulator's on-demand position replay.
func (c *SimulatedExchangeClient) FetchPositions(ctx context.Context) (*tables.PositionTable, error) {
	return c.sim.Positions()
}

// AdvanceTo moves the simulator's current_datetime cursor to t, called by
// the loop driver before each iteration so order fills are judged against
// the correct bar.
func (c *SimulatedExchangeClient) AdvanceTo(t time.Time) {
	c.sim.SetCurrentDatetime(t)
}
