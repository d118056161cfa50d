// Package exchange declares the exchange-client contract: submit
// orders, fetch fills, fetch positions. The engine never assumes fills are
// instantaneous; submit_orders need not return fills.
package exchange

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-core/internal/tables"
)

// ExchangeClient is satisfied by both the simulator bridge (backtests) and a
// live broker adapter (paper/live trading).
type ExchangeClient interface {
	// SubmitOrders sends orders to the exchange. It does not need to
	// return fills: the simulator appends to its own fill log, and a live
	// broker typically fills asynchronously.
	SubmitOrders(ctx context.Context, orders *tables.OrderTable) error

	// FetchFills returns fills recorded within [start, end].
	FetchFills(ctx context.Context, start, end time.Time) (*tables.FillTable, error)

	// FetchPositions returns the exchange's current view of open positions.
	// Positions are never persisted by the engine; callers
	// always fetch fresh.
	FetchPositions(ctx context.Context) (*tables.PositionTable, error)
}
