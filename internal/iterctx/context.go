// Package iterctx implements the per-iteration Context: the bag of
// artifacts produced within one logical run_step/run_steps invocation,
// reloaded from the artifact store at the start of every invocation and
// never trusted to persist in memory across them.
package iterctx

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-core/internal/store"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// Context holds the artifacts produced within one logical iteration.
// CurrentPositions is deliberately excluded from persistence: it
// is always obtained fresh from the exchange client at read time and is
// never written back to the store.
type Context struct {
	// CurrentDatetime is immutable after construction.
	CurrentDatetime time.Time

	Signals          optional.Option[*tables.SignalTable]
	PortfolioPlan    optional.Option[*tables.PortfolioTable]
	EntryOrders      optional.Option[*tables.OrderTable]
	ExitOrders       optional.Option[*tables.OrderTable]
	CurrentPositions optional.Option[*tables.PositionTable]
}

// New constructs an empty Context for target, with no artifacts populated.
func New(target time.Time) *Context {
	return &Context{
		CurrentDatetime:  target,
		Signals:          optional.None[*tables.SignalTable](),
		PortfolioPlan:    optional.None[*tables.PortfolioTable](),
		EntryOrders:      optional.None[*tables.OrderTable](),
		ExitOrders:       optional.None[*tables.OrderTable](),
		CurrentPositions: optional.None[*tables.PositionTable](),
	}
}

// Reload rebuilds a Context for target by loading each of the four
// persisted artifact kinds from s. This is the engine's sole means of
// observing artifacts produced in a prior process; the in-memory Context is
// never itself the source of truth.
func Reload(ctx context.Context, s *store.ArtifactStore, target time.Time) (*Context, error) {
	c := New(target)

	var signals tables.SignalTable
	if found, err := s.Load(ctx, tables.KindSignals, target, &signals); err != nil {
		return nil, err
	} else if found {
		c.Signals = optional.Some(&signals)
	}

	var portfolio tables.PortfolioTable
	if found, err := s.Load(ctx, tables.KindPortfolioPlan, target, &portfolio); err != nil {
		return nil, err
	} else if found {
		c.PortfolioPlan = optional.Some(&portfolio)
	}

	var entryOrders tables.OrderTable
	if found, err := s.Load(ctx, tables.KindEntryOrders, target, &entryOrders); err != nil {
		return nil, err
	} else if found {
		c.EntryOrders = optional.Some(&entryOrders)
	}

	var exitOrders tables.OrderTable
	if found, err := s.Load(ctx, tables.KindExitOrders, target, &exitOrders); err != nil {
		return nil, err
	} else if found {
		c.ExitOrders = optional.Some(&exitOrders)
	}

	return c, nil
}

// SetSignals records signals produced for this iteration.
func (c *Context) SetSignals(signals *tables.SignalTable) {
	c.Signals = optional.Some(signals)
}

// SetPortfolioPlan records the portfolio plan. The invariant that a
// portfolio plan implies signals were present when it was produced is
// enforced by the engine's
// step dispatch (ConstructPortfolio requires stored signals before calling
// this), not re-checked here: by the time a step handler calls this setter
// the precondition has already been verified against the reloaded context.
func (c *Context) SetPortfolioPlan(plan *tables.PortfolioTable) {
	c.PortfolioPlan = optional.Some(plan)
}

// SetEntryOrders records entry orders produced for this iteration.
func (c *Context) SetEntryOrders(orders *tables.OrderTable) {
	c.EntryOrders = optional.Some(orders)
}

// SetExitOrders records exit orders produced for this iteration.
func (c *Context) SetExitOrders(orders *tables.OrderTable) {
	c.ExitOrders = optional.Some(orders)
}

// SetCurrentPositions records the positions fetched from the exchange
// client for this iteration. Never persisted by the engine.
func (c *Context) SetCurrentPositions(positions *tables.PositionTable) {
	c.CurrentPositions = optional.Some(positions)
}

// RequireSignals returns the signals table or a PrerequisiteMissing error
// naming the step that needs it.
func (c *Context) RequireSignals(step string) (*tables.SignalTable, error) {
	if c.Signals.IsNone() {
		return nil, prerequisiteMissing(step, "signals")
	}

	return c.Signals.Unwrap(), nil
}

// RequirePortfolioPlan returns the portfolio plan or a PrerequisiteMissing error.
func (c *Context) RequirePortfolioPlan(step string) (*tables.PortfolioTable, error) {
	if c.PortfolioPlan.IsNone() {
		return nil, prerequisiteMissing(step, "portfolio_plan")
	}

	return c.PortfolioPlan.Unwrap(), nil
}

// RequireEntryOrders returns the entry orders or a PrerequisiteMissing error.
func (c *Context) RequireEntryOrders(step string) (*tables.OrderTable, error) {
	if c.EntryOrders.IsNone() {
		return nil, prerequisiteMissing(step, "entry_orders")
	}

	return c.EntryOrders.Unwrap(), nil
}

// RequireExitOrders returns the exit orders or a PrerequisiteMissing error.
func (c *Context) RequireExitOrders(step string) (*tables.OrderTable, error) {
	if c.ExitOrders.IsNone() {
		return nil, prerequisiteMissing(step, "exit_orders")
	}

	return c.ExitOrders.Unwrap(), nil
}

func prerequisiteMissing(step, needed string) error {
	return errors.Newf(errors.ErrCodePrerequisiteMissing, "step %s requires prerequisite artifact %q, which is absent", step, needed)
}
