package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-core/internal/datasource"
	"github.com/rxtech-lab/argo-core/internal/exchange"
	"github.com/rxtech-lab/argo-core/internal/iterctx"
	"github.com/rxtech-lab/argo-core/internal/logger"
	"github.com/rxtech-lab/argo-core/internal/schema"
	"github.com/rxtech-lab/argo-core/internal/store"
	"github.com/rxtech-lab/argo-core/internal/strategycomp"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/internal/window"
	"github.com/rxtech-lab/argo-core/pkg/errors"
	"go.uber.org/zap"
)

// DataSourceBinding pairs one configured data-source descriptor (the
// offset/window knobs) with the live or historical
// DataSource that serves it. The core looks up the binding named "ohlcv"
// for every step that needs bar history; a SignalCalculator sees every
// configured binding, keyed by name.
type DataSourceBinding struct {
	Descriptor window.Descriptor
	Source     datasource.DataSource
}

const ohlcvBindingName = "ohlcv"

// Engine is the step-ordered state machine driving the six-step pipeline.
// It never keeps a Context across RunStep invocations: every call reloads
// from the store, so the store stays the only source of truth and a
// multi-process live deployment behaves identically to a single-process
// backtest.
type Engine struct {
	store       *store.ArtifactStore
	dataSources map[string]DataSourceBinding

	signalCalculator     strategycomp.SignalCalculator
	portfolioConstructor strategycomp.PortfolioConstructor
	entryOrderCreator    strategycomp.EntryOrderCreator
	exitOrderCreator     strategycomp.ExitOrderCreator

	exchangeClient exchange.ExchangeClient
	logger         *logger.Logger
}

// New constructs an Engine. dataSources must include a binding named
// "ohlcv"; CreateEntryOrders/CreateExitOrders use it to fetch bar history
// for the order creators.
func New(
	artifactStore *store.ArtifactStore,
	dataSources map[string]DataSourceBinding,
	signalCalculator strategycomp.SignalCalculator,
	portfolioConstructor strategycomp.PortfolioConstructor,
	entryOrderCreator strategycomp.EntryOrderCreator,
	exitOrderCreator strategycomp.ExitOrderCreator,
	exchangeClient exchange.ExchangeClient,
	log *logger.Logger,
) *Engine {
	return &Engine{
		store:                artifactStore,
		dataSources:          dataSources,
		signalCalculator:     signalCalculator,
		portfolioConstructor: portfolioConstructor,
		entryOrderCreator:    entryOrderCreator,
		exitOrderCreator:     exitOrderCreator,
		exchangeClient:       exchangeClient,
		logger:               log,
	}
}

// RunStep performs one step dispatch: reload the Context for
// target, set current_datetime, dispatch to the step handler, and persist
// whatever artifact the step produces. Step-internal failures from a user
// component, data source, or exchange client are wrapped in *EngineError;
// SchemaViolation and PrerequisiteMissing errors are surfaced unchanged.
func (e *Engine) RunStep(ctx context.Context, target time.Time, step Step) error {
	if !step.Valid() {
		return invalidStepName(step)
	}

	iterCtx, err := iterctx.Reload(ctx, e.store, target)
	if err != nil {
		return err
	}

	iterCtx.CurrentDatetime = target

	e.logger.Debug("running step", zap.String("step", string(step)), zap.Time("target", target))

	switch step {
	case StepCalculateSignals:
		return e.runCalculateSignals(ctx, iterCtx)
	case StepConstructPortfolio:
		return e.runConstructPortfolio(ctx, iterCtx)
	case StepCreateEntryOrders:
		return e.runCreateEntryOrders(ctx, iterCtx)
	case StepCreateExitOrders:
		return e.runCreateExitOrders(ctx, iterCtx)
	case StepSubmitEntryOrders:
		return e.runSubmitEntryOrders(ctx, iterCtx)
	case StepSubmitExitOrders:
		return e.runSubmitExitOrders(ctx, iterCtx)
	default:
		return invalidStepName(step)
	}
}

// RunSteps invokes RunStep for each step in steps, in the given order,
// halting on the first failure.
func (e *Engine) RunSteps(ctx context.Context, target time.Time, steps []Step) error {
	for _, step := range steps {
		if err := e.RunStep(ctx, target, step); err != nil {
			return err
		}
	}

	return nil
}

// fetchDataSources computes the leak-free window for every configured
// binding and fetches it, returning a map keyed by binding name. The
// "ohlcv" key is always present when a binding of that name is configured.
func (e *Engine) fetchDataSources(ctx context.Context, target time.Time) (map[string]any, error) {
	out := make(map[string]any, len(e.dataSources))

	for name, binding := range e.dataSources {
		start, end, err := window.Calculate(target, binding.Descriptor.OffsetSeconds, binding.Descriptor.WindowSeconds)
		if err != nil {
			return nil, err
		}

		table, err := binding.Source.Fetch(ctx, start, end, nil)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataSourceError, fmt.Sprintf("failed to fetch data source %q", name), err)
		}

		out[name] = table
	}

	return out, nil
}

// fetchOHLCV fetches just the "ohlcv" binding's window, used by the entry
// and exit order creators.
func (e *Engine) fetchOHLCV(ctx context.Context, target time.Time) (*tables.OHLCVTable, error) {
	binding, ok := e.dataSources[ohlcvBindingName]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "no data source named %q configured", ohlcvBindingName)
	}

	start, end, err := window.Calculate(target, binding.Descriptor.OffsetSeconds, binding.Descriptor.WindowSeconds)
	if err != nil {
		return nil, err
	}

	table, err := binding.Source.Fetch(ctx, start, end, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to fetch ohlcv data source", err)
	}

	return table, nil
}

func (e *Engine) fetchPositions(ctx context.Context) (*tables.PositionTable, error) {
	positions, err := e.exchangeClient.FetchPositions(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExchangeClientError, "failed to fetch positions", err)
	}

	return positions, nil
}

// runCalculateSignals fetches every configured data source for the target
// window, runs the signal calculator, and stores the validated signals.
func (e *Engine) runCalculateSignals(ctx context.Context, iterCtx *iterctx.Context) error {
	dataSources, err := e.fetchDataSources(ctx, iterCtx.CurrentDatetime)
	if err != nil {
		return wrapStep(StepCalculateSignals, iterCtx.CurrentDatetime, "failed to fetch configured data sources", err)
	}

	signals, err := e.signalCalculator.Calculate(dataSources)
	if err != nil {
		return wrapStep(StepCalculateSignals, iterCtx.CurrentDatetime, "signal calculator failed", err)
	}

	validated, err := schema.ValidateSignal(*signals)
	if err != nil {
		return err
	}

	iterCtx.SetSignals(&validated)

	return e.store.Save(ctx, tables.KindSignals, iterCtx.CurrentDatetime, validated)
}

// runConstructPortfolio requires stored signals, fetches current positions
// fresh from the exchange client, and stores the validated portfolio plan.
func (e *Engine) runConstructPortfolio(ctx context.Context, iterCtx *iterctx.Context) error {
	signals, err := iterCtx.RequireSignals(string(StepConstructPortfolio))
	if err != nil {
		return err
	}

	positions, err := e.fetchPositions(ctx)
	if err != nil {
		return wrapStep(StepConstructPortfolio, iterCtx.CurrentDatetime, "failed to fetch current positions", err)
	}

	plan, err := e.portfolioConstructor.Construct(signals, positions)
	if err != nil {
		return wrapStep(StepConstructPortfolio, iterCtx.CurrentDatetime, "portfolio constructor failed", err)
	}

	validated, err := schema.ValidatePortfolio(*plan)
	if err != nil {
		return err
	}

	iterCtx.SetPortfolioPlan(&validated)

	return e.store.Save(ctx, tables.KindPortfolioPlan, iterCtx.CurrentDatetime, validated)
}

// runCreateEntryOrders requires a stored portfolio plan and turns it into
// validated entry orders.
func (e *Engine) runCreateEntryOrders(ctx context.Context, iterCtx *iterctx.Context) error {
	plan, err := iterCtx.RequirePortfolioPlan(string(StepCreateEntryOrders))
	if err != nil {
		return err
	}

	positions, err := e.fetchPositions(ctx)
	if err != nil {
		return wrapStep(StepCreateEntryOrders, iterCtx.CurrentDatetime, "failed to fetch current positions", err)
	}

	ohlcv, err := e.fetchOHLCV(ctx, iterCtx.CurrentDatetime)
	if err != nil {
		return wrapStep(StepCreateEntryOrders, iterCtx.CurrentDatetime, "failed to fetch ohlcv", err)
	}

	orders, err := e.entryOrderCreator.Create(plan, positions, ohlcv)
	if err != nil {
		return wrapStep(StepCreateEntryOrders, iterCtx.CurrentDatetime, "entry order creator failed", err)
	}

	validated, err := schema.ValidateOrder(*orders)
	if err != nil {
		return err
	}

	iterCtx.SetEntryOrders(&validated)

	return e.store.Save(ctx, tables.KindEntryOrders, iterCtx.CurrentDatetime, validated)
}

// runCreateExitOrders derives exit orders from current positions and bar
// history. Unlike entry orders, exit orders require no stored prerequisite.
func (e *Engine) runCreateExitOrders(ctx context.Context, iterCtx *iterctx.Context) error {
	positions, err := e.fetchPositions(ctx)
	if err != nil {
		return wrapStep(StepCreateExitOrders, iterCtx.CurrentDatetime, "failed to fetch current positions", err)
	}

	ohlcv, err := e.fetchOHLCV(ctx, iterCtx.CurrentDatetime)
	if err != nil {
		return wrapStep(StepCreateExitOrders, iterCtx.CurrentDatetime, "failed to fetch ohlcv", err)
	}

	orders, err := e.exitOrderCreator.Create(positions, ohlcv)
	if err != nil {
		return wrapStep(StepCreateExitOrders, iterCtx.CurrentDatetime, "exit order creator failed", err)
	}

	validated, err := schema.ValidateOrder(*orders)
	if err != nil {
		return err
	}

	iterCtx.SetExitOrders(&validated)

	return e.store.Save(ctx, tables.KindExitOrders, iterCtx.CurrentDatetime, validated)
}

// runSubmitEntryOrders submits stored entry orders when non-empty. No
// artifact is produced.
func (e *Engine) runSubmitEntryOrders(ctx context.Context, iterCtx *iterctx.Context) error {
	orders, err := iterCtx.RequireEntryOrders(string(StepSubmitEntryOrders))
	if err != nil {
		return err
	}

	if len(*orders) == 0 {
		return nil
	}

	if err := e.exchangeClient.SubmitOrders(ctx, orders); err != nil {
		return wrapStep(StepSubmitEntryOrders, iterCtx.CurrentDatetime, "failed to submit entry orders", err)
	}

	return nil
}

// runSubmitExitOrders submits stored exit orders when non-empty. No
// artifact is produced.
func (e *Engine) runSubmitExitOrders(ctx context.Context, iterCtx *iterctx.Context) error {
	orders, err := iterCtx.RequireExitOrders(string(StepSubmitExitOrders))
	if err != nil {
		return err
	}

	if len(*orders) == 0 {
		return nil
	}

	if err := e.exchangeClient.SubmitOrders(ctx, orders); err != nil {
		return wrapStep(StepSubmitExitOrders, iterCtx.CurrentDatetime, "failed to submit exit orders", err)
	}

	return nil
}
