// Package simulator implements the deterministic order-fill engine:
// market/limit fill rules against bar-level OHLCV history, an append-only
// fill log, and position derivation by time-ordered replay of fills.
//
// The fill log lives in memory for the lifetime of one Simulator instance.
// A fleet deployment that needs durability across processes should either
// persist fills through the artifact store itself or keep submission and
// fetch on the same process as the Simulator.
package simulator

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-core/internal/datasource"
	"github.com/shopspring/decimal"
	"github.com/rxtech-lab/argo-core/internal/schema"
	"github.com/rxtech-lab/argo-core/internal/simulator/commission_fee"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// MarketFillPriceType selects the base price a market order fills at.
type MarketFillPriceType string

const (
	MarketFillNextOpen     MarketFillPriceType = "next_open"
	MarketFillCurrentClose MarketFillPriceType = "current_close"
)

// LimitFillBarType selects the judging bar for a limit order.
type LimitFillBarType string

const (
	LimitFillNextBar    LimitFillBarType = "next_bar"
	LimitFillCurrentBar LimitFillBarType = "current_bar"
)

// CostConfig bundles the simulator's fill-rule cost parameters.
type CostConfig struct {
	CommissionRate      float64
	SlippageBps         float64
	MarketFillPriceType MarketFillPriceType
	LimitFillBarType    LimitFillBarType
}

// Simulator is a deterministic order-fill engine. It owns a current_datetime
// cursor and an append-only fill log; positions are never stored, only
// recomputed on demand from the fill log.
//
// Known limitation: the next-bar/current-bar judging-bar selection is pure
// time.Time comparison against whatever the wrapped DataSource returns.
// Trading calendars (holidays, after-hours sessions) are not applied here;
// callers that need calendar awareness must filter their DataSource.
type Simulator struct {
	cost   CostConfig
	source datasource.DataSource
	fee    commission_fee.CommissionFee
	cursor time.Time
	fills  tables.FillTable
}

// New creates a Simulator reading bars from source, applying cost, and
// computing commission via fee. cursor is the initial current_datetime.
func New(cost CostConfig, source datasource.DataSource, fee commission_fee.CommissionFee, cursor time.Time) *Simulator {
	return &Simulator{
		cost:   cost,
		source: source,
		fee:    fee,
		cursor: cursor,
	}
}

// SetCurrentDatetime advances (or sets) the simulator's cursor.
func (s *Simulator) SetCurrentDatetime(t time.Time) {
	s.cursor = t
}

// CurrentDatetime returns the simulator's cursor.
func (s *Simulator) CurrentDatetime() time.Time {
	return s.cursor
}

// judgingBar returns the OHLCV row used to judge a fill for symbol,
// relative to cursor T:
//   - next (next_bar/next_open): the first row with datetime > T
//   - !next (current_bar/current_close): the latest row with datetime <= T
//
// The window probed is deliberately wide (a year back, a year forward) so
// that any realistic OHLCV provider returns the bar adjacent to T; callers
// with sparser data should widen the DataSource itself, not this window.
func (s *Simulator) judgingBar(ctx context.Context, symbol string, t time.Time, next bool) (*tables.OHLCVRow, error) {
	start := t.AddDate(-1, 0, 0)
	end := t.AddDate(1, 0, 0)

	table, err := s.source.Fetch(ctx, start, end, []string{symbol})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to fetch judging bar", err)
	}

	rows := make([]tables.OHLCVRow, len(*table))
	copy(rows, *table)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Datetime.Before(rows[j].Datetime) })

	if next {
		for _, row := range rows {
			if row.Datetime.After(t) {
				r := row
				return &r, nil
			}
		}

		return nil, nil
	}

	var found *tables.OHLCVRow

	for i := range rows {
		if !rows[i].Datetime.After(t) {
			r := rows[i]
			found = &r
		} else {
			break
		}
	}

	return found, nil
}

// applySlippage perturbs basePrice in the direction unfavorable to the
// taker: up for buys, down for sells.
func (s *Simulator) applySlippage(basePrice float64, side tables.Side) float64 {
	slip := decimal.NewFromFloat(s.cost.SlippageBps).Div(decimal.NewFromInt(10_000))
	base := decimal.NewFromFloat(basePrice)

	if side == tables.SideBuy {
		return base.Mul(decimal.NewFromInt(1).Add(slip)).InexactFloat64()
	}

	return base.Mul(decimal.NewFromInt(1).Sub(slip)).InexactFloat64()
}

// SubmitMarketOrder fills (symbol, side, quantity) as a market order. If
// the judging bar does not exist, the order is not filled and a nil
// *tables.FillRow is returned with no error.
func (s *Simulator) SubmitMarketOrder(ctx context.Context, symbol string, side tables.Side, quantity float64) (*tables.FillRow, error) {
	next := s.cost.MarketFillPriceType == MarketFillNextOpen

	bar, err := s.judgingBar(ctx, symbol, s.cursor, next)
	if err != nil {
		return nil, err
	}

	if bar == nil {
		return nil, nil
	}

	basePrice := bar.Close
	if next {
		basePrice = bar.Open
	}

	filledPrice := s.applySlippage(basePrice, side)
	commission := s.fee.Calculate(quantity, filledPrice)

	fill := tables.FillRow{
		OrderID:        uuid.NewString(),
		Symbol:         symbol,
		Side:           side,
		FilledQuantity: quantity,
		FilledPrice:    filledPrice,
		Commission:     commission,
		Timestamp:      bar.Datetime,
	}

	return s.appendFill(fill)
}

// SubmitLimitOrder fills (symbol, side, quantity, limitPrice) as a limit
// order. Equality between the limit price and the judging bar's low/high
// does NOT fill (strict inequality only). No slippage is applied to limit
// fills.
func (s *Simulator) SubmitLimitOrder(ctx context.Context, symbol string, side tables.Side, quantity, limitPrice float64) (*tables.FillRow, error) {
	next := s.cost.LimitFillBarType == LimitFillNextBar

	bar, err := s.judgingBar(ctx, symbol, s.cursor, next)
	if err != nil {
		return nil, err
	}

	if bar == nil {
		return nil, nil
	}

	var fills bool

	switch side {
	case tables.SideBuy:
		fills = limitPrice > bar.Low
	case tables.SideSell:
		fills = limitPrice < bar.High
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidOrder, "unknown order side %q", side)
	}

	if !fills {
		return nil, nil
	}

	commission := s.fee.Calculate(quantity, limitPrice)

	fill := tables.FillRow{
		OrderID:        uuid.NewString(),
		Symbol:         symbol,
		Side:           side,
		FilledQuantity: quantity,
		FilledPrice:    limitPrice,
		Commission:     commission,
		Timestamp:      bar.Datetime,
	}

	return s.appendFill(fill)
}

func (s *Simulator) appendFill(fill tables.FillRow) (*tables.FillRow, error) {
	validated, err := schema.ValidateFill(tables.FillTable{fill})
	if err != nil {
		return nil, err
	}

	s.fills = append(s.fills, validated[0])

	return &validated[0], nil
}

// FetchFills returns validated Fill rows with start <= timestamp <= end.
// Results are idempotent and repeatable.
func (s *Simulator) FetchFills(ctx context.Context, start, end time.Time) (*tables.FillTable, error) {
	var out tables.FillTable

	for _, f := range s.fills {
		if !f.Timestamp.Before(start) && !f.Timestamp.After(end) {
			out = append(out, f)
		}
	}

	validated, err := schema.ValidateFill(out)
	if err != nil {
		return nil, err
	}

	return &validated, nil
}

// Positions recomputes the current Position table by replaying every fill
// in the log in timestamp order. Fills with identical timestamps may be
// replayed in either relative order; the stable sort preserves append
// order so a single run is deterministic.
func (s *Simulator) Positions() (*tables.PositionTable, error) {
	ordered := make(tables.FillTable, len(s.fills))
	copy(ordered, s.fills)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Timestamp.Before(ordered[j].Timestamp) })

	bySymbol := map[string]*positionState{}
	order := []string{}

	for _, f := range ordered {
		st, ok := bySymbol[f.Symbol]
		if !ok {
			st = &positionState{}
			bySymbol[f.Symbol] = st
			order = append(order, f.Symbol)
		}

		signedQty := f.FilledQuantity
		if f.Side == tables.SideSell {
			signedQty = -signedQty
		}

		applyFill(st, signedQty, f.FilledPrice)
	}

	var out tables.PositionTable

	for _, symbol := range order {
		st := bySymbol[symbol]
		if st.quantity == 0 {
			continue
		}

		out = append(out, tables.PositionRow{
			Symbol:   symbol,
			Quantity: st.quantity,
			AvgPrice: st.avgPrice,
		})
	}

	validated, err := schema.ValidatePosition(out)
	if err != nil {
		return nil, err
	}

	return &validated, nil
}

// positionState is the running (quantity, avg_price) accumulator for one
// symbol while replaying the fill log.
type positionState struct {
	quantity float64
	avgPrice float64
}

// applyFill mutates st per the five derivation cases: opening from flat,
// same-side addition, opposite-side partial reduction, opposite-side exact
// close, and opposite-side flip.
func applyFill(st *positionState, signedQty, fillPrice float64) {
	switch {
	case st.quantity == 0:
		st.quantity = signedQty
		st.avgPrice = fillPrice
	case sameSign(st.quantity, signedQty):
		newQty := st.quantity + signedQty
		st.avgPrice = (st.quantity*st.avgPrice + signedQty*fillPrice) / newQty
		st.quantity = newQty
	default:
		newQty := st.quantity + signedQty

		switch {
		case newQty == 0:
			st.quantity = 0
			st.avgPrice = 0
		case sameSign(newQty, st.quantity):
			// partial reduction: magnitude shrank but direction unchanged.
			st.quantity = newQty
		default:
			// flip: opposite side overshot the open quantity.
			st.quantity = newQty
			st.avgPrice = fillPrice
		}
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
