// Package tables declares the closed set of tabular artifacts that flow
// between the strategy engine, user-supplied strategy components, the
// execution simulator, and the artifact store. Every table type keeps an
// ExtraColumns escape hatch so a producer may emit arbitrary additional
// numeric/string columns without widening the Go struct.
package tables

import (
	"time"

	"github.com/moznion/go-optional"
)

// Side is the direction of an order or a fill.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType distinguishes market orders (no limit price) from limit orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OHLCVRow is a single bar: one (symbol, datetime) with open/high/low/close/volume.
type OHLCVRow struct {
	Datetime time.Time `yaml:"datetime" json:"datetime" csv:"datetime" validate:"required"`
	Symbol   string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Open     float64   `yaml:"open" json:"open" csv:"open" validate:"required"`
	High     float64   `yaml:"high" json:"high" csv:"high" validate:"required"`
	Low      float64   `yaml:"low" json:"low" csv:"low" validate:"required"`
	Close    float64   `yaml:"close" json:"close" csv:"close" validate:"required"`
	Volume   int64     `yaml:"volume" json:"volume" csv:"volume" validate:"required"`

	ExtraColumns map[string]any `yaml:"-" json:"-" csv:"-"`
}

// OHLCVTable is a slice of OHLCVRow, ordered by the producer (the core never
// relies on a particular ordering beyond timestamp comparisons it performs
// itself).
type OHLCVTable []OHLCVRow

// SignalRow carries a signal calculator's per-symbol output for one datetime.
// The required columns are only datetime/symbol; a producer adds whatever
// numeric signal columns it needs (e.g. "signal", "signal_momentum") via
// ExtraColumns.
type SignalRow struct {
	Datetime time.Time `yaml:"datetime" json:"datetime" csv:"datetime" validate:"required"`
	Symbol   string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`

	ExtraColumns map[string]any `yaml:"-" json:"-" csv:"-"`
}

// SignalTable is a slice of SignalRow.
type SignalTable []SignalRow

// PortfolioRow carries a portfolio constructor's selection for one symbol.
// Common extra columns are "signal_strength", "priority", "tags".
type PortfolioRow struct {
	Datetime time.Time `yaml:"datetime" json:"datetime" csv:"datetime" validate:"required"`
	Symbol   string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`

	ExtraColumns map[string]any `yaml:"-" json:"-" csv:"-"`
}

// PortfolioTable is a slice of PortfolioRow.
type PortfolioTable []PortfolioRow

// PositionRow is a per-symbol (quantity, avg_price) pair derived by replaying
// the simulator's fill log. Quantity is signed (positive = long, negative =
// short); avg_price is always non-negative, even for short positions.
type PositionRow struct {
	Symbol   string  `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Quantity float64 `yaml:"quantity" json:"quantity" csv:"quantity" validate:"required"`
	AvgPrice float64 `yaml:"avg_price" json:"avg_price" csv:"avg_price" validate:"gte=0"`

	ExtraColumns map[string]any `yaml:"-" json:"-" csv:"-"`
}

// PositionTable is a slice of PositionRow. Rows with quantity == 0 must be
// absent; callers derive PositionTable from the fill log and never persist
// flat symbols.
type PositionTable []PositionRow

// OrderRow is an order produced by an entry/exit order creator, or submitted
// to an exchange client. Price is modeled as optional.Option[float64] rather
// than a sentinel like -1: it must be absent for market orders and present
// for limit orders.
type OrderRow struct {
	Symbol    string                         `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side      Side                           `yaml:"side" json:"side" csv:"side" validate:"required,oneof=buy sell"`
	Quantity  float64                        `yaml:"quantity" json:"quantity" csv:"quantity" validate:"required,gt=0"`
	Price     optional.Option[float64]       `yaml:"price" json:"price" csv:"price"`
	OrderType OrderType                      `yaml:"order_type" json:"order_type" csv:"order_type" validate:"required,oneof=market limit"`

	ExtraColumns map[string]any `yaml:"-" json:"-" csv:"-"`
}

// OrderTable is a slice of OrderRow.
type OrderTable []OrderRow

// FillRow is a realized execution event emitted by the simulator (or a live
// exchange client).
type FillRow struct {
	OrderID        string    `yaml:"order_id" json:"order_id" csv:"order_id" validate:"required"`
	Symbol         string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side           Side      `yaml:"side" json:"side" csv:"side" validate:"required,oneof=buy sell"`
	FilledQuantity float64   `yaml:"filled_quantity" json:"filled_quantity" csv:"filled_quantity" validate:"required,gt=0"`
	FilledPrice    float64   `yaml:"filled_price" json:"filled_price" csv:"filled_price" validate:"required,gt=0"`
	Commission     float64   `yaml:"commission" json:"commission" csv:"commission" validate:"gte=0"`
	Timestamp      time.Time `yaml:"timestamp" json:"timestamp" csv:"timestamp" validate:"required"`

	ExtraColumns map[string]any `yaml:"-" json:"-" csv:"-"`
}

// FillTable is a slice of FillRow, kept in append order by the simulator.
type FillTable []FillRow

// MetricsRow is a single day's worth of raw performance metrics. The core
// only stores these; it does not compute statistics beyond what a caller
// supplies.
type MetricsRow struct {
	Date               time.Time `yaml:"date" json:"date" csv:"date" validate:"required"`
	DailyReturn        float64   `yaml:"daily_return" json:"daily_return" csv:"daily_return"`
	CumulativeReturn   float64   `yaml:"cumulative_return" json:"cumulative_return" csv:"cumulative_return"`
	Volatility         float64   `yaml:"volatility" json:"volatility" csv:"volatility"`
	SharpeRatio        float64   `yaml:"sharpe_ratio" json:"sharpe_ratio" csv:"sharpe_ratio"`
	MaxDrawdown        float64   `yaml:"max_drawdown" json:"max_drawdown" csv:"max_drawdown"`

	ExtraColumns map[string]any `yaml:"-" json:"-" csv:"-"`
}

// MetricsTable is a slice of MetricsRow.
type MetricsTable []MetricsRow

// Kind identifies one of the artifact kinds the store persists individually.
type Kind string

const (
	KindSignals       Kind = "signals"
	KindPortfolioPlan Kind = "portfolio_plan"
	KindEntryOrders   Kind = "entry_orders"
	KindExitOrders    Kind = "exit_orders"
)
