// Package strategycomp declares the four one-method user-supplied strategy
// components. The engine treats each component's Parameters
// as opaque; a component is a capability record (one method, one parameter
// type), not a class hierarchy.
package strategycomp

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-core/internal/tables"
)

// SignalCalculator computes the Signal table for the current iteration's
// window of data sources. dataSources always includes the key "ohlcv".
type SignalCalculator interface {
	Calculate(dataSources map[string]any) (*tables.SignalTable, error)
	// ParameterSchema returns the JSON schema for this calculator's opaque
	// parameter type, generated the same way the engine's own config
	// surface is (see internal/config), so operators can validate strategy
	// parameters before a run.
	ParameterSchema() (string, error)
}

// PortfolioConstructor selects symbols (and any per-symbol metadata) for
// the current iteration from signals and current positions.
type PortfolioConstructor interface {
	Construct(signals *tables.SignalTable, positions *tables.PositionTable) (*tables.PortfolioTable, error)
	ParameterSchema() (string, error)
}

// EntryOrderCreator turns a portfolio plan into entry orders.
type EntryOrderCreator interface {
	Create(plan *tables.PortfolioTable, positions *tables.PositionTable, ohlcv *tables.OHLCVTable) (*tables.OrderTable, error)
	ParameterSchema() (string, error)
}

// ExitOrderCreator turns current positions into exit orders.
type ExitOrderCreator interface {
	Create(positions *tables.PositionTable, ohlcv *tables.OHLCVTable) (*tables.OrderTable, error)
	ParameterSchema() (string, error)
}

// ParameterSchema reflects params into an indented JSON schema using the
// same invopop/jsonschema reflection the engine's config surface uses, so
// every strategy component can expose ParameterSchema() with one line.
func ParameterSchema(params any) (string, error) {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(params)

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
