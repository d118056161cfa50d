// Package schema validates tabular artifacts against their declared
// required-column/type contracts at every inter-component boundary. Each
// validator returns the same table on success, or a *errors.Error carrying
// ErrCodeSchemaViolation and a structured SchemaViolationError describing
// exactly which column/constraint failed.
package schema

import (
	goerrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

var validate = validator.New()

func wrapViolation(table string, violation *errors.SchemaViolationError) error {
	return errors.Wrap(errors.ErrCodeSchemaViolation, fmt.Sprintf("schema violation in table %s", table), violation)
}

func fieldViolation(tableName string, verr validator.FieldError) *errors.SchemaViolationError {
	column := verr.Field()

	switch verr.Tag() {
	case "required":
		return errors.NewSchemaViolation(tableName, errors.ReasonMissingColumn, column,
			fmt.Sprintf("required column %s is absent or zero-valued", column))
	case "oneof":
		return errors.NewSchemaViolation(tableName, errors.ReasonDisallowedValue, column,
			fmt.Sprintf("column %s must be one of [%s], got %v", column, verr.Param(), verr.Value()))
	case "gt", "gte":
		return errors.NewSchemaViolation(tableName, errors.ReasonDisallowedValue, column,
			fmt.Sprintf("column %s failed constraint %s=%s, got %v", column, verr.Tag(), verr.Param(), verr.Value()))
	default:
		return errors.NewSchemaViolation(tableName, errors.ReasonWrongType, column,
			fmt.Sprintf("column %s failed validation %s", column, verr.Tag()))
	}
}

// firstFieldViolation converts the first validator.FieldError found in err
// into a *errors.SchemaViolationError. It returns nil if err is not a
// validator.ValidationErrors.
func firstFieldViolation(tableName string, err error) *errors.SchemaViolationError {
	var verrs validator.ValidationErrors
	if !goerrors.As(err, &verrs) || len(verrs) == 0 {
		return nil
	}

	return fieldViolation(tableName, verrs[0])
}

// ValidateOHLCV validates a table of OHLCV rows: datetime/symbol required;
// open/high/low/close/volume required and may not be null.
func ValidateOHLCV(t tables.OHLCVTable) (tables.OHLCVTable, error) {
	for i := range t {
		if err := validate.Struct(&t[i]); err != nil {
			if violation := firstFieldViolation("OHLCV", err); violation != nil {
				return nil, wrapViolation("OHLCV", violation)
			}

			return nil, wrapViolation("OHLCV", errors.NewSchemaViolation("OHLCV", errors.ReasonWrongType, "", err.Error()))
		}
	}

	return t, nil
}

// ValidateSignal validates a table of Signal rows: datetime/symbol required.
func ValidateSignal(t tables.SignalTable) (tables.SignalTable, error) {
	for i := range t {
		if err := validate.Struct(&t[i]); err != nil {
			if violation := firstFieldViolation("Signal", err); violation != nil {
				return nil, wrapViolation("Signal", violation)
			}

			return nil, wrapViolation("Signal", errors.NewSchemaViolation("Signal", errors.ReasonWrongType, "", err.Error()))
		}
	}

	return t, nil
}

// ValidatePortfolio validates a table of Portfolio rows: datetime/symbol required.
func ValidatePortfolio(t tables.PortfolioTable) (tables.PortfolioTable, error) {
	for i := range t {
		if err := validate.Struct(&t[i]); err != nil {
			if violation := firstFieldViolation("Portfolio", err); violation != nil {
				return nil, wrapViolation("Portfolio", violation)
			}

			return nil, wrapViolation("Portfolio", errors.NewSchemaViolation("Portfolio", errors.ReasonWrongType, "", err.Error()))
		}
	}

	return t, nil
}

// ValidatePosition validates a table of Position rows: symbol/quantity/
// avg_price required, avg_price >= 0, and quantity == 0 rows must be absent.
func ValidatePosition(t tables.PositionTable) (tables.PositionTable, error) {
	for i := range t {
		row := &t[i]

		if row.Quantity == 0 {
			return nil, wrapViolation("Position", errors.NewSchemaViolation("Position", errors.ReasonDisallowedValue, "quantity",
				fmt.Sprintf("position row for symbol %s has zero quantity and must be absent", row.Symbol)))
		}

		if row.AvgPrice < 0 {
			return nil, wrapViolation("Position", errors.NewSchemaViolation("Position", errors.ReasonDisallowedValue, "avg_price",
				fmt.Sprintf("position row for symbol %s has negative avg_price %v", row.Symbol, row.AvgPrice)))
		}

		if row.Symbol == "" {
			return nil, wrapViolation("Position", errors.NewSchemaViolation("Position", errors.ReasonMissingColumn, "symbol", "symbol is required"))
		}
	}

	return t, nil
}

// ValidateOrder validates a table of Order rows: symbol/side/quantity/
// order_type required; price must be null iff order_type = market, and
// non-null iff order_type = limit.
func ValidateOrder(t tables.OrderTable) (tables.OrderTable, error) {
	for i := range t {
		row := &t[i]

		if err := validate.Struct(row); err != nil {
			if violation := firstFieldViolation("Order", err); violation != nil {
				return nil, wrapViolation("Order", violation)
			}

			return nil, wrapViolation("Order", errors.NewSchemaViolation("Order", errors.ReasonWrongType, "", err.Error()))
		}

		switch row.OrderType {
		case tables.OrderTypeMarket:
			if row.Price.IsSome() {
				return nil, wrapViolation("Order", errors.NewSchemaViolation("Order", errors.ReasonDisallowedValue, "price",
					fmt.Sprintf("market order for %s must have a null price", row.Symbol)))
			}
		case tables.OrderTypeLimit:
			if row.Price.IsNone() {
				return nil, wrapViolation("Order", errors.NewSchemaViolation("Order", errors.ReasonForbiddenNull, "price",
					fmt.Sprintf("limit order for %s requires a non-null price", row.Symbol)))
			}
		}
	}

	return t, nil
}

// ValidateFill validates a table of Fill rows: order_id/symbol/side/
// filled_quantity/filled_price/timestamp required; commission >= 0.
func ValidateFill(t tables.FillTable) (tables.FillTable, error) {
	for i := range t {
		if err := validate.Struct(&t[i]); err != nil {
			if violation := firstFieldViolation("Fill", err); violation != nil {
				return nil, wrapViolation("Fill", violation)
			}

			return nil, wrapViolation("Fill", errors.NewSchemaViolation("Fill", errors.ReasonWrongType, "", err.Error()))
		}
	}

	return t, nil
}

// ValidateMetrics validates a table of Metrics rows: date required.
func ValidateMetrics(t tables.MetricsTable) (tables.MetricsTable, error) {
	for i := range t {
		if err := validate.Struct(&t[i]); err != nil {
			if violation := firstFieldViolation("Metrics", err); violation != nil {
				return nil, wrapViolation("Metrics", violation)
			}

			return nil, wrapViolation("Metrics", errors.NewSchemaViolation("Metrics", errors.ReasonWrongType, "", err.Error()))
		}
	}

	return t, nil
}
