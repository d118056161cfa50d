package commission_fee

import "github.com/shopspring/decimal"

// PercentageCommissionFee computes commission as filled_price * quantity *
// rate, matching the cost config's single commission_rate knob.
type PercentageCommissionFee struct {
	rate float64
}

// NewPercentageCommissionFee creates a new PercentageCommissionFee at rate
// (e.g. 0.001 for 10 bps).
func NewPercentageCommissionFee(rate float64) CommissionFee {
	return &PercentageCommissionFee{rate: rate}
}

// Calculate returns price * quantity * rate.
func (c *PercentageCommissionFee) Calculate(quantity, price float64) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromFloat(quantity)).
		Mul(decimal.NewFromFloat(c.rate)).
		InexactFloat64()
}
