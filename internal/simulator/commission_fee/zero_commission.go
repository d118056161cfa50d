package commission_fee

// ZeroCommissionFee implements CommissionFee with zero commission.
type ZeroCommissionFee struct{}

// NewZeroCommissionFee creates a new ZeroCommissionFee.
func NewZeroCommissionFee() CommissionFee {
	return &ZeroCommissionFee{}
}

// Calculate returns 0 for any quantity/price.
func (c *ZeroCommissionFee) Calculate(quantity, price float64) float64 {
	return 0.0
}
