// Package indicator implements the small set of moving-average
// calculations the bundled example strategy needs: SMA and EMA over the
// close column of an OHLCVTable.
package indicator

import "github.com/rxtech-lab/argo-core/internal/tables"

// SMA computes the simple moving average of close prices over period bars
// ending at each index, returning NaN for indices before the window fills.
func SMA(rows tables.OHLCVTable, period int) []float64 {
	out := make([]float64, len(rows))

	var sum float64

	for i := range rows {
		sum += rows[i].Close

		if i >= period {
			sum -= rows[i-period].Close
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = nan()
		}
	}

	return out
}

// EMA computes the exponential moving average of close prices over period
// bars: ema[i] = close[i]*k + ema[i-1]*(1-k), k = 2/(period+1), seeded
// from the first period's simple average.
func EMA(rows tables.OHLCVTable, period int) []float64 {
	out := make([]float64, len(rows))

	if len(rows) == 0 || period <= 0 {
		return out
	}

	k := 2.0 / float64(period+1)

	sma := SMA(rows, period)

	var prev float64

	for i := range rows {
		switch {
		case i < period-1:
			out[i] = nan()
		case i == period-1:
			prev = sma[i]
			out[i] = prev
		default:
			prev = rows[i].Close*k + prev*(1-k)
			out[i] = prev
		}
	}

	return out
}

func nan() float64 {
	var zero float64
	return zero / zero
}
