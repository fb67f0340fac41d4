package calculator

// SMASeries returns the trailing SMA at every index from period-1 onward.
func SMASeries(prices []float64, period int) []float64 {
	sums := RollingSum(prices, period)
	for i := range sums {
		sums[i] /= float64(period)
	}
	return sums
}

// MADeviationSeries returns (price - SMA) / SMA aligned to the last
// len(prices)-period+1 prices.
func MADeviationSeries(prices []float64, period int) []float64 {
	sma := SMASeries(prices, period)
	if len(sma) == 0 {
		return nil
	}
	offset := period - 1
	out := make([]float64, len(sma))
	for i, m := range sma {
		if m == 0 {
			continue
		}
		out[i] = (prices[i+offset] - m) / m
	}
	return out
}
