// Package indicator provides pure technical indicator functions over an
// ordered series of closing prices (oldest first). All functions return
// ErrInsufficientData when the series is shorter than the indicator's
// minimum window; callers treat that the same as unavailable market data.
package indicator

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when the candle series is shorter than
// the indicator's minimum window
var ErrInsufficientData = errors.New("insufficient candle history")

const (
	// DefaultRSIPeriod is the lookback window used by RSI when the caller
	// does not specify one
	DefaultRSIPeriod = 14

	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalWindow = 9
)

// EMA calculates the exponential moving average of the series.
// The seed is the simple average of the first period points; the
// multiplier 2/(period+1) is then applied recursively over the remainder.
// With exactly period points the result equals the simple average.
func EMA(series []float64, period int) (float64, error) {
	if period < 1 {
		return 0, fmt.Errorf("EMA period must be at least 1, got %d", period)
	}
	if len(series) < period {
		return 0, ErrInsufficientData
	}

	sum := 0.0
	for _, p := range series[:period] {
		sum += p
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for _, price := range series[period:] {
		ema = (price-ema)*multiplier + ema
	}

	return ema, nil
}

// RSI calculates the Relative Strength Index over the given period.
// Requires at least period+1 points. A non-negative step counts as a gain.
// When the average loss is exactly zero the RSI is defined as 100.
func RSI(series []float64, period int) (float64, error) {
	if period < 1 {
		return 0, fmt.Errorf("RSI period must be at least 1, got %d", period)
	}
	if len(series) < period+1 {
		return 0, ErrInsufficientData
	}

	gains := make([]float64, 0, len(series)-1)
	losses := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if delta >= 0 {
			gains = append(gains, delta)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -delta)
		}
	}

	avgGain := avg(gains[len(gains)-period:], period)
	avgLoss := avg(losses[len(losses)-period:], period)

	if avgLoss == 0 {
		return 100.0, nil
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs)), nil
}

// MACDResult holds the MACD line, the signal line and the histogram
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD calculates the MACD line as EMA(12) minus EMA(26) over the full
// series. The signal line is the plain average of up to nine MACD samples,
// each computed over a suffix sub-window of the series starting one point
// later than the previous. This matches the reference behavior rather
// than the textbook EMA-of-MACD signal line. Requires at least 26 points.
func MACD(series []float64) (MACDResult, error) {
	if len(series) < macdSlowPeriod {
		return MACDResult{}, ErrInsufficientData
	}

	fast, err := EMA(series, macdFastPeriod)
	if err != nil {
		return MACDResult{}, err
	}
	slow, err := EMA(series, macdSlowPeriod)
	if err != nil {
		return MACDResult{}, err
	}
	macd := fast - slow

	// Signal: average the MACD of each of the first nine suffixes that
	// still carry enough history for the slow EMA.
	sum := 0.0
	count := 0
	for i := 0; i < macdSignalWindow && len(series)-i >= macdSlowPeriod; i++ {
		f, err := EMA(series[i:], macdFastPeriod)
		if err != nil {
			return MACDResult{}, err
		}
		s, err := EMA(series[i:], macdSlowPeriod)
		if err != nil {
			return MACDResult{}, err
		}
		sum += f - s
		count++
	}
	signal := sum / float64(count)

	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}, nil
}

func avg(values []float64, n int) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(n)
}
