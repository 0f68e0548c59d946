package indicator

import "fmt"

// CycleCache memoizes indicator results for the duration of one evaluation
// cycle so that multiple alerts on the same symbol share one computation.
// It is not safe for concurrent use; a cycle is single-threaded.
type CycleCache struct {
	values map[string]cachedValue
}

type cachedValue struct {
	value float64
	macd  MACDResult
	err   error
}

// NewCycleCache creates an empty per-cycle cache
func NewCycleCache() *CycleCache {
	return &CycleCache{
		values: make(map[string]cachedValue),
	}
}

// RSI returns the memoized RSI for the symbol, computing it on first use
func (c *CycleCache) RSI(symbol string, series []float64, period int) (float64, error) {
	key := fmt.Sprintf("%s:rsi:%d", symbol, period)
	if v, ok := c.values[key]; ok {
		return v.value, v.err
	}
	value, err := RSI(series, period)
	c.values[key] = cachedValue{value: value, err: err}
	return value, err
}

// EMA returns the memoized EMA for the symbol, computing it on first use
func (c *CycleCache) EMA(symbol string, series []float64, period int) (float64, error) {
	key := fmt.Sprintf("%s:ema:%d", symbol, period)
	if v, ok := c.values[key]; ok {
		return v.value, v.err
	}
	value, err := EMA(series, period)
	c.values[key] = cachedValue{value: value, err: err}
	return value, err
}

// MACD returns the memoized MACD result for the symbol, computing it on
// first use
func (c *CycleCache) MACD(symbol string, series []float64) (MACDResult, error) {
	key := symbol + ":macd"
	if v, ok := c.values[key]; ok {
		return v.macd, v.err
	}
	result, err := MACD(series)
	c.values[key] = cachedValue{macd: result, err: err}
	return result, err
}
