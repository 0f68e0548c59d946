package indicator

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMA_SeedIsSimpleAverage(t *testing.T) {
	// With exactly period points the EMA equals the simple average
	series := []float64{10, 20, 30, 40}
	val, err := EMA(series, 4)
	if err != nil {
		t.Fatalf("EMA failed: %v", err)
	}
	if !almostEqual(val, 25.0) {
		t.Errorf("Expected simple average 25.0, got %f", val)
	}
}

func TestEMA_Recursion(t *testing.T) {
	// Seed = avg(1,2,3) = 2; multiplier = 2/4 = 0.5
	// next: (10-2)*0.5 + 2 = 6
	series := []float64{1, 2, 3, 10}
	val, err := EMA(series, 3)
	if err != nil {
		t.Fatalf("EMA failed: %v", err)
	}
	if !almostEqual(val, 6.0) {
		t.Errorf("Expected 6.0, got %f", val)
	}
}

func TestEMA_InsufficientData(t *testing.T) {
	_, err := EMA([]float64{1, 2}, 3)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestEMA_InvalidPeriod(t *testing.T) {
	_, err := EMA([]float64{1, 2, 3}, 0)
	if err == nil {
		t.Error("Expected error for period < 1")
	}
}

func TestRSI_AllGainingIs100(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		series[i] = 100 + float64(i)
	}

	val, err := RSI(series, DefaultRSIPeriod)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}
	if val != 100.0 {
		t.Errorf("Expected exactly 100 when average loss is zero, got %f", val)
	}
}

func TestRSI_FlatSeriesIs100(t *testing.T) {
	// Zero deltas count as gains, so average loss is zero
	series := make([]float64, 15)
	for i := range series {
		series[i] = 50
	}

	val, err := RSI(series, DefaultRSIPeriod)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}
	if val != 100.0 {
		t.Errorf("Expected 100 for flat series, got %f", val)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	series := make([]float64, DefaultRSIPeriod) // needs period+1
	_, err := RSI(series, DefaultRSIPeriod)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestRSI_BalancedMoves(t *testing.T) {
	// Alternating +1/-1 steps: avg gain == avg loss, RSI == 50
	series := make([]float64, 15)
	series[0] = 100
	for i := 1; i < len(series); i++ {
		if i%2 == 1 {
			series[i] = series[i-1] + 1
		} else {
			series[i] = series[i-1] - 1
		}
	}

	val, err := RSI(series, DefaultRSIPeriod)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}
	if !almostEqual(val, 50.0) {
		t.Errorf("Expected 50 for balanced gains and losses, got %f", val)
	}
}

func TestMACD_InsufficientData(t *testing.T) {
	series := make([]float64, 25)
	_, err := MACD(series)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestMACD_ConstantSeries(t *testing.T) {
	series := make([]float64, 50)
	for i := range series {
		series[i] = 42
	}

	result, err := MACD(series)
	if err != nil {
		t.Fatalf("MACD failed: %v", err)
	}
	if !almostEqual(result.MACD, 0) {
		t.Errorf("Expected MACD 0 for constant series, got %f", result.MACD)
	}
	if !almostEqual(result.Signal, 0) {
		t.Errorf("Expected signal 0 for constant series, got %f", result.Signal)
	}
	if !almostEqual(result.Histogram, 0) {
		t.Errorf("Expected histogram 0 for constant series, got %f", result.Histogram)
	}
}

func TestMACD_UptrendIsBullish(t *testing.T) {
	// A steady uptrend keeps the fast EMA above the slow EMA
	series := make([]float64, 50)
	for i := range series {
		series[i] = 100 + float64(i)*2
	}

	result, err := MACD(series)
	if err != nil {
		t.Fatalf("MACD failed: %v", err)
	}
	if result.MACD <= 0 {
		t.Errorf("Expected positive MACD in an uptrend, got %f", result.MACD)
	}
}

func TestMACD_MinimumSeries(t *testing.T) {
	// Exactly 26 points: only the first suffix carries enough history,
	// so the signal equals the MACD and the histogram is zero
	series := make([]float64, 26)
	for i := range series {
		series[i] = 100 + float64(i)
	}

	result, err := MACD(series)
	if err != nil {
		t.Fatalf("MACD failed: %v", err)
	}
	if !almostEqual(result.Signal, result.MACD) {
		t.Errorf("Expected signal == MACD with minimum history, got macd=%f signal=%f",
			result.MACD, result.Signal)
	}
	if !almostEqual(result.Histogram, 0) {
		t.Errorf("Expected zero histogram with minimum history, got %f", result.Histogram)
	}
}

func TestCycleCache_MemoizesPerSymbol(t *testing.T) {
	cache := NewCycleCache()

	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)
	}

	first, err := cache.RSI("BTC", up, DefaultRSIPeriod)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}

	// Same key: the cached value wins even when a different series is passed
	second, err := cache.RSI("BTC", down, DefaultRSIPeriod)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected memoized value %f, got %f", first, second)
	}

	// Different symbol computes fresh
	other, err := cache.RSI("ETH", down, DefaultRSIPeriod)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}
	if other == first {
		t.Error("Expected a fresh computation for a different symbol")
	}
}

func TestCycleCache_CachesErrors(t *testing.T) {
	cache := NewCycleCache()

	_, err := cache.EMA("BTC", []float64{1}, 20)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData, got %v", err)
	}

	// Error result sticks for the cycle too
	_, err = cache.EMA("BTC", make([]float64, 40), 20)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected cached ErrInsufficientData, got %v", err)
	}
}
