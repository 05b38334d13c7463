package chart

import (
	"github.com/markcheno/go-talib"

	"github.com/paaavkata/crypto-market-dashboard/pkg/utils"
)

type Point struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Series is the data behind a sparkline or a price chart. A series built
// from no samples is flat and has no points.
type Series struct {
	Points   []Point `json:"points"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Positive bool    `json:"positive"`
	Flat     bool    `json:"flat"`

	// Change is the first to last move in percent, Volatility the standard
	// deviation of step returns.
	Change     float64 `json:"change"`
	Volatility float64 `json:"volatility"`

	// MovingAverage[i] belongs to Points[i+MAOffset].
	MovingAverage []float64 `json:"movingAverage,omitempty"`
	MAOffset      int       `json:"maOffset,omitempty"`
	MAPeriod      int       `json:"maPeriod,omitempty"`
}

// BuildSeries indexes the samples and derives the trend. A moving average is
// added when maPeriod is at least 2 and there are enough samples for it.
// Non-finite samples are skipped.
func BuildSeries(samples []float64, maPeriod int) Series {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if utils.IsFinite(s) {
			values = append(values, s)
		}
	}

	series := Series{
		Points:   make([]Point, 0, len(values)),
		Positive: true,
	}
	if len(values) == 0 {
		series.Flat = true
		return series
	}

	for i, v := range values {
		series.Points = append(series.Points, Point{Index: i, Value: v})
	}
	series.Min, series.Max = utils.MinMax(values)
	series.Positive = values[0] <= values[len(values)-1]
	series.Flat = series.Min == series.Max
	series.Change = utils.PercentChange(values[0], values[len(values)-1])
	series.Volatility = utils.CalculateVolatility(values)

	if maPeriod >= 2 && len(values) >= maPeriod {
		sma := talib.Sma(values, maPeriod)
		series.MAOffset = maPeriod - 1
		series.MAPeriod = maPeriod
		series.MovingAverage = sma[series.MAOffset:]
	}

	return series
}

// Normalized maps each point into [0, 1] relative to the series range, the
// shape a sparkline is drawn from. A flat series maps to 0.5.
func (s Series) Normalized() []float64 {
	out := make([]float64, len(s.Points))
	span := s.Max - s.Min
	for i, p := range s.Points {
		if span == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (p.Value - s.Min) / span
	}
	return out
}
