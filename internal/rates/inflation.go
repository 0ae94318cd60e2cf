package rates

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// defaultInflationSeries is used for currency codes with no mapping.
const defaultInflationSeries = "FPCPITOTLZGUSA"

// inflationSeries maps currency codes to yearly CPI inflation series ids.
var inflationSeries = map[string]string{
	"USD": "FPCPITOTLZGUSA",
	"INR": "FPCPITOTLZGIN",
	"EUR": "FPCPITOTLZGEA",
	"GBP": "FPCPITOTLZGGBA",
	"JPY": "FPCPITOTLZGJPA",
	"AUD": "FPCPITOTLZGAUA",
	"CAD": "FPCPITOTLZGCAN",
}

// InflationPoint is one year of an inflation series, value in percent.
type InflationPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// ValuePoint is one year of a back-projected currency value trend.
type ValuePoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// InflationSeriesID resolves the series id for a currency code, falling
// back to the US series for unmapped codes.
func InflationSeriesID(code string) string {
	if id, ok := inflationSeries[code]; ok {
		return id
	}
	return defaultInflationSeries
}

// InflationService resolves yearly inflation series per currency.
type InflationService struct {
	fred *FREDClient
}

func NewInflationService(fred *FREDClient) *InflationService {
	return &InflationService{fred: fred}
}

// Inflation fetches the yearly series for a currency code. Missing-value
// sentinels (".") and unparsable rows are discarded; the result is sorted
// ascending by year.
func (s *InflationService) Inflation(ctx context.Context, code string) ([]InflationPoint, error) {
	observations, err := s.fred.Observations(ctx, InflationSeriesID(code), "", "")
	if err != nil {
		return nil, fmt.Errorf("fetching inflation series: %w", err)
	}

	return TransformObservations(observations), nil
}

// TransformObservations converts raw observations into yearly points,
// dropping sentinels and rows that do not parse.
func TransformObservations(observations []FREDObservation) []InflationPoint {
	points := make([]InflationPoint, 0, len(observations))
	for _, obs := range observations {
		if obs.Value == "." {
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		points = append(points, InflationPoint{Year: date.Year(), Value: value})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points
}

// ValueTrend back-computes a nominal value trend from an inflation series.
// The latest year holds todayValue; walking backwards, each step divides
// out that year's inflation: value(year-1) = value(year) / (1 + rate(year)/100).
func ValueTrend(series []InflationPoint, todayValue float64) []ValuePoint {
	if len(series) == 0 {
		return nil
	}

	sorted := make([]InflationPoint, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	trend := make([]ValuePoint, len(sorted))
	value := todayValue
	for i := len(sorted) - 1; i >= 0; i-- {
		trend[i] = ValuePoint{Year: sorted[i].Year, Value: value}
		value = value / (1 + sorted[i].Value/100)
	}
	return trend
}
