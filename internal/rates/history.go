package rates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// ErrNoSeries means no FX series exists for the requested currency pair.
var ErrNoSeries = errors.New("no FX series for currency pair")

// fxSeries maps BASE+QUOTE pairs to their daily exchange rate series ids.
var fxSeries = map[string]string{
	"EURUSD": "DEXUSEU",
	"GBPUSD": "DEXUSUK",
	"JPYUSD": "DEXJPUS",
	"CADUSD": "DEXCAUS",
	"AUDUSD": "DEXUSAL",
	"INRUSD": "DEXINUS",
}

// RatePoint is one day of an FX history series.
type RatePoint struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// HistoryService resolves historical FX series.
type HistoryService struct {
	fred *FREDClient
	now  func() time.Time
}

func NewHistoryService(fred *FREDClient) *HistoryService {
	return &HistoryService{fred: fred, now: time.Now}
}

// History fetches the daily series for base/quote over the trailing window,
// drops missing-value sentinels and forward-fills gaps so every calendar
// day has a point. An unmapped pair returns ErrNoSeries; the caller decides
// how to degrade.
func (s *HistoryService) History(ctx context.Context, base, quote string, days int) ([]RatePoint, error) {
	pair := strings.ToUpper(base + quote)
	seriesID, ok := fxSeries[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSeries, pair)
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)

	observations, err := s.fred.Observations(ctx, seriesID,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("fetching FX history: %w", err)
	}

	byDate := make(map[string]float64, len(observations))
	last := 1.0
	seeded := false
	for _, obs := range observations {
		if obs.Value == "." {
			continue
		}
		rate, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		byDate[obs.Date] = rate
		if !seeded {
			last = rate
			seeded = true
		}
	}

	filled := make([]RatePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		if rate, ok := byDate[date]; ok {
			last = rate
		}
		filled = append(filled, RatePoint{Date: date, Rate: last})
	}

	return filled, nil
}

// RandomWalk synthesizes a plausible-looking series seeded from the latest
// known rate, with daily jitter inside +/-3%. It exists purely for display
// continuity when no real series is available; it is not a forecast.
func (s *HistoryService) RandomWalk(seed float64, days int) []RatePoint {
	end := s.now()
	points := make([]RatePoint, 0, days)

	rate := seed
	for i := days - 1; i >= 0; i-- {
		rate = rate * (1 + (rand.Float64()-0.5)*0.06)
		points = append(points, RatePoint{
			Date: end.AddDate(0, 0, -i).Format("2006-01-02"),
			Rate: round4(rate),
		})
	}
	return points
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
