package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newHistoryServer(t *testing.T, observations []FREDObservation) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("file_type"))
		json.NewEncoder(w).Encode(FREDObservationsResponse{Observations: observations})
	}))
}

func TestHistoryForwardFills(t *testing.T) {
	// Observations cover two of five days; the sentinel and the gap days
	// must be filled from the last known rate.
	server := newHistoryServer(t, []FREDObservation{
		{Date: "2024-03-06", Value: "1.08"},
		{Date: "2024-03-07", Value: "."},
		{Date: "2024-03-08", Value: "1.10"},
	})
	defer server.Close()

	s := NewHistoryService(NewFREDClient("k", server.URL))
	s.now = fixedNow

	points, err := s.History(context.Background(), "EUR", "USD", 5)
	require.NoError(t, err)
	require.Len(t, points, 5)

	assert.Equal(t, RatePoint{Date: "2024-03-06", Rate: 1.08}, points[0])
	assert.Equal(t, RatePoint{Date: "2024-03-07", Rate: 1.08}, points[1], "sentinel day keeps previous rate")
	assert.Equal(t, RatePoint{Date: "2024-03-08", Rate: 1.10}, points[2])
	assert.Equal(t, RatePoint{Date: "2024-03-09", Rate: 1.10}, points[3])
	assert.Equal(t, RatePoint{Date: "2024-03-10", Rate: 1.10}, points[4])
}

func TestHistoryLeadingGapSeedsFromFirstObservation(t *testing.T) {
	server := newHistoryServer(t, []FREDObservation{
		{Date: "2024-03-09", Value: "0.95"},
	})
	defer server.Close()

	s := NewHistoryService(NewFREDClient("k", server.URL))
	s.now = fixedNow

	points, err := s.History(context.Background(), "GBP", "USD", 4)
	require.NoError(t, err)
	assert.Equal(t, 0.95, points[0].Rate, "days before the first observation use its rate")
}

func TestHistoryUnknownPair(t *testing.T) {
	s := NewHistoryService(NewFREDClient("k", "http://unused"))
	s.now = fixedNow

	_, err := s.History(context.Background(), "USD", "CHF", 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSeries)
}

func TestRandomWalk(t *testing.T) {
	s := NewHistoryService(NewFREDClient("k", "http://unused"))
	s.now = fixedNow

	points := s.RandomWalk(83, 30)
	require.Len(t, points, 30)

	assert.Equal(t, "2024-02-10", points[0].Date)
	assert.Equal(t, "2024-03-10", points[len(points)-1].Date)

	prev := 83.0
	for _, p := range points {
		ratio := p.Rate / prev
		assert.InDelta(t, 1.0, ratio, 0.0301, "daily jitter must stay inside +/-3%%")
		assert.Positive(t, p.Rate)
		prev = p.Rate
	}
}
