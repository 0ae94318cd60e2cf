package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinvision/internal/ai"
	"coinvision/internal/logger"
	"coinvision/internal/predict"
	"coinvision/internal/rates"
)

type stubVerifier struct {
	isNote bool
	err    error
	calls  int
}

func (s *stubVerifier) Verify(ctx context.Context, mimeType string, imageData []byte) (bool, error) {
	s.calls++
	return s.isNote, s.err
}

type stubPredictor struct {
	result *predict.Result
	err    error
	calls  int
}

func (s *stubPredictor) Predict(ctx context.Context, filename string, imageData []byte) (*predict.Result, error) {
	s.calls++
	return s.result, s.err
}

type stubEnricher struct {
	detail    *ai.CurrencyDetail
	err       error
	lastLabel string
}

func (s *stubEnricher) CurrencyInfo(ctx context.Context, label string) (*ai.CurrencyDetail, error) {
	s.lastLabel = label
	return s.detail, s.err
}

type stubRates struct {
	table rates.Table
	live  bool
}

func (s *stubRates) LatestOrFallback(ctx context.Context, base string) (rates.Table, bool) {
	return s.table, s.live
}

type stubHistory struct {
	points []rates.RatePoint
	err    error
}

func (s *stubHistory) History(ctx context.Context, base, quote string, days int) ([]rates.RatePoint, error) {
	return s.points, s.err
}

func (s *stubHistory) RandomWalk(seed float64, days int) []rates.RatePoint {
	walk := make([]rates.RatePoint, days)
	for i := range walk {
		walk[i] = rates.RatePoint{Date: "synthetic", Rate: seed}
	}
	return walk
}

type stubInflation struct {
	points []rates.InflationPoint
	err    error
}

func (s *stubInflation) Inflation(ctx context.Context, code string) ([]rates.InflationPoint, error) {
	return s.points, s.err
}

type stages struct {
	verifier  *stubVerifier
	predictor *stubPredictor
	enricher  *stubEnricher
	rates     *stubRates
	history   *stubHistory
	inflation *stubInflation
}

func healthyStages() *stages {
	return &stages{
		verifier:  &stubVerifier{isNote: true},
		predictor: &stubPredictor{result: &predict.Result{Status: "success", Prediction: "INR-500", Confidence: 97.5}},
		enricher:  &stubEnricher{detail: &ai.CurrencyDetail{Country: "India", CurrencyCode: "INR"}},
		rates:     &stubRates{table: rates.Table{"USD": 0.012, "EUR": 0.011}, live: true},
		history:   &stubHistory{points: []rates.RatePoint{{Date: "2024-03-01", Rate: 0.012}}},
		inflation: &stubInflation{points: []rates.InflationPoint{{Year: 2023, Value: 5}}},
	}
}

func newTestService(s *stages) *Service {
	return NewService(
		s.verifier, s.predictor, s.enricher, s.rates, s.history, s.inflation,
		logger.NewNoOpLogger(), Config{HistoryDays: 7},
	)
}

func run(s *stages) *Result {
	return newTestService(s).Run(context.Background(), "image/png", "note.png", []byte("img"))
}

func TestRunFullSuccess(t *testing.T) {
	s := healthyStages()
	result := run(s)

	assert.Empty(t, result.Errors)
	assert.False(t, result.NotNote)
	require.NotNil(t, result.Prediction)
	assert.Equal(t, "INR-500", result.Prediction.Prediction)

	require.NotNil(t, result.Label)
	assert.Equal(t, "INR", result.Label.Code)
	assert.Equal(t, 500.0, result.Label.Denomination)

	require.NotNil(t, result.Detail)
	assert.Equal(t, "India", result.Detail.Country)

	assert.True(t, result.RatesLive)
	assert.NotEmpty(t, result.Conversions)
	assert.False(t, result.HistorySynthetic)
	require.Len(t, result.History, 1)

	require.Len(t, result.ValueTrend, 1)
	assert.Equal(t, 500.0, result.ValueTrend[0].Value, "trend anchors on the note's denomination")
}

func TestRunNotNoteShortCircuits(t *testing.T) {
	s := healthyStages()
	s.verifier.isNote = false
	result := run(s)

	assert.True(t, result.NotNote)
	assert.Empty(t, result.Errors)
	assert.Zero(t, s.predictor.calls, "a rejected image must not reach the prediction model")
	assert.Nil(t, result.Prediction)
}

func TestRunVerifyErrorIsNotNegative(t *testing.T) {
	s := healthyStages()
	s.verifier.err = errors.New("connection refused")
	result := run(s)

	assert.False(t, result.NotNote, "a transport failure is not a negative classification")
	assert.Contains(t, result.Errors, StageVerify)
	assert.Zero(t, s.predictor.calls)
}

func TestRunPredictError(t *testing.T) {
	s := healthyStages()
	s.predictor.result = nil
	s.predictor.err = errors.New("model down")
	result := run(s)

	assert.Contains(t, result.Errors, StagePredict)
	assert.Nil(t, result.Detail, "tail stages do not run without a prediction")
}

func TestRunMalformedLabelStillEnriches(t *testing.T) {
	s := healthyStages()
	s.predictor.result = &predict.Result{Status: "success", Prediction: "banana"}
	result := run(s)

	assert.Equal(t, "malformed prediction label", result.Errors[StagePredict])
	assert.Nil(t, result.Label)

	// Enrichment gets the raw label; convert and inflation are skipped.
	assert.Equal(t, "banana", s.enricher.lastLabel)
	require.NotNil(t, result.Detail)
	assert.Nil(t, result.Conversions)
	assert.Nil(t, result.Inflation)
}

func TestRunStageFailuresAreIsolated(t *testing.T) {
	s := healthyStages()
	s.enricher.detail = nil
	s.enricher.err = errors.New("model unavailable")
	s.inflation.err = errors.New("provider down")
	result := run(s)

	assert.Contains(t, result.Errors, StageEnrich)
	assert.Contains(t, result.Errors, StageInflation)
	assert.Nil(t, result.Detail)
	assert.Nil(t, result.ValueTrend)

	// The conversion stage still rendered.
	assert.NotEmpty(t, result.Conversions)
	require.Len(t, result.History, 1)
}

func TestRunHistoryFallsBackToRandomWalk(t *testing.T) {
	s := healthyStages()
	s.history.points = nil
	s.history.err = errors.New("no series")
	result := run(s)

	assert.True(t, result.HistorySynthetic)
	require.Len(t, result.History, 7)
	assert.Equal(t, 0.012, result.History[0].Rate, "walk is seeded from the quote rate")
}

func TestRunRandomWalkSeedDefaultsToOne(t *testing.T) {
	s := healthyStages()
	s.rates.table = rates.Table{"EUR": 0.011}
	s.history.err = errors.New("no series")
	result := run(s)

	require.NotEmpty(t, result.History)
	assert.Equal(t, 1.0, result.History[0].Rate, "missing quote rate seeds the walk with 1")
}
