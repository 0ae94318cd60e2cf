package pipeline

import (
	"context"
	"sync"
	"time"

	"coinvision/internal/ai"
	"coinvision/internal/logger"
	"coinvision/internal/metrics"
	"coinvision/internal/note"
	"coinvision/internal/predict"
	"coinvision/internal/rates"
)

// Stage names one discrete step of the recognition pipeline. Errors are
// scoped per stage so one failing dependency never blanks out the rest.
type Stage string

const (
	StageVerify    Stage = "verify"
	StagePredict   Stage = "predict"
	StageEnrich    Stage = "enrich"
	StageConvert   Stage = "convert"
	StageInflation Stage = "inflation"
)

type Verifier interface {
	Verify(ctx context.Context, mimeType string, imageData []byte) (bool, error)
}

type Predictor interface {
	Predict(ctx context.Context, filename string, imageData []byte) (*predict.Result, error)
}

type Enricher interface {
	CurrencyInfo(ctx context.Context, label string) (*ai.CurrencyDetail, error)
}

type RateSource interface {
	LatestOrFallback(ctx context.Context, base string) (rates.Table, bool)
}

type HistorySource interface {
	History(ctx context.Context, base, quote string, days int) ([]rates.RatePoint, error)
	RandomWalk(seed float64, days int) []rates.RatePoint
}

type InflationSource interface {
	Inflation(ctx context.Context, code string) ([]rates.InflationPoint, error)
}

// Result is the assembled view model for one scan. Absent sections carry
// their stage's message in Errors instead.
type Result struct {
	NotNote bool `json:"not_note"`

	Prediction *predict.Result    `json:"prediction,omitempty"`
	Label      *ParsedLabel       `json:"label,omitempty"`
	Detail     *ai.CurrencyDetail `json:"detail,omitempty"`

	Rates       rates.Table        `json:"rates,omitempty"`
	RatesLive   bool               `json:"rates_live"`
	Conversions []rates.Conversion `json:"conversions,omitempty"`

	History          []rates.RatePoint `json:"history,omitempty"`
	HistorySynthetic bool              `json:"history_synthetic"`

	Inflation  []rates.InflationPoint `json:"inflation,omitempty"`
	ValueTrend []rates.ValuePoint     `json:"value_trend,omitempty"`

	Errors map[Stage]string `json:"errors"`

	mu sync.Mutex
}

// ParsedLabel mirrors note.ParsedLabel with JSON tags for the view model.
type ParsedLabel struct {
	Code         string  `json:"code"`
	Denomination float64 `json:"denomination"`
}

func (r *Result) setError(stage Stage, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors[stage] = message
}

type Config struct {
	HistoryDays  int
	HistoryQuote string
}

// Service runs the recognition pipeline: verify -> predict -> parse ->
// {enrich, convert, inflation} -> assemble. The three tail stages are
// independent and run concurrently; each records its own result or error.
type Service struct {
	verifier     Verifier
	predictor    Predictor
	enricher     Enricher
	rates        RateSource
	history      HistorySource
	inflation    InflationSource
	log          logger.Logger
	historyDays  int
	historyQuote string
}

func NewService(
	verifier Verifier,
	predictor Predictor,
	enricher Enricher,
	rateSource RateSource,
	historySource HistorySource,
	inflationSource InflationSource,
	log logger.Logger,
	config Config,
) *Service {
	if config.HistoryDays == 0 {
		config.HistoryDays = 90
	}
	if config.HistoryQuote == "" {
		config.HistoryQuote = "USD"
	}

	return &Service{
		verifier:     verifier,
		predictor:    predictor,
		enricher:     enricher,
		rates:        rateSource,
		history:      historySource,
		inflation:    inflationSource,
		log:          log,
		historyDays:  config.HistoryDays,
		historyQuote: config.HistoryQuote,
	}
}

// Run executes the full pipeline for one uploaded image. It always returns
// a Result; the Errors map says which stages failed. Nothing is retried
// and nothing is cached across runs.
func (s *Service) Run(ctx context.Context, mimeType, filename string, imageData []byte) *Result {
	result := &Result{Errors: make(map[Stage]string)}

	start := time.Now()
	isNote, err := s.verifier.Verify(ctx, mimeType, imageData)
	metrics.ObserveStage(string(StageVerify), start, err)
	if err != nil {
		// A transport failure is not a negative classification.
		s.log.WithError(err).Error("verification failed", nil)
		result.setError(StageVerify, "verification failed")
		return result
	}
	if !isNote {
		result.NotNote = true
		return result
	}

	start = time.Now()
	prediction, err := s.predictor.Predict(ctx, filename, imageData)
	metrics.ObserveStage(string(StagePredict), start, err)
	if err != nil {
		s.log.WithError(err).Error("prediction failed", nil)
		result.setError(StagePredict, "prediction failed")
		return result
	}
	result.Prediction = prediction

	parsed := note.ParseLabel(prediction.Prediction)
	if parsed != nil {
		result.Label = &ParsedLabel{Code: parsed.Code, Denomination: parsed.Denomination}
	} else {
		result.setError(StagePredict, "malformed prediction label")
	}

	var wg sync.WaitGroup

	// Enrichment works off the raw label even when parsing failed; the
	// text model often copes with odd labels.
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runEnrich(ctx, prediction.Prediction, result)
	}()

	if parsed != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runConvert(ctx, parsed, result)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runInflation(ctx, parsed, result)
		}()
	}

	wg.Wait()
	return result
}

func (s *Service) runEnrich(ctx context.Context, label string, result *Result) {
	start := time.Now()
	detail, err := s.enricher.CurrencyInfo(ctx, label)
	metrics.ObserveStage(string(StageEnrich), start, err)
	if err != nil {
		s.log.WithError(err).Error("enrichment failed", nil)
		result.setError(StageEnrich, "could not fetch currency details")
		return
	}
	result.mu.Lock()
	result.Detail = detail
	result.mu.Unlock()
}

func (s *Service) runConvert(ctx context.Context, parsed *note.ParsedLabel, result *Result) {
	start := time.Now()
	table, live := s.rates.LatestOrFallback(ctx, parsed.Code)
	metrics.ObserveStage(string(StageConvert), start, nil)
	if !live {
		s.log.Warn("live rates unavailable, using static table", map[string]interface{}{
			"base": parsed.Code,
		})
	}

	conversions := rates.Convert(table, parsed.Code, parsed.Denomination)

	history, err := s.history.History(ctx, parsed.Code, s.historyQuote, s.historyDays)
	synthetic := false
	if err != nil {
		// Display continuity only: synthesize a walk from the latest
		// known quote rate.
		seed := table[s.historyQuote]
		if seed == 0 {
			seed = 1
		}
		history = s.history.RandomWalk(seed, s.historyDays)
		synthetic = true
	}

	result.mu.Lock()
	result.Rates = table
	result.RatesLive = live
	result.Conversions = conversions
	result.History = history
	result.HistorySynthetic = synthetic
	result.mu.Unlock()
}

func (s *Service) runInflation(ctx context.Context, parsed *note.ParsedLabel, result *Result) {
	start := time.Now()
	series, err := s.inflation.Inflation(ctx, parsed.Code)
	metrics.ObserveStage(string(StageInflation), start, err)
	if err != nil {
		s.log.WithError(err).Error("inflation fetch failed", nil)
		result.setError(StageInflation, "could not fetch inflation data")
		return
	}

	trend := rates.ValueTrend(series, parsed.Denomination)

	result.mu.Lock()
	result.Inflation = series
	result.ValueTrend = trend
	result.mu.Unlock()
}
