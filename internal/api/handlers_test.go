package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinvision/internal/ai"
	"coinvision/internal/auth"
	"coinvision/internal/database"
	"coinvision/internal/imagegen"
	"coinvision/internal/logger"
	"coinvision/internal/news"
	"coinvision/internal/pipeline"
	"coinvision/internal/predict"
	"coinvision/internal/rates"
	"coinvision/internal/storage"
)

// fakeGen scripts the text model for handler tests.
type fakeGen struct {
	text     string
	err      error
	imgCalls int
}

func (f *fakeGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.text, f.err
}

func (f *fakeGen) GenerateFromImage(ctx context.Context, prompt, mimeType string, imageData []byte) (string, error) {
	f.imgCalls++
	return f.text, f.err
}

type fixedPredictor struct {
	result *predict.Result
	err    error
}

func (p *fixedPredictor) Predict(ctx context.Context, filename string, imageData []byte) (*predict.Result, error) {
	return p.result, p.err
}

type fixedEnricher struct{ detail *ai.CurrencyDetail }

func (e *fixedEnricher) CurrencyInfo(ctx context.Context, label string) (*ai.CurrencyDetail, error) {
	return e.detail, nil
}

type fixedRates struct{}

func (fixedRates) LatestOrFallback(ctx context.Context, base string) (rates.Table, bool) {
	return rates.FallbackTable(), false
}

type fixedHistory struct{}

func (fixedHistory) History(ctx context.Context, base, quote string, days int) ([]rates.RatePoint, error) {
	return []rates.RatePoint{{Date: "2024-03-01", Rate: 0.012}}, nil
}

func (fixedHistory) RandomWalk(seed float64, days int) []rates.RatePoint {
	return []rates.RatePoint{{Date: "synthetic", Rate: seed}}
}

type fixedInflation struct{}

func (fixedInflation) Inflation(ctx context.Context, code string) ([]rates.InflationPoint, error) {
	return []rates.InflationPoint{{Year: 2023, Value: 5}}, nil
}

// unreachable is a loopback address nothing listens on, so real clients
// pointed at it fail fast.
const unreachable = "http://127.0.0.1:1"

func newTestApp(t *testing.T, gen *fakeGen) http.Handler {
	t.Helper()

	db, err := database.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	localStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	authService := auth.NewService(
		database.NewUserRepository(db),
		database.NewSessionRepository(db),
		time.Hour,
	)

	verifier := ai.NewVerifier(gen)
	condition, err := ai.NewConditionAssessor(gen)
	require.NoError(t, err)
	counterfeit, err := ai.NewCounterfeitDetector(gen)
	require.NoError(t, err)
	quiz, err := ai.NewQuizGenerator(gen)
	require.NoError(t, err)

	fred := rates.NewFREDClient("k", unreachable)

	pipelineService := pipeline.NewService(
		verifier,
		&fixedPredictor{result: &predict.Result{Status: "success", Prediction: "INR-500", Confidence: 97.5}},
		&fixedEnricher{detail: &ai.CurrencyDetail{Country: "India", CurrencyCode: "INR"}},
		fixedRates{},
		fixedHistory{},
		fixedInflation{},
		logger.NewNoOpLogger(),
		pipeline.Config{HistoryDays: 5},
	)

	app := &App{
		Log:           logger.NewNoOpLogger(),
		MaxUploadSize: 1 << 20,
		Storage:       localStorage,
		Scans:         database.NewScanRepository(db),
		Auth:          authService,
		Pipeline:      pipelineService,
		Verifier:      verifier,
		Condition:     condition,
		Counterfeit:   counterfeit,
		Quiz:          quiz,
		News:          news.NewClient("k", unreachable),
		ImageGen:      imagegen.NewClient("k", unreachable),
		Exchange:      rates.NewExchangeClient("k", unreachable),
		History:       rates.NewHistoryService(fred),
		Inflation:     rates.NewInflationService(fred),
		FRED:          fred,
	}

	return NewRouter(app)
}

func postJSON(t *testing.T, router http.Handler, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()
	creds := `{"email": "alice@example.com", "password": "correct-horse"}`

	w := postJSON(t, router, "/api/auth/register", creds, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(t, router, "/api/auth/login", creds, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func imageUpload(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="note.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func postImage(t *testing.T, router http.Handler, path, mimeType string, data []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := imageUpload(t, mimeType, data)
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", contentType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	router := newTestApp(t, &fakeGen{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	router := newTestApp(t, &fakeGen{})
	cookie := registerAndLogin(t, router)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")

	// Re-registering the same email conflicts.
	w = postJSON(t, router, "/api/auth/register", `{"email": "alice@example.com", "password": "correct-horse"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Logout invalidates the session.
	w = postJSON(t, router, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router := newTestApp(t, &fakeGen{})
	registerAndLogin(t, router)

	w := postJSON(t, router, "/api/auth/login", `{"email": "alice@example.com", "password": "wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router := newTestApp(t, &fakeGen{})

	paths := []struct{ method, path string }{
		{"GET", "/api/scans"},
		{"POST", "/api/scan"},
		{"POST", "/api/convert"},
		{"GET", "/api/quiz"},
		{"GET", "/api/rates/USD"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestRecognise(t *testing.T) {
	gen := &fakeGen{text: "True"}
	router := newTestApp(t, gen)
	cookie := registerAndLogin(t, router)

	w := postImage(t, router, "/api/recognise", "image/png", []byte("img"), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"result": "True"}`, w.Body.String())

	gen.text = "False"
	w = postImage(t, router, "/api/recognise", "image/png", []byte("img"), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result": "False"}`, w.Body.String())
}

func TestUploadRejectedBeforeAnyModelCall(t *testing.T) {
	gen := &fakeGen{text: "True"}
	router := newTestApp(t, gen)
	cookie := registerAndLogin(t, router)

	t.Run("disallowed mime type", func(t *testing.T) {
		w := postImage(t, router, "/api/recognise", "text/plain", []byte("not an image"), cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("other", "x"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest("POST", "/api/recognise", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.Zero(t, gen.imgCalls, "rejected uploads must never reach the model")
}

func TestScanFlow(t *testing.T) {
	router := newTestApp(t, &fakeGen{text: "True"})
	cookie := registerAndLogin(t, router)

	w := postImage(t, router, "/api/scan", "image/png", []byte("img"), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ScanID  string `json:"scan_id"`
		NotNote bool   `json:"not_note"`
		Label   *struct {
			Code         string  `json:"code"`
			Denomination float64 `json:"denomination"`
		} `json:"label"`
		Conversions []rates.Conversion `json:"conversions"`
		Errors      map[string]string  `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ScanID)
	assert.False(t, resp.NotNote)
	require.NotNil(t, resp.Label)
	assert.Equal(t, "INR", resp.Label.Code)
	assert.Equal(t, 500.0, resp.Label.Denomination)
	assert.NotEmpty(t, resp.Conversions)
	assert.Empty(t, resp.Errors)

	// The scan landed in the user's history with the final outcome.
	req := httptest.NewRequest("GET", "/api/scans", nil)
	req.AddCookie(cookie)
	lw := httptest.NewRecorder()
	router.ServeHTTP(lw, req)
	require.Equal(t, http.StatusOK, lw.Code)

	var scans []scanSummary
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &scans))
	require.Len(t, scans, 1)
	assert.Equal(t, resp.ScanID, scans[0].ID)
	assert.Equal(t, "recognized", scans[0].Status)
	assert.Equal(t, "INR-500", scans[0].Prediction)
}

func TestScanNotNote(t *testing.T) {
	router := newTestApp(t, &fakeGen{text: "False"})
	cookie := registerAndLogin(t, router)

	w := postImage(t, router, "/api/scan", "image/png", []byte("img"), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"not_note":true`)

	req := httptest.NewRequest("GET", "/api/scans", nil)
	req.AddCookie(cookie)
	lw := httptest.NewRecorder()
	router.ServeHTTP(lw, req)

	var scans []scanSummary
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &scans))
	require.Len(t, scans, 1)
	assert.Equal(t, "not_note", scans[0].Status)
}

func TestConvert(t *testing.T) {
	router := newTestApp(t, &fakeGen{})
	cookie := registerAndLogin(t, router)

	t.Run("validation", func(t *testing.T) {
		w := postJSON(t, router, "/api/convert", `{"from": "US", "to": "EUR", "amount": 10}`, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = postJSON(t, router, "/api/convert", `{"from": "USD", "to": "EUR", "amount": 0}`, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("fallback table conversion", func(t *testing.T) {
		w := postJSON(t, router, "/api/convert", `{"from": "usd", "to": "eur", "amount": 10}`, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp convertResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "USD", resp.From)
		assert.Equal(t, "EUR", resp.To)
		assert.Equal(t, 0.9, resp.Rate)
		assert.InDelta(t, 9.0, resp.Result, 1e-9)
		assert.False(t, resp.Live, "provider is unreachable in tests")
	})
}

func TestHistoryUnknownPairIs404(t *testing.T) {
	router := newTestApp(t, &fakeGen{})
	cookie := registerAndLogin(t, router)

	w := postJSON(t, router, "/api/history", `{"from": "USD", "to": "CHF", "days": 30}`, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuizHandler(t *testing.T) {
	gen := &fakeGen{text: `[{"question": "Q?", "options": ["a", "b", "c", "d"], "answer": "a"}]`}
	router := newTestApp(t, gen)
	cookie := registerAndLogin(t, router)

	req := httptest.NewRequest("GET", "/api/quiz", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"questions"`)

	// Malformed model output surfaces as an upstream failure.
	gen.text = "no quiz today"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestNoteConditionHandler(t *testing.T) {
	gen := &fakeGen{text: `{"overall_condition": "Very Fine", "condition_score": 75}`}
	router := newTestApp(t, gen)
	cookie := registerAndLogin(t, router)

	w := postImage(t, router, "/api/note-condition", "image/jpeg", []byte("img"), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "Very Fine")
}

func TestGenerateImageRequiresPrompt(t *testing.T) {
	router := newTestApp(t, &fakeGen{})
	cookie := registerAndLogin(t, router)

	w := postJSON(t, router, "/api/generate-image", `{"prompt": "  "}`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
