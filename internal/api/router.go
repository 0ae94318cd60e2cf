package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinvision/internal/metrics"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/ping", PingHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/register", app.RegisterHandler)
	r.Post("/api/auth/login", app.LoginHandler)

	// Every protected route sits behind the one session guard.
	r.Group(func(r chi.Router) {
		r.Use(app.Auth.RequireSession)

		r.Post("/api/auth/logout", app.LogoutHandler)
		r.Get("/api/auth/me", app.MeHandler)

		r.Post("/api/recognise", app.RecogniseHandler)
		r.Post("/api/scan", app.ScanHandler)
		r.Get("/api/scans", app.ListScansHandler)

		r.Post("/api/convert", app.ConvertHandler)
		r.Get("/api/rates/{base}", app.RatesHandler)
		r.Post("/api/history", app.HistoryHandler)
		r.Get("/api/fred", app.FREDHandler)
		r.Get("/api/inflation/{code}", app.InflationHandler)

		r.Post("/api/note-condition", app.NoteConditionHandler)
		r.Post("/api/fake-note-detection", app.FakeNoteDetectionHandler)

		r.Get("/api/quiz", app.QuizHandler)
		r.Get("/api/articles", app.ArticlesHandler)
		r.Post("/api/generate-image", app.GenerateImageHandler)
	})

	return r
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
