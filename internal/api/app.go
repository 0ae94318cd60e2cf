package api

import (
	"encoding/json"
	"net/http"

	"coinvision/internal/ai"
	"coinvision/internal/auth"
	"coinvision/internal/database"
	"coinvision/internal/imagegen"
	"coinvision/internal/logger"
	"coinvision/internal/news"
	"coinvision/internal/pipeline"
	"coinvision/internal/rates"
	"coinvision/internal/storage"
)

// App carries the wired dependencies for all handlers.
type App struct {
	Log           logger.Logger
	MaxUploadSize int64

	Storage storage.Storage
	Scans   *database.ScanRepository

	Auth     *auth.Service
	Pipeline *pipeline.Service

	Verifier    *ai.Verifier
	Condition   *ai.ConditionAssessor
	Counterfeit *ai.CounterfeitDetector
	Quiz        *ai.QuizGenerator

	News     *news.Client
	ImageGen *imagegen.Client

	Exchange  *rates.ExchangeClient
	History   *rates.HistoryService
	Inflation *rates.InflationService
	FRED      *rates.FREDClient
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
