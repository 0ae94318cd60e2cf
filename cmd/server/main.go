package main

import (
	"log"
	"net/http"

	"coinvision/internal/ai"
	"coinvision/internal/api"
	"coinvision/internal/auth"
	"coinvision/internal/config"
	"coinvision/internal/database"
	"coinvision/internal/imagegen"
	"coinvision/internal/logger"
	"coinvision/internal/news"
	"coinvision/internal/pipeline"
	"coinvision/internal/predict"
	"coinvision/internal/rates"
	"coinvision/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appLog := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)

	localStorage, err := storage.NewLocalStorage(cfg.Server.UploadDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	userRepo := database.NewUserRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	scanRepo := database.NewScanRepository(db)

	authService := auth.NewService(userRepo, sessionRepo, cfg.Auth.SessionTTL)

	gemini := ai.NewGeminiClient(
		cfg.Providers.Gemini.APIKey,
		cfg.Providers.Gemini.BaseURL,
		cfg.Providers.Gemini.Model,
	)

	verifier := ai.NewVerifier(gemini)

	enricher, err := ai.NewEnricher(gemini)
	if err != nil {
		log.Fatal("Failed to initialize enricher:", err)
	}
	condition, err := ai.NewConditionAssessor(gemini)
	if err != nil {
		log.Fatal("Failed to initialize condition assessor:", err)
	}
	counterfeit, err := ai.NewCounterfeitDetector(gemini)
	if err != nil {
		log.Fatal("Failed to initialize counterfeit detector:", err)
	}
	quiz, err := ai.NewQuizGenerator(gemini)
	if err != nil {
		log.Fatal("Failed to initialize quiz generator:", err)
	}

	predictor := predict.NewClient(cfg.Providers.Model.URL)

	exchange := rates.NewExchangeClient(cfg.Providers.Exchange.APIKey, cfg.Providers.Exchange.BaseURL)
	fred := rates.NewFREDClient(cfg.Providers.FRED.APIKey, cfg.Providers.FRED.BaseURL)
	historyService := rates.NewHistoryService(fred)
	inflationService := rates.NewInflationService(fred)

	newsClient := news.NewClient(cfg.Providers.GNews.APIKey, cfg.Providers.GNews.BaseURL)
	imageGen := imagegen.NewClient(cfg.Providers.HuggingFace.APIKey, cfg.Providers.HuggingFace.BaseURL)

	pipelineService := pipeline.NewService(
		verifier,
		predictor,
		enricher,
		exchange,
		historyService,
		inflationService,
		appLog,
		pipeline.Config{},
	)

	app := &api.App{
		Log:           appLog,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Storage:       localStorage,
		Scans:         scanRepo,
		Auth:          authService,
		Pipeline:      pipelineService,
		Verifier:      verifier,
		Condition:     condition,
		Counterfeit:   counterfeit,
		Quiz:          quiz,
		News:          newsClient,
		ImageGen:      imageGen,
		Exchange:      exchange,
		History:       historyService,
		Inflation:     inflationService,
		FRED:          fred,
	}

	router := api.NewRouter(app)

	appLog.Info("server starting", map[string]interface{}{
		"port":            cfg.Server.Port,
		"upload_dir":      cfg.Server.UploadDir,
		"database_path":   cfg.Database.Path,
		"max_upload_size": cfg.Server.MaxUploadSize,
	})
	if cfg.Providers.Gemini.APIKey == "" {
		appLog.Warn("gemini api key not set, analysis endpoints will fail", nil)
	}
	if cfg.Providers.Model.URL == "" {
		appLog.Warn("model url not set, denomination prediction will fail", nil)
	}

	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		log.Fatal(err)
	}
}
