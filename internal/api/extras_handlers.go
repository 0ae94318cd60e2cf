package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// QuizHandler returns a freshly generated set of currency trivia questions.
func (app *App) QuizHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := app.Quiz.GenerateQuiz(r.Context())
	if err != nil {
		app.Log.WithError(err).Error("quiz generation failed", nil)
		respondError(w, http.StatusBadGateway, "failed to generate quiz")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"questions": questions,
	})
}

func (app *App) ArticlesHandler(w http.ResponseWriter, r *http.Request) {
	articles, err := app.News.CurrencyNews(r.Context())
	if err != nil {
		app.Log.WithError(err).Error("news fetch failed", nil)
		respondError(w, http.StatusBadGateway, "failed to fetch articles")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"articles": articles,
	})
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

func (app *App) GenerateImageHandler(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	dataURL, err := app.ImageGen.Generate(r.Context(), prompt)
	if err != nil {
		app.Log.WithError(err).Error("image generation failed", nil)
		respondError(w, http.StatusBadGateway, "failed to generate image")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imageUrl": dataURL,
	})
}
