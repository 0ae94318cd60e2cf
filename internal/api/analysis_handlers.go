package api

import (
	"net/http"
)

// NoteConditionHandler grades the physical condition of an uploaded note.
// Parse failures of the model output are never surfaced as errors; the
// assessor substitutes its fallback report.
func (app *App) NoteConditionHandler(w http.ResponseWriter, r *http.Request) {
	image, ok := app.readUploadedImage(w, r)
	if !ok {
		return
	}

	report, err := app.Condition.AssessCondition(r.Context(), image.ContentType, image.Data)
	if err != nil {
		app.Log.WithError(err).Error("condition assessment failed", nil)
		respondError(w, http.StatusBadGateway, "failed to analyze note condition")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    report,
	})
}

func (app *App) FakeNoteDetectionHandler(w http.ResponseWriter, r *http.Request) {
	image, ok := app.readUploadedImage(w, r)
	if !ok {
		return
	}

	report, err := app.Counterfeit.DetectCounterfeit(r.Context(), image.ContentType, image.Data)
	if err != nil {
		app.Log.WithError(err).Error("counterfeit detection failed", nil)
		respondError(w, http.StatusBadGateway, "failed to analyze note authenticity")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    report,
	})
}
