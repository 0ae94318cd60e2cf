package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"coinvision/internal/auth"
	"coinvision/internal/models"
	"coinvision/internal/pipeline"
	"coinvision/internal/storage"
)

// allowedImageTypes is the upload MIME allow-list.
var allowedImageTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/gif":     true,
	"image/svg+xml": true,
}

type uploadedImage struct {
	Data        []byte
	Filename    string
	ContentType string
	Size        int64
}

// readUploadedImage validates and reads the multipart "file" field.
// Rejected uploads never reach any external service.
func (app *App) readUploadedImage(w http.ResponseWriter, r *http.Request) (*uploadedImage, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "file too large")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no image uploaded")
		return nil, false
	}
	defer file.Close()

	if header.Size > app.MaxUploadSize {
		respondError(w, http.StatusBadRequest, "file too large")
		return nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		respondError(w, http.StatusBadRequest, "only PNG, JPG, GIF and SVG images are allowed")
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return nil, false
	}

	return &uploadedImage{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}, true
}

// RecogniseHandler runs only the verification stage and mirrors the
// classifier's contract: {result: "True"|"False"}.
func (app *App) RecogniseHandler(w http.ResponseWriter, r *http.Request) {
	image, ok := app.readUploadedImage(w, r)
	if !ok {
		return
	}

	isNote, err := app.Verifier.Verify(r.Context(), image.ContentType, image.Data)
	if err != nil {
		app.Log.WithError(err).Error("verification failed", nil)
		respondError(w, http.StatusBadGateway, "verification failed")
		return
	}

	result := "False"
	if isNote {
		result = "True"
	}
	respondJSON(w, http.StatusOK, map[string]string{"result": result})
}

// ScanHandler runs the full recognition pipeline for an uploaded note and
// returns the assembled view model. Each stage's failure is reported in
// the errors map without blocking its siblings.
func (app *App) ScanHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	image, ok := app.readUploadedImage(w, r)
	if !ok {
		return
	}

	filename, err := app.Storage.SaveFile(bytes.NewReader(image.Data), storage.FileInfo{
		Filename:    image.Filename,
		ContentType: image.ContentType,
		Size:        image.Size,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	scan := models.NewScan(user.ID, filename, image.ContentType, image.Size)
	if err := app.Scans.InsertScan(scan); err != nil {
		app.Storage.DeleteFile(filename)
		respondError(w, http.StatusInternalServerError, "failed to record scan")
		return
	}

	result := app.Pipeline.Run(r.Context(), image.ContentType, image.Filename, image.Data)

	app.recordOutcome(scan, result)

	respondJSON(w, http.StatusOK, struct {
		ScanID string `json:"scan_id"`
		*pipeline.Result
	}{ScanID: scan.ID, Result: result})
}

func (app *App) recordOutcome(scan *models.Scan, result *pipeline.Result) {
	status := models.ScanStatusRecognized
	prediction := ""
	confidence := 0.0

	switch {
	case result.NotNote:
		status = models.ScanStatusNotNote
	case result.Errors[pipeline.StageVerify] != "" || result.Prediction == nil:
		status = models.ScanStatusError
	default:
		prediction = result.Prediction.Prediction
		confidence = result.Prediction.Confidence
	}

	if err := app.Scans.UpdateOutcome(scan.ID, status, prediction, confidence); err != nil {
		app.Log.WithError(err).Error("failed to update scan outcome", map[string]interface{}{
			"scan_id": scan.ID,
		})
	}
}

type scanSummary struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
	SizeLabel   string  `json:"size_label"`
	UploadTime  string  `json:"upload_time"`
	Status      string  `json:"status"`
	Prediction  string  `json:"prediction"`
	Confidence  float64 `json:"confidence"`
}

func (app *App) ListScansHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	scans, err := app.Scans.ListScansByUser(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load scans")
		return
	}

	summaries := make([]scanSummary, 0, len(scans))
	for _, scan := range scans {
		summaries = append(summaries, scanSummary{
			ID:          scan.ID,
			Filename:    scan.Filename,
			ContentType: scan.ContentType,
			Size:        scan.Size,
			SizeLabel:   formatFileSize(scan.Size),
			UploadTime:  scan.UploadTime.Format("Jan 2, 2006 15:04"),
			Status:      scan.Status,
			Prediction:  scan.Prediction,
			Confidence:  scan.Confidence,
		})
	}

	respondJSON(w, http.StatusOK, summaries)
}

func formatFileSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/float64(GB))
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/float64(MB))
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/float64(KB))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
