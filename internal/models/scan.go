package models

import (
	"time"

	"github.com/google/uuid"
)

// Scan statuses.
const (
	ScanStatusPending    = "pending"
	ScanStatusNotNote    = "not_note"
	ScanStatusRecognized = "recognized"
	ScanStatusError      = "error"
)

// Scan is one accepted upload and its eventual recognition outcome.
type Scan struct {
	ID          string
	UserID      string
	Filename    string
	ContentType string
	Size        int64
	UploadTime  time.Time
	Status      string
	Prediction  string
	Confidence  float64
}

func NewScan(userID, filename, contentType string, size int64) *Scan {
	return &Scan{
		ID:          uuid.New().String(),
		UserID:      userID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		UploadTime:  time.Now(),
		Status:      ScanStatusPending,
	}
}
