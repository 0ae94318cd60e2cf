package database

import (
	"database/sql"
	"errors"
	"fmt"

	"coinvision/internal/models"
)

type ScanRepository struct {
	db *DB
}

func NewScanRepository(db *DB) *ScanRepository {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) InsertScan(scan *models.Scan) error {
	_, err := r.db.conn.Exec(
		`INSERT INTO scans (id, user_id, filename, content_type, size, upload_time, status, prediction, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.UserID, scan.Filename, scan.ContentType, scan.Size,
		scan.UploadTime, scan.Status, scan.Prediction, scan.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

// UpdateOutcome records the recognition outcome for a scan.
func (r *ScanRepository) UpdateOutcome(id, status, prediction string, confidence float64) error {
	_, err := r.db.conn.Exec(
		`UPDATE scans SET status = ?, prediction = ?, confidence = ? WHERE id = ?`,
		status, prediction, confidence, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update scan: %w", err)
	}
	return nil
}

func (r *ScanRepository) GetScanByID(id string) (*models.Scan, error) {
	var scan models.Scan
	err := r.db.conn.QueryRow(
		`SELECT id, user_id, filename, content_type, size, upload_time, status, prediction, confidence
		 FROM scans WHERE id = ?`,
		id,
	).Scan(&scan.ID, &scan.UserID, &scan.Filename, &scan.ContentType, &scan.Size,
		&scan.UploadTime, &scan.Status, &scan.Prediction, &scan.Confidence)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return &scan, nil
}

// ListScansByUser returns a user's scans newest-first.
func (r *ScanRepository) ListScansByUser(userID string) ([]models.Scan, error) {
	rows, err := r.db.conn.Query(
		`SELECT id, user_id, filename, content_type, size, upload_time, status, prediction, confidence
		 FROM scans WHERE user_id = ? ORDER BY upload_time DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var scans []models.Scan
	for rows.Next() {
		var scan models.Scan
		if err := rows.Scan(&scan.ID, &scan.UserID, &scan.Filename, &scan.ContentType, &scan.Size,
			&scan.UploadTime, &scan.Status, &scan.Prediction, &scan.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}

	return scans, nil
}
