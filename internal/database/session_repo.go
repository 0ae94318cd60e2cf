package database

import (
	"database/sql"
	"errors"
	"fmt"

	"coinvision/internal/models"
)

type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) InsertSession(session *models.Session) error {
	_, err := r.db.conn.Exec(
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetSessionByID(id string) (*models.Session, error) {
	var session models.Session
	err := r.db.conn.QueryRow(
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) DeleteSession(id string) error {
	if _, err := r.db.conn.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry.
func (r *SessionRepository) DeleteExpired() error {
	if _, err := r.db.conn.Exec(`DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
