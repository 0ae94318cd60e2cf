package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewSession(userID string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
