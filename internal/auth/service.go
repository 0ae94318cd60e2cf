package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"coinvision/internal/database"
	"coinvision/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionInvalid     = errors.New("session invalid or expired")
)

const minPasswordLength = 8

// Service owns user accounts and server-side sessions.
type Service struct {
	users    *database.UserRepository
	sessions *database.SessionRepository
	ttl      time.Duration
}

func NewService(users *database.UserRepository, sessions *database.SessionRepository, ttl time.Duration) *Service {
	return &Service{users: users, sessions: sessions, ttl: ttl}
}

func (s *Service) Register(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.NewUser(email, string(hash))
	if err := s.users.InsertUser(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *Service) Login(email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := models.NewSession(user.ID, s.ttl)
	if err := s.sessions.InsertSession(session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return session, nil
}

func (s *Service) Logout(sessionID string) error {
	return s.sessions.DeleteSession(sessionID)
}

// ValidateSession resolves a session id to its user. Expired sessions are
// deleted on sight.
func (s *Service) ValidateSession(sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.sessions.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	if session.Expired() {
		_ = s.sessions.DeleteSession(session.ID)
		return nil, ErrSessionInvalid
	}

	user, err := s.users.GetUserByID(session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("looking up session user: %w", err)
	}

	return user, nil
}
