package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

const tokenTTL = 5 * time.Hour

var (
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[\W_]`)
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteExpiredSessions(ctx context.Context) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Signup(ctx context.Context, name, email, password string) (*User, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("invalid email address")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an opaque bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	session := &Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(tokenTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", time.Time{}, err
	}

	return session.Token, session.ExpiresAt, nil
}

// Authenticate resolves a bearer token to its user, rejecting unknown
// and expired tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrNotAuthenticated
	}

	return s.repo.GetUserByID(ctx, session.UserID)
}

// SeedAdmin creates the admin account on first boot when configured.
// Existing accounts are left untouched.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("admin account already exists", "email", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		return err
	}
	slog.Info("admin account created", "email", email)
	return nil
}

func validatePassword(password string) error {
	switch {
	case len(password) < 8:
		return fmt.Errorf("password must be at least 8 characters long")
	case !upperRe.MatchString(password):
		return fmt.Errorf("password must contain at least one uppercase letter")
	case !lowerRe.MatchString(password):
		return fmt.Errorf("password must contain at least one lowercase letter")
	case !digitRe.MatchString(password):
		return fmt.Errorf("password must contain at least one digit")
	case !specialRe.MatchString(password):
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}
