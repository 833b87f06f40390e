package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	// ErrEmailTaken is returned when registering an address that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidInput is returned when registration fields fail validation.
	ErrInvalidInput = errors.New("invalid registration input")
	// ErrNotFound is returned when an account id does not resolve.
	ErrNotFound = errors.New("user not found")
)

const minPasswordLength = 8

// Notifier delivers account mail. Delivery is fire-and-forget: failures are
// logged by the notifier and never block account operations.
type Notifier interface {
	SendVerification(email, username, code string)
}

// Service manages registered accounts.
type Service struct {
	repo     *database.UserRepository
	notifier Notifier
}

// NewService creates an account service. The notifier may be nil, in which
// case no verification mail is sent.
func NewService(repo *database.UserRepository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Register creates an account. The verification mail is dispatched
// asynchronously; registration succeeds even if the notification fails.
func (s *Service) Register(ctx context.Context, email, username, plainPassword string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, fmt.Errorf("%w: valid email required", ErrInvalidInput)
	}
	if username == "" {
		return models.User{}, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	if len(plainPassword) < minPasswordLength {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
		return models.User{}, err
	} else if exists {
		return models.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	code, err := password.Generate(8, 4, 0, true, true)
	if err != nil {
		return models.User{}, fmt.Errorf("generate verification code: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:               uuid.NewString(),
		Email:            email,
		Username:         username,
		PasswordHash:     string(hash),
		VerificationCode: code,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	if s.notifier != nil {
		s.notifier.SendVerification(user.Email, user.Username, code)
	}
	return user, nil
}

// Authenticate checks credentials and returns the account on success.
func (s *Service) Authenticate(ctx context.Context, email, plainPassword string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, ok, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plainPassword)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Verify matches the emailed code and marks the account verified.
func (s *Service) Verify(ctx context.Context, userID, code string) error {
	user, ok, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if user.Verified {
		return nil
	}
	if user.VerificationCode == "" || user.VerificationCode != strings.TrimSpace(code) {
		return fmt.Errorf("%w: verification code mismatch", ErrInvalidInput)
	}
	return s.repo.MarkVerified(ctx, userID)
}

// Get returns the account by id.
func (s *Service) Get(ctx context.Context, userID string) (models.User, error) {
	user, ok, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}
