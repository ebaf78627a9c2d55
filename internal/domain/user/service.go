package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmptyUsername      = errors.New("username is empty")
	ErrWeakCredential     = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrEmailTaken         = errors.New("email already taken")
)

const minPasswordLen = 8

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Register validates the candidate, hashes the password and persists the user.
// A nil registeredAt defaults to the current time. Validation failures leave
// the store untouched.
func (s *Service) Register(ctx context.Context, email, name, password string, registeredAt *time.Time) (*User, error) {
	if err := validate(email, name, password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	when := s.now()
	if registeredAt != nil {
		when = *registeredAt
	}

	u := &User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         "user",
		IsActive:     true,
		RegisteredAt: when,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// UpdateProfile re-runs the same validation that Register applies. A nil
// password pointer keeps the stored hash.
func (s *Service) UpdateProfile(ctx context.Context, id int64, email, name string, password *string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pwd := strings.Repeat("x", minPasswordLen)
	if password != nil {
		pwd = *password
	}
	if err := validate(email, name, pwd); err != nil {
		return nil, err
	}

	if email != u.Email {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		}
	}

	u.Email = email
	u.Name = strings.TrimSpace(name)
	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

func validate(email, name, password string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyUsername
	}
	if len(password) < minPasswordLen {
		return ErrWeakCredential
	}
	return nil
}
