// Package auth registers users, checks passwords and issues expiring
// session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already exists")
	ErrUnauthenticated    = errors.New("not logged in")
)

// InputError reports a request field that failed validation.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Config controls password hashing and session lifetime.
type Config struct {
	SessionTTL time.Duration
	BcryptCost int
}

func DefaultConfig() Config {
	return Config{
		SessionTTL: 7 * 24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Registration is a sign-up request.
type Registration struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *store.User `json:"user"`
}

var fieldMessages = map[string]string{
	"Username": "username must be at least 3 characters",
	"Email":    "invalid email address",
	"Password": "password must be at least 6 characters",
}

// Service implements registration, login and token resolution.
type Service struct {
	users    store.UserRepo
	sessions store.SessionRepo
	cfg      Config
	validate *validator.Validate
	log      *logging.Logger
	now      func() time.Time
}

func NewService(users store.UserRepo, sessions store.SessionRepo, cfg Config, log *logging.Logger) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logging.OrNop(log).With("component", "auth"),
		now:      time.Now,
	}
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg, ok := fieldMessages[fe.Field()]
		if !ok || fe.Tag() == "max" {
			msg = fmt.Sprintf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag())
		}
		if fe.Tag() == "required" {
			msg = strings.ToLower(fe.Field()) + " is required"
		}
		return &InputError{Field: strings.ToLower(fe.Field()), Message: msg}
	}
	return err
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, r Registration) (*store.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if err := s.check(r); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, store.NewUser{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: string(hash),
		DisplayName:  r.DisplayName,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login checks the password and issues a session token valid for
// Config.SessionTTL.
func (s *Service) Login(ctx context.Context, c Credentials) (*Session, error) {
	c.Username = strings.TrimSpace(c.Username)
	if err := s.check(c); err != nil {
		return nil, err
	}

	u, err := s.users.ByUsername(ctx, c.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	expires := s.now().Add(s.cfg.SessionTTL)
	if err := s.sessions.Create(ctx, u.ID, token, expires); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.users.TouchLogin(ctx, u.ID); err != nil {
		s.log.Warn("record login failed", "user_id", u.ID, "error", err)
	}
	s.log.Info("user logged in", "user_id", u.ID)
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

// Authenticate resolves a token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*store.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.sessions.UserByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Deactivate(ctx, token)
}
