package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel/attribute"

	"filedrive/internal/auth"
	"filedrive/internal/model"
	"filedrive/internal/repository"
)

const minPasswordLen = 6

// Session is returned after a successful sign-in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// AuthService verifies credentials and issues access tokens.
type AuthService interface {
	// Login checks email/password. clientKey identifies the caller for throttling.
	Login(ctx context.Context, email, password, clientKey string) (*Session, error)
	// Register creates an account and signs it in. Disabled unless signup is allowed.
	// clientKey shares the login throttle.
	Register(ctx context.Context, email, password, clientKey string) (*Session, error)
	// Verify validates an access token.
	Verify(ctx context.Context, token string) (auth.Claims, error)
	// CurrentUser loads the account behind a verified token.
	CurrentUser(ctx context.Context, id string) (*model.User, error)
}

type authService struct {
	users       repository.UserRepository
	issuer      *auth.Issuer
	limiter     *auth.Limiter
	allowSignup bool
	log         *slog.Logger
	now         func() time.Time
	// dummyHash is compared on unknown emails so both failure paths cost a bcrypt round.
	dummyHash string
}

// NewAuthService constructs a new AuthService. limiter may be nil.
func NewAuthService(users repository.UserRepository, issuer *auth.Issuer, limiter *auth.Limiter, allowSignup bool, log *slog.Logger) AuthService {
	dummy, _ := auth.HashPassword(xid.New().String())
	return &authService{
		users:       users,
		issuer:      issuer,
		limiter:     limiter,
		allowSignup: allowSignup,
		log:         log.With("component", "auth"),
		now:         func() time.Time { return time.Now().UTC() },
		dummyHash:   dummy,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrAuthInvalidEmail
	}
	return email, nil
}

func (s *authService) Login(ctx context.Context, email, password, clientKey string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if !s.limiter.Allow(clientKey) {
		s.log.WarnContext(ctx, "login_throttled", "client", clientKey)
		return nil, ErrAuthTooManyRequests
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("enduser.email", email))

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		_ = auth.ComparePassword(s.dummyHash, password)
		s.log.InfoContext(ctx, "login_failed", "reason", ErrAuthUserNotFound.Code)
		return nil, ErrAuthUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := auth.ComparePassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.InfoContext(ctx, "login_failed", "reason", ErrAuthWrongPassword.Code, "user_id", u.ID)
			return nil, ErrAuthWrongPassword
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	s.log.InfoContext(ctx, "login_succeeded", "user_id", u.ID)
	return s.session(u)
}

func (s *authService) Register(ctx context.Context, email, password, clientKey string) (*Session, error) {
	if !s.allowSignup {
		return nil, ErrAuthOperationNotAllowed
	}
	if !s.limiter.Allow(clientKey) {
		s.log.WarnContext(ctx, "register_throttled", "client", clientKey)
		return nil, ErrAuthTooManyRequests
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrAuthWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, &model.User{
		ID:           xid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrAuthEmailInUse
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user_registered", "user_id", u.ID)
	return s.session(u)
}

func (s *authService) session(u *model.User) (*Session, error) {
	token, claims, err := s.issuer.Sign(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt, User: u}, nil
}

func (s *authService) Verify(_ context.Context, token string) (auth.Claims, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return auth.Claims{}, ErrAuthInvalidToken
	}
	return claims, nil
}

func (s *authService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthUserNotFound
	}
	return u, err
}
