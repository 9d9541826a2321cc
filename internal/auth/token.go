package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const emailClaim = "email"

// ErrInvalidToken is returned for malformed, forged or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by an access token.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. The secret must not be empty.
func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Sign issues a token for the given user.
func (i *Issuer) Sign(subject, email string) (string, Claims, error) {
	now := i.now().UTC().Truncate(time.Second)
	claims := Claims{
		Subject:   subject,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}
	tok, err := jwt.NewBuilder().
		Issuer(i.issuer).
		Subject(subject).
		IssuedAt(claims.IssuedAt).
		Expiration(claims.ExpiresAt).
		Claim(emailClaim, email).
		Build()
	if err != nil {
		return "", Claims{}, fmt.Errorf("build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, i.secret))
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return string(signed), claims, nil
}

// Verify checks signature, issuer and expiry and returns the token's claims.
func (i *Issuer) Verify(token string) (Claims, error) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, i.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(i.issuer),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tok.Subject() == "" {
		return Claims{}, ErrInvalidToken
	}
	email, _ := tok.PrivateClaims()[emailClaim].(string)
	return Claims{
		Subject:   tok.Subject(),
		Email:     email,
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}
