// Package auth issues and verifies the signed tokens that carry a caller's
// identity. The token subject is the identity compared against the sale
// authority.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const defaultIssuer = "ticket-sale"

var (
	ErrMissingSecret = errors.New("auth: signing secret required")
	ErrInvalidToken  = errors.New("auth: invalid token")
)

// Claims is the token payload. Subject holds the caller identity.
type Claims struct {
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Tokens)

func WithIssuer(issuer string) Option {
	return func(t *Tokens) {
		if issuer != "" {
			t.issuer = issuer
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(t *Tokens) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithNow overrides the time source used for issuing and validation.
func WithNow(now func() time.Time) Option {
	return func(t *Tokens) {
		if now != nil {
			t.now = now
		}
	}
}

func New(secret string, opts ...Option) (*Tokens, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	t := &Tokens{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a token for subject.
func (t *Tokens) Issue(subject domain.Identity) (string, error) {
	if subject.IsZero() {
		return "", domain.ErrInvalidIdentity
	}
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks the signature, issuer and expiry of raw and returns the
// caller identity it carries.
func (t *Tokens) Verify(raw string) (domain.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := domain.NewIdentity(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}
