package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultSessionTTL = 24 * time.Hour

// Session is an issued admin session.
type Session struct {
	Token     string    `json:"token"`
	ID        string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticator gates the admin operations (upload, delete, clear).
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (Session, error)
	// Validate reports whether token is a live session. The error is only
	// set when validity could not be determined.
	Validate(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

type Options struct {
	Password   string
	SigningKey []byte
	TTL        time.Duration
	Issuer     string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// StaticAuthenticator accepts a single shared password and issues HS256
// tokens valid for TTL after issue unless revoked.
type StaticAuthenticator struct {
	password string
	key      []byte
	ttl      time.Duration
	issuer   string
	revoked  RevocationStore
	now      func() time.Time
	log      zerolog.Logger
}

func NewStaticAuthenticator(opts Options, revoked RevocationStore) *StaticAuthenticator {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &StaticAuthenticator{
		password: opts.Password,
		key:      opts.SigningKey,
		ttl:      opts.TTL,
		issuer:   opts.Issuer,
		revoked:  revoked,
		now:      opts.Now,
		log:      logger.Component("auth"),
	}
}

func (a *StaticAuthenticator) Authenticate(ctx context.Context, credential string) (Session, error) {
	if a.password == "" || credential != a.password {
		a.log.Warn().Msg("Rejected admin login")
		return Session{}, errors.ErrAuthenticationFailed
	}

	now := a.now().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    a.issuer,
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	a.log.Info().Str("session_id", claims.ID).Time("expires_at", claims.ExpiresAt.Time).Msg("Admin session issued")
	return Session{
		Token:     token,
		ID:        claims.ID,
		IssuedAt:  now,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (a *StaticAuthenticator) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return claims, err
	}
	if claims.ID == "" {
		return claims, fmt.Errorf("missing jti claim")
	}
	return claims, nil
}

func (a *StaticAuthenticator) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	claims, err := a.parse(token)
	if err != nil {
		a.log.Debug().Err(err).Msg("Session token rejected")
		return false, nil
	}

	revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return !revoked, nil
}

// Revoke ends a session before its expiry. Already expired tokens are a no-op.
func (a *StaticAuthenticator) Revoke(ctx context.Context, token string) error {
	claims, err := a.parse(token)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return errors.ErrSessionExpired
	}

	ttl := claims.ExpiresAt.Time.Sub(a.now())
	if err := a.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	a.log.Info().Str("session_id", claims.ID).Msg("Admin session revoked")
	return nil
}
