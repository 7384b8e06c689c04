package auth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
)

// DefaultRole is the role baked into tokens when the caller does not pick one.
const DefaultRole = "student"

// Claims is the payload carried by every issued token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 bearer tokens against a single shared secret.
// It keeps no state between calls; a token is valid for as long as its signature
// and exp claim say so.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger
}

// NewService constructs a Service that signs with secret and stamps tokens with ttl.
func NewService(secret []byte, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{secret: secret, ttl: ttl, now: time.Now, log: log}
}

// NewServiceWithClock constructs a Service with an injectable clock (for tests).
func NewServiceWithClock(secret []byte, ttl time.Duration, now func() time.Time, log *slog.Logger) *Service {
	return &Service{secret: secret, ttl: ttl, now: now, log: log}
}

// TTL returns the lifetime given to issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs claims with an expiry of now + TTL.
func (s *Service) Issue(claims Claims) (string, error) {
	if claims.Role == "" {
		claims.Role = DefaultRole
	}

	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Every failure maps to the same Unauthorized error so callers cannot tell
// a forged token from an expired one; the reason is only logged.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.log.Debug("token rejected", "reason", err)
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	if !claims.VerifyExpiresAt(s.now(), true) {
		s.log.Debug("token rejected", "reason", "expired")
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	return claims, nil
}
