// Package token signs and verifies the identity tokens handed out by POST /jwt.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of every issued token.
const TokenTTL = time.Hour

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidPayload = errors.New("invalid token payload")
)

// Claims is a verified token. Payload holds exactly what the caller asked to sign.
type Claims struct {
	Payload   map[string]any
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Email reports the payload email when it is present as a string.
func (c *Claims) Email() (string, bool) {
	if c == nil {
		return "", false
	}
	email, ok := c.Payload["email"].(string)
	return email, ok
}

type Service struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{Secret: secret, TTL: TokenTTL, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return TokenTTL
	}
	return s.TTL
}

// Issue signs payload with HS256. Any exp or iat supplied by the caller is replaced.
// A caller nbf that is not a number is refused, since Verify could never accept it.
func (s *Service) Issue(payload map[string]any) (string, error) {
	now := s.now()

	claims := make(jwt.MapClaims, len(payload)+2)
	for k, v := range payload {
		claims[k] = v
	}
	if _, err := claims.GetNotBefore(); err != nil {
		return "", fmt.Errorf("%w: nbf: %w", ErrInvalidPayload, err)
	}
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(s.ttl()))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) Verify(raw string) (*Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}

	out := &Claims{Payload: make(map[string]any, len(claims))}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	for k, v := range claims {
		if k == "exp" || k == "iat" {
			continue
		}
		out.Payload[k] = v
	}
	return out, nil
}
