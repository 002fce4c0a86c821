package middleware

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_academy/internal/token"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

// ClaimsKey is the echo context key holding the verified *token.Claims.
const ClaimsKey = "claims"

var ErrForbidden = errors.New("forbidden access")

type claimsCtxKey struct{}

// Verifier is the part of the token service the gate depends on.
type Verifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Gate admits only requests carrying "Authorization: Bearer <token>" with a valid, unexpired token.
// Any other scheme, a missing header or a failed verification ends the request with 401.
func Gate(v Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return v.Verify(auth)
		},
		SuccessHandler: func(c echo.Context) {
			claims, _ := c.Get(ClaimsKey).(*token.Claims)
			req := c.Request()
			c.SetRequest(req.WithContext(IntoContext(req.Context(), claims)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_gate_rejected", "status", http.StatusUnauthorized, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
		},
	})
}

func IntoContext(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

func FromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsCtxKey{}).(*token.Claims)
	return claims
}

// ClaimsFrom returns the claims attached by Gate, or nil outside a gated route.
func ClaimsFrom(c echo.Context) *token.Claims {
	if claims, ok := c.Get(ClaimsKey).(*token.Claims); ok {
		return claims
	}
	return FromContext(c.Request().Context())
}

// AuthorizeEmail compares the email query parameter with the claim email.
// Both absent is allowed; both present must match exactly; anything else is forbidden.
func AuthorizeEmail(claims *token.Claims, email string, present bool) error {
	if claims == nil {
		return ErrForbidden
	}
	raw, exists := claims.Payload["email"]
	if !present {
		if exists {
			return ErrForbidden
		}
		return nil
	}
	claimEmail, ok := raw.(string)
	if !ok || claimEmail != email {
		return ErrForbidden
	}
	return nil
}
