package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_academy/internal/token"
	"github.com/Skotchmaster/sport_academy/internal/transport"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

type AuthHTTP struct {
	Tokens *token.Service
}

// IssueToken signs whatever JSON object the caller sends. An empty body signs an empty payload.
func (h *AuthHTTP) IssueToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.issue_token")

	var payload map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
		l.Warn("issue_token_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	signed, err := h.Tokens.Issue(payload)
	if errors.Is(err, token.ErrInvalidPayload) {
		l.Warn("issue_token_error", "status", 400, "reason", "invalid registered claim", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err != nil {
		l.Error("issue_token_error", "status", 500, "reason", "cannot sign token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign token")
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{Token: signed})
}
