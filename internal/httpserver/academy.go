package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_academy/internal/service"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

type AcademyHTTP struct {
	Svc *service.AcademyService
}

func (h *AcademyHTTP) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.Svc.Ready(ctx); err != nil {
		logging.FromContext(ctx).Error("ready_check_error", "status", 503, "reason", "store unreachable", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unreachable")
	}
	return c.NoContent(http.StatusOK)
}
