package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_academy/internal/models"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

func (h *AcademyHTTP) CreateFeedback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.create")

	var fb models.Feedback
	if err := c.Bind(&fb); err != nil {
		l.Warn("create_feedback_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.SubmitFeedback(ctx, fb)
	if err != nil {
		l.Error("create_feedback_error", "status", 500, "reason", "cannot save feedback", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save feedback")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AcademyHTTP) GetFeedback(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.ListFeedback(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("get_feedback_error", "status", 500, "reason", "cannot list feedback", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list feedback")
	}
	return c.JSON(http.StatusOK, items)
}
