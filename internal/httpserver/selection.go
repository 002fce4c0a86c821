package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_academy/internal/middleware"
	"github.com/Skotchmaster/sport_academy/internal/models"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

func (h *AcademyHTTP) SelectClass(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "selection.create")

	var sel models.SelectedClass
	if err := c.Bind(&sel); err != nil {
		l.Warn("select_class_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.SelectClass(ctx, sel)
	if err != nil {
		l.Error("select_class_error", "status", 500, "reason", "cannot save selection", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save selection")
	}
	return c.JSON(http.StatusOK, res)
}

// GetSelectedClasses runs behind the auth gate. The email query must match the token email
// and the check happens before the store is touched.
func (h *AcademyHTTP) GetSelectedClasses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "selection.list")

	email := c.QueryParam("email")
	present := c.QueryParams().Has("email")

	if err := middleware.AuthorizeEmail(middleware.ClaimsFrom(c), email, present); err != nil {
		l.Warn("get_selected_classes_error", "status", 403, "reason", "email mismatch", "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "forbidden access")
	}

	items, err := h.Svc.ListSelections(ctx, email)
	if err != nil {
		l.Error("get_selected_classes_error", "status", 500, "reason", "cannot list selections", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list selections")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AcademyHTTP) DeleteSelectedClass(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "selection.delete")

	id, err := parseID(c)
	if err != nil {
		l.Warn("delete_selection_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res, err := h.Svc.RemoveSelection(ctx, id)
	if err != nil {
		l.Error("delete_selection_error", "status", 500, "reason", "cannot delete selection", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete selection")
	}
	return c.JSON(http.StatusOK, res)
}
