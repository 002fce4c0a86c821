package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_academy/internal/models"
	"github.com/Skotchmaster/sport_academy/internal/transport"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

func (h *AcademyHTTP) CreateClass(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "class.create")

	var class models.Class
	if err := c.Bind(&class); err != nil {
		l.Warn("create_class_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.CreateClass(ctx, class)
	if err != nil {
		l.Error("create_class_error", "status", 500, "reason", "cannot save class", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save class")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AcademyHTTP) GetClasses(c echo.Context) error {
	ctx := c.Request().Context()

	classes, err := h.Svc.ListClasses(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("get_classes_error", "status", 500, "reason", "cannot list classes", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list classes")
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *AcademyHTTP) GetInstructorClasses(c echo.Context) error {
	ctx := c.Request().Context()

	classes, err := h.Svc.ListInstructorClasses(ctx, c.QueryParam("instructorEmail"))
	if err != nil {
		logging.FromContext(ctx).Error("get_instructor_classes_error", "status", 500, "reason", "cannot list classes", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list classes")
	}
	return c.JSON(http.StatusOK, classes)
}

// UpdateClass serves both PUT and PATCH. Only fields present in the body change.
func (h *AcademyHTTP) UpdateClass(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "class.update")

	id, err := parseID(c)
	if err != nil {
		l.Warn("update_class_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req transport.UpdateClassRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		l.Warn("update_class_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.UpdateClass(ctx, id, req.ToModel())
	if err != nil {
		l.Error("update_class_error", "status", 500, "reason", "cannot update class", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update class")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AcademyHTTP) ApproveClass(c echo.Context) error {
	return h.changeStatus(c, models.StatusApproved)
}

func (h *AcademyHTTP) DenyClass(c echo.Context) error {
	return h.changeStatus(c, models.StatusDenied)
}

func (h *AcademyHTTP) changeStatus(c echo.Context, status string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "class.change_status", "class_status", status)

	id, err := parseID(c)
	if err != nil {
		l.Warn("change_status_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var res models.UpdateResult
	if status == models.StatusApproved {
		res, err = h.Svc.ApproveClass(ctx, id)
	} else {
		res, err = h.Svc.DenyClass(ctx, id)
	}
	if err != nil {
		l.Error("change_status_error", "status", 500, "reason", "cannot update class", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update class")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AcademyHTTP) SearchClasses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "class.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		l.Warn("search_classes_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	total, classes, err := h.Svc.SearchClasses(ctx, q)
	if err != nil {
		l.Error("search_classes_error", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Classes: classes})
}
