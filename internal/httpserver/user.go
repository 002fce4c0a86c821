package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_academy/internal/models"
	"github.com/Skotchmaster/sport_academy/internal/transport"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

func (h *AcademyHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var user models.User
	if err := c.Bind(&user); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, existed, err := h.Svc.RegisterUser(ctx, user)
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "cannot save user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save user")
	}
	if existed {
		l.Info("create_user_exists")
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "user already exist"})
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AcademyHTTP) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("get_users_error", "status", 500, "reason", "cannot list users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AcademyHTTP) MakeAdmin(c echo.Context) error {
	return h.changeRole(c, models.RoleAdmin)
}

func (h *AcademyHTTP) MakeInstructor(c echo.Context) error {
	return h.changeRole(c, models.RoleInstructor)
}

func (h *AcademyHTTP) changeRole(c echo.Context, role string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.change_role", "role", role)

	id, err := parseID(c)
	if err != nil {
		l.Warn("change_role_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var res models.UpdateResult
	if role == models.RoleAdmin {
		res, err = h.Svc.PromoteAdmin(ctx, id)
	} else {
		res, err = h.Svc.PromoteInstructor(ctx, id)
	}
	if err != nil {
		l.Error("change_role_error", "status", 500, "reason", "cannot update user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update user")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AcademyHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := parseID(c)
	if err != nil {
		l.Warn("delete_user_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res, err := h.Svc.DeleteUser(ctx, id)
	if err != nil {
		l.Error("delete_user_error", "status", 500, "reason", "cannot delete user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete user")
	}
	return c.JSON(http.StatusOK, res)
}
