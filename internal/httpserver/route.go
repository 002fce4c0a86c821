package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/sport_academy/internal/middleware"
	loggingmw "github.com/Skotchmaster/sport_academy/pkg/middleware/logging"
)

type Deps struct {
	AcademyHandler *AcademyHTTP
	AuthHandler    *AuthHTTP
	Verifier       middleware.Verifier
}

// NewEcho builds the server with the shared middleware chain and the JSON error handler.
// Recover sits inside the request logger so recovered panics are still logged.
func NewEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "server is running now") })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.AcademyHandler.Ready)

	e.POST("/jwt", d.AuthHandler.IssueToken)

	e.POST("/user", d.AcademyHandler.CreateUser)
	e.GET("/user", d.AcademyHandler.GetUsers)
	e.PATCH("/user/admin/:id", d.AcademyHandler.MakeAdmin)
	e.PATCH("/user/instructor/:id", d.AcademyHandler.MakeInstructor)
	e.DELETE("/user/:id", d.AcademyHandler.DeleteUser)

	e.PATCH("/status/approved/:id", d.AcademyHandler.ApproveClass)
	e.PATCH("/status/deny/:id", d.AcademyHandler.DenyClass)

	e.POST("/feedback", d.AcademyHandler.CreateFeedback)
	e.GET("/feedback", d.AcademyHandler.GetFeedback)

	e.POST("/selectclass", d.AcademyHandler.SelectClass)
	e.GET("/selectclass", d.AcademyHandler.GetSelectedClasses, middleware.Gate(d.Verifier))
	e.DELETE("/selectclass/:id", d.AcademyHandler.DeleteSelectedClass)

	classes := e.Group("/allclass")
	classes.POST("", d.AcademyHandler.CreateClass)
	classes.GET("", d.AcademyHandler.GetClasses)
	classes.PUT("/:id", d.AcademyHandler.UpdateClass)
	classes.PATCH("/:id", d.AcademyHandler.UpdateClass)
	if d.AcademyHandler.Svc.SearchEnabled() {
		classes.GET("/search", d.AcademyHandler.SearchClasses)
	}

	e.GET("/myclass", d.AcademyHandler.GetInstructorClasses)
}
