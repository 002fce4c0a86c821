package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Skotchmaster/sport_academy/internal/repo"
	"github.com/Skotchmaster/sport_academy/internal/transport"
)

// ErrorHandler renders every failure as {"error": true, "message": "..."}.
// Errors that are not *echo.HTTPError become a 500 without leaking their text.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
			msg = http.StatusText(code)
		default:
			msg = fmt.Sprint(m)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, transport.ErrorResponse{Error: true, Message: msg})
}

func parseID(c echo.Context) (bson.ObjectID, error) {
	return repo.ParseID(c.Param("id"))
}
