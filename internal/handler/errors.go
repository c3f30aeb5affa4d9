package handler

import (
	"errors"
	"net/http"

	"github.com/google/logger"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors returned by handlers and middleware as
// {"error": "..."} so every failure has the same shape as the errors the
// handlers write themselves.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logger.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		logger.Warningf("write error response: %v", err)
	}
}
