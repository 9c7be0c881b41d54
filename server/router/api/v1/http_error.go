package v1

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"
)

// HTTPErrorHandler renders every error as {"error": message}.
func HTTPErrorHandler(c *echo.Context, err error) {
	code, message := errorStatus(err)
	if code == http.StatusInternalServerError && message == http.StatusText(code) {
		slog.Error("unhandled request error", slog.String("path", c.Request().URL.Path), slog.String("error", err.Error()))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": message})
	}
	if err != nil {
		slog.Error("failed to write error response", slog.String("error", err.Error()))
	}
}

func errorStatus(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}
	// Routing sentinels such as echo.ErrNotFound only expose a status code.
	var statusCoder echo.HTTPStatusCoder
	if errors.As(err, &statusCoder) {
		code := statusCoder.StatusCode()
		return code, http.StatusText(code)
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
