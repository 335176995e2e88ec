package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"skinTrack/pkg/logger"

	jsonres "skinTrack/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that escape handlers (unknown routes, bind
// failures, panics caught by Recover) in the shared error envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
		if he.Internal != nil {
			logger.Debug("HTTP error", "status", status, he.Internal)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", "method", c.Request().Method, "path", c.Path(), err)
	}

	body := jsonres.Error(errorCode(status), message, nil)

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(status)
	} else {
		sendErr = c.JSON(status, body)
	}
	if sendErr != nil {
		logger.Error("Failed to write error response", sendErr)
	}
}

func errorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
