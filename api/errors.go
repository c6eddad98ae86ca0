package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"dappstore.GO/core/errs"
	"dappstore.GO/core/logger"
)

// ErrorBody is the JSON error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Status maps an error kind onto an HTTP status code.
func Status(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindAuthorization:
		return http.StatusForbidden
	case errs.KindReference:
		return http.StatusUnprocessableEntity
	case errs.KindConflict, errs.KindIDExhausted:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindUpstream:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders *errs.Error and echo errors as ErrorBody.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	log = logger.OrDiscard(log)
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, body := http.StatusInternalServerError, ErrorBody{Error: http.StatusText(http.StatusInternalServerError)}

		var he *echo.HTTPError
		var e *errs.Error
		switch {
		case errors.As(err, &he):
			code = he.Code
			body.Error = http.StatusText(code)
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			}
		case errors.As(err, &e):
			code = Status(e.Kind)
			body = ErrorBody{Error: e.Error(), Kind: string(e.Kind), Details: e.Details}
		}
		if code >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Error("writing error response", "error", err)
		}
	}
}

// BadRequest wraps a request decoding failure.
func BadRequest(op string, err error) error {
	return errs.Wrap(errs.KindValidation, op, err, "invalid request")
}
