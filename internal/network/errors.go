package network

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	domainerrors "github.com/leengari/memstore/internal/domain/errors"
)

// KindValidation marks malformed requests rejected before reaching the store
const KindValidation domainerrors.Kind = "validation"

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string            `json:"error"`
	Kind  domainerrors.Kind `json:"kind"`
}

var kindStatus = map[domainerrors.Kind]int{
	domainerrors.KindNotFound:            http.StatusNotFound,
	domainerrors.KindAlreadyExists:       http.StatusConflict,
	domainerrors.KindSchemaViolation:     http.StatusUnprocessableEntity,
	domainerrors.KindMissingColumn:       http.StatusUnprocessableEntity,
	domainerrors.KindTypeMismatch:        http.StatusUnprocessableEntity,
	domainerrors.KindNoIndex:             http.StatusPreconditionFailed,
	domainerrors.KindUnknownColumn:       http.StatusBadRequest,
	domainerrors.KindUnsupportedOperator: http.StatusBadRequest,
	domainerrors.KindUnsupportedOperand:  http.StatusBadRequest,
	domainerrors.KindCorruptSnapshot:     http.StatusUnprocessableEntity,
	KindValidation:                       http.StatusBadRequest,
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind domainerrors.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// classify turns any handler error into a status and response body
func classify(err error) (int, ErrorResponse) {
	var internal *internalError
	if errors.As(err, &internal) {
		return http.StatusInternalServerError, ErrorResponse{Error: internal.msg, Kind: domainerrors.KindInternal}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		kind := KindValidation
		switch {
		case he.Code == http.StatusNotFound:
			kind = domainerrors.KindNotFound
		case he.Code >= 500:
			kind = domainerrors.KindInternal
		}
		return he.Code, ErrorResponse{Error: msg, Kind: kind}
	}

	kind := domainerrors.KindOf(err)
	return StatusFor(kind), ErrorResponse{Error: err.Error(), Kind: kind}
}

// errorHandler renders handler errors as ErrorResponse JSON
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := classify(err)
	if status >= 500 {
		if _, logged := err.(*internalError); !logged {
			slog.Error("request failed",
				slog.String("path", c.Request().URL.Path),
				slog.String("req_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				"error", err)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
