package network

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CustomContext struct {
	echo.Context
	RequestID string
	Logger    *slog.Logger
}

func CreateReqContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Request().Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)

		cc := &CustomContext{
			Context:   c,
			RequestID: reqID,
			Logger:    slog.Default().With(slog.String("req_id", reqID)),
		}
		return next(cc)
	}
}

// Casts to custom context for the handler, so this doesn't have to be done per handler
func ccHandler(h func(*CustomContext) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c.(*CustomContext))
	}
}

func (c *CustomContext) internalErrorMessage() string {
	return "internal error, request id: " + c.RequestID
}

// InternalError logs err with the request id and hides it from the client
func (c *CustomContext) InternalError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.Logger.Warn(msg, "error", err)
	} else {
		c.Logger.Error(msg, "error", err)
	}
	return &internalError{msg: c.internalErrorMessage(), err: err}
}

// internalError carries an already-logged failure to the error handler
type internalError struct {
	msg string
	err error
}

func (e *internalError) Error() string { return e.msg }
func (e *internalError) Unwrap() error { return e.err }
