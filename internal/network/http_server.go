// Package network exposes the store over an HTTP/JSON API.
package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/net/http2"

	"github.com/leengari/memstore/internal/engine"
)

type HTTPServer struct {
	Echo   *echo.Echo
	engine *engine.Engine
}

type CustomValidator struct {
	validator *validator.Validate
}

// NewHTTPServer builds the echo instance and registers every route.
// It does not listen; call Start.
func NewHTTPServer(eng *engine.Engine) *HTTPServer {
	s := &HTTPServer{
		Echo:   echo.New(),
		engine: eng,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = errorHandler

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	dbs := s.Echo.Group("/databases")
	dbs.GET("", ccHandler(s.ListDatabases))
	dbs.POST("", ccHandler(s.CreateDatabase))
	dbs.DELETE("/:db", ccHandler(s.DropDatabase))
	dbs.GET("/:db/tables", ccHandler(s.ListTables))
	dbs.POST("/:db/tables", ccHandler(s.CreateTable))

	tbl := dbs.Group("/:db/tables/:table")
	tbl.GET("", ccHandler(s.DescribeTable))
	tbl.DELETE("", ccHandler(s.DropTable))
	tbl.GET("/records", ccHandler(s.SelectAll))
	tbl.POST("/records", ccHandler(s.InsertRecord))
	tbl.GET("/records/:id", ccHandler(s.GetRecord))
	tbl.PATCH("/records/:id", ccHandler(s.UpdateRecord))
	tbl.DELETE("/records/:id", ccHandler(s.DeleteRecord))
	tbl.POST("/filter", ccHandler(s.FilterEquals))
	tbl.POST("/query", ccHandler(s.SelectWhere))
	tbl.POST("/indexes", ccHandler(s.CreateIndex))
	tbl.DELETE("/indexes/:column", ccHandler(s.DropIndex))
	tbl.POST("/indexes/:column/lookup", ccHandler(s.SelectByIndex))

	snap := s.Echo.Group("/snapshot")
	snap.POST("/save", ccHandler(s.SaveSnapshot))
	snap.POST("/load", ccHandler(s.LoadSnapshot))

	return s
}

// Start listens on addr and serves h2c until Shutdown is called.
// It returns nil after a clean shutdown.
func (s *HTTPServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error creating tcp listener: %w", err)
	}
	s.Echo.Listener = listener

	slog.Info("starting h2c server", slog.String("addr", listener.Addr().String()))
	err = s.Echo.StartH2CServer("", &http2.Server{})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("h2c server failed: %w", err)
	}
	return nil
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)

		logger := slog.Default()
		if cc, ok := c.(*CustomContext); ok {
			logger = cc.Logger
		}
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug("req received",
			slog.String("method", req.Method),
			slog.String("remote_ip", c.RealIP()),
			slog.String("handler_path", c.Path()),
			slog.String("path", p),
			slog.Int("status", res.Status),
			slog.Int64("latency_ns", int64(stop)),
			slog.String("protocol", req.Proto),
			slog.String("bytes_in", cl),
			slog.Int64("bytes_out", res.Size))
		return nil
	}
}
