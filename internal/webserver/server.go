package webserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/talkincode/toughcrm/config"
)

// AppContextKey is the echo context key holding the application
const AppContextKey = "appctx"

// WebServer serves the REST admin API and GraphQL endpoint
type WebServer struct {
	root   *echo.Echo
	config *config.AppConfig
}

// NewWebServer builds the echo instance with every registered route.
// appCtx is made available to handlers under AppContextKey.
func NewWebServer(cfg *config.AppConfig, appCtx interface{}) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("namespace", "web"))
			return nil
		},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	api, root := registeredRoutes()
	group := e.Group("/api/v1")
	for _, r := range api {
		group.Add(r.method, r.path, r.handler, r.mws...)
	}
	for _, r := range root {
		e.Add(r.method, r.path, r.handler, r.mws...)
	}
	return &WebServer{root: e, config: cfg}
}

func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Start blocks serving HTTP until Shutdown
func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Web.Host, s.config.Web.Port)
	zap.S().Infof("Start web server %s", addr)
	err := s.root.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}
