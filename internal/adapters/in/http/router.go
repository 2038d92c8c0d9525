package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Config holds the edge settings of the HTTP server.
type Config struct {
	JWTSecret []byte
	// UploadDir is served read-only under UploadRoute when both are set.
	UploadDir   string
	UploadRoute string
	Development bool
}

// NewEcho builds the echo instance: middleware chain, health check, swagger UI, uploaded
// images and the API routes of server.
func NewEcho(ctx context.Context, server *Server, cfg Config, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := OpenAPIValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = registerSwagger(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Validator = NewRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(SecureHeaders(cfg.Development))
	e.Use(RequestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if cfg.UploadDir != "" && cfg.UploadRoute != "" {
		e.Static(cfg.UploadRoute, cfg.UploadDir)
	}

	g := e.Group(BaseURL, Authenticate(cfg.JWTSecret), validate)
	RegisterHandlersWithBaseURL(g, server, "")
	return e, nil
}
