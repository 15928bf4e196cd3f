package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/KaramelBytes/sheetdash-cli/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions      *session.Manager
	Log           *logging.Logger
	Version       string
	MaxUploadMB   int
	ImageWidth    int
	ImageHeight   int
	AccessLogging bool
}

// NewServer builds the echo instance with middleware, error handling and routes.
func NewServer(deps Dependencies) *echo.Echo {
	if deps.Log == nil {
		deps.Log = logging.Default()
	}
	if deps.MaxUploadMB <= 0 {
		deps.MaxUploadMB = 32
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(deps.Log)

	if deps.AccessLogging {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Output: deps.Log.Writer(),
			Skipper: func(c echo.Context) bool {
				return c.Request().URL.Path == "/health"
			},
		}))
	}
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{StackSize: 4 << 10}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", deps.MaxUploadMB)))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	h := &Handlers{
		sessions:    deps.Sessions,
		version:     deps.Version,
		imageWidth:  deps.ImageWidth,
		imageHeight: deps.ImageHeight,
	}
	RegisterRoutes(e, h)
	return e
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	e.GET("/health", h.HandleHealth)

	sessions := e.Group("/api/sessions")
	sessions.POST("", h.HandleCreateSession)
	sessions.GET("/:id", h.HandleGetSession)
	sessions.DELETE("/:id", h.HandleDeleteSession)
	sessions.PUT("/:id/file", h.HandleReplaceFile)
	sessions.GET("/:id/analysis", h.HandleAnalysis)
	sessions.GET("/:id/report", h.HandleReport)

	charts := sessions.Group("/:id/charts")
	charts.GET("", h.HandleListCharts)
	charts.POST("", h.HandleAddChart)
	charts.PATCH("/:index", h.HandleUpdateChart)
	charts.DELETE("/:index", h.HandleDeleteChart)
	charts.GET("/:index/series", h.HandleSeries)
	charts.GET("/:index/series/msgpack", h.HandleSeriesMsgpack)
	charts.GET("/:index/chartjs", h.HandleChartJS)
	charts.GET("/:index/image", h.HandleImage)
}

// Serve runs e on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
