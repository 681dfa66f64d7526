package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"store-monitor/internal/delivery/http/handler"
	"store-monitor/internal/delivery/http/middleware"
	"store-monitor/internal/delivery/http/routes"
	"store-monitor/internal/ws"
)

type App struct {
	Fiber *fiber.App
	WS    *http.Server

	container *Container
	hubCancel context.CancelFunc
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:      c.Config.App.AppName,
		ErrorHandler: middleware.ErrorHandler,
	})

	f.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
	f.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	f.Use(cors.New(cors.Config{
		AllowOrigins: c.Config.App.CORSOrigins,
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	var auth *middleware.AuthMiddleware
	if c.Tokens != nil {
		auth = middleware.NewAuthMiddleware(c.Tokens)
	}
	routes.NewRegistry(
		handler.NewHealthHandler(c.Health),
		handler.NewReportHandler(c.Reports, c.Logger),
		auth,
	).Register(f)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Hub.Run(ctx)

	wsHandler := ws.NewHandler(c.Hub, c.Reports, c.Config.App.CORSOrigins, c.Logger)
	wsAddr, _ := ListenAddr(c.Config.App.WSPort)
	srv := &http.Server{
		Addr:              wsAddr,
		Handler:           wsHandler.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{Fiber: f, WS: srv, container: c, hubCancel: cancel}
}

func Bootstrap(c *Container) (*App, func() error, error) {
	if c == nil {
		return nil, nil, errors.New("nil container")
	}
	a := New(c)
	return a, c.Close, nil
}

// Serve runs the HTTP API and the websocket listener until one fails.
func (a *App) Serve(httpAddr string) error {
	errCh := make(chan error, 2)
	go func() {
		errCh <- a.Fiber.Listen(httpAddr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	go func() {
		if a.WS.Addr == "" {
			return
		}
		a.container.Logger.WithField("addr", a.WS.Addr).Info("[App] websocket listener started")
		if err := a.WS.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.container.Logger.WithField("addr", httpAddr).Info("[App] http listener started")
	return <-errCh
}

// Shutdown stops accepting requests, then drains report jobs.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	if err := a.WS.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("ws: %w", err))
	}
	if err := a.container.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("jobs: %w", err))
	}
	a.hubCancel()
	return errors.Join(errs...)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
