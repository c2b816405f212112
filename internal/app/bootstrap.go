package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learning-buddy/internal/config"
	"learning-buddy/internal/delivery/http/handler"
	"learning-buddy/internal/delivery/http/middleware"
	"learning-buddy/internal/delivery/http/routes"
	v1 "learning-buddy/internal/delivery/http/routes/v1"
	"learning-buddy/internal/pkg/jwt"
	"learning-buddy/internal/ws"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP app around an existing container.
func New(c *Container) *App {
	cfg := c.Config
	f := fiber.New(fiber.Config{
		AppName:     cfg.App.AppName,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container, starts the websocket hub and, when
// configured, warms the predictor and compositor. The returned cleanup stops
// the hub and closes every connection.
func Bootstrap(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	if cfg.App.Warmup {
		start := time.Now()
		if err := c.Warmup(ctx); err != nil {
			logger.Warn().Err(err).Msg("warmup failed, requests will report the feature as unavailable")
		} else {
			logger.Info().Dur("took", time.Since(start)).Msg("warmup complete")
		}
	}

	cleanup := func() error {
		stopHub()
		return c.Close()
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger zerolog.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger.With().Str("component", "http").Logger()).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(c.Config.JWT.AccessSecret, c.Config.JWT.AccessExpiresIn)
	var auth fiber.Handler
	if strings.TrimSpace(c.Config.JWT.AccessSecret) != "" {
		auth = middleware.NewAuthMiddleware(jwtSvc).Middleware()
	}

	checks := map[string]handler.HealthCheck{}
	if c.DB != nil {
		checks["database"] = c.DB.Ping
	}
	if c.Cache.Enabled() {
		checks["redis"] = c.Cache.Ping
	}

	routes.NewRegistry(
		handler.NewHealthHandler(checks),
		ws.NewHandler(c.Hub, c.Logger),
		v1.Handlers{Roadmap: handler.NewRoadmapHandler(c.NextSkill, c.Roadmap, auth)},
	).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
