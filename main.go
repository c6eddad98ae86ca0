//go:build !cli

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dappstore.GO/api"
	_ "dappstore.GO/api/admin"
	_ "dappstore.GO/api/dapps"
	_ "dappstore.GO/api/graphql"
	_ "dappstore.GO/api/status"
	_ "dappstore.GO/api/stores"
	_ "dappstore.GO/api/submit"
	_ "dappstore.GO/api/system"
	"dappstore.GO/app"
	"dappstore.GO/config"
	"dappstore.GO/core/auth"
	"dappstore.GO/core/registry"
	"dappstore.GO/cron"
	_ "dappstore.GO/custom"
	_ "dappstore.GO/html"
)

// newServer mounts middleware and every registered module on a fresh Echo.
func newServer(s *api.Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler(s.Log)
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(middleware.CORS())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rr := registry.Request(c)
			rr.Set(registry.KeyRequestStart, time.Now())
			c.Response().Before(func() {
				ms := rr.Elapsed().Milliseconds()
				c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(ms, 10))
			})
			return next(c)
		}
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware(s.Config.Auth, s.Identity))
	api.ApplyModules(apiGroup, s)
	api.ApplyRoutes(e, s)
	return e
}

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.Close()

	if err := a.Catalog.Warm(ctx); err != nil {
		log.Fatalf("loading registry documents: %v", err)
	}
	a.ReindexOnChange()

	scheduler, err := cron.Start(ctx, cron.Builtin(a, cfg.Cron), a.Log)
	if err != nil {
		log.Fatalf("cron: %v", err)
	}
	defer scheduler.Stop()

	e := newServer(a.Services())

	fonts := []string{"standard", "slant", "small", "big", "doom", "larry3d", "speed"}
	figure.NewFigure("dApp Store", fonts[rand.Intn(len(fonts))], true).Print()
	fmt.Println()

	go func() {
		a.Log.Info("server running", "port", cfg.Port, "strategy", cfg.Registry.Strategy)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdown(e, a.Log)
}

func shutdown(e *echo.Echo, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
