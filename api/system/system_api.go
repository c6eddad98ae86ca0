package system

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dappstore.GO/api"
)

func init() {
	api.RegisterRoute(RegisterSystemRoutes)
}

// RegisterSystemRoutes mounts /health and /metrics on the root router.
func RegisterSystemRoutes(e *echo.Echo, s *api.Services) {
	e.GET("/health", func(c echo.Context) error {
		body := echo.Map{"status": "ok"}
		if s.Catalog != nil {
			body["registryCheckedAt"] = stamp(s.Catalog.Registry.LastCheckedAt())
			body["storesCheckedAt"] = stamp(s.Catalog.Stores.LastCheckedAt())
		}
		return c.JSON(http.StatusOK, body)
	})
	if s.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}
}

func stamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
