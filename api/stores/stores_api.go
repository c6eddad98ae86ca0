package stores

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dappstore.GO/api"
)

func init() {
	api.RegisterModule(RegisterStoreRoutes)
}

// RegisterStoreRoutes mounts the public store endpoints. A store's dApp view
// hides its banned dApps and applies its enrich overlays.
func RegisterStoreRoutes(apiGroup *echo.Group, s *api.Services) {
	if s.Finder == nil {
		return
	}
	find := s.Finder
	g := apiGroup.Group("/stores")

	g.GET("", func(c echo.Context) error {
		text, _, err := api.SearchRequest(c)
		if err != nil {
			return err
		}
		list, err := find.Stores(c.Request().Context(), text)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"data": list, "total": len(list)})
	})

	g.GET("/:key", func(c echo.Context) error {
		st, err := find.Store(c.Request().Context(), c.Param("key"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, st)
	})

	view := func(c echo.Context) error {
		text, opts, err := api.SearchRequest(c)
		if err != nil {
			return err
		}
		page, err := find.StoreView(c.Request().Context(), c.Param("key"), text, opts)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, page)
	}
	g.GET("/:key/dapps", view)
	g.POST("/:key/dapps", view)
}
