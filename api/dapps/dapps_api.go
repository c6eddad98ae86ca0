package dapps

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dappstore.GO/api"
	"dappstore.GO/core/errs"
	"dappstore.GO/service/registry"
)

func init() {
	api.RegisterModule(RegisterDAppRoutes)
}

// RegisterDAppRoutes mounts the public dApp read endpoints.
func RegisterDAppRoutes(apiGroup *echo.Group, s *api.Services) {
	apiGroup.GET("/categories", categories)
	if s.Finder == nil {
		return
	}
	h := &handler{find: s.Finder}

	g := apiGroup.Group("/dapps")
	g.GET("/search", h.search)
	g.POST("/search", h.search)
	g.GET("/autocomplete", h.autocomplete)
	g.GET("/count", h.count)
	g.GET("/scroll", h.scroll)
	g.POST("/scroll", h.scroll)
	g.DELETE("/scroll/:scrollId", h.closeScroll)
	g.GET("/owner/:address", h.byOwner)
	g.GET("/:dappId", h.byID)
}

type handler struct {
	find api.Finder
}

func (h *handler) search(c echo.Context) error {
	text, opts, err := api.SearchRequest(c)
	if err != nil {
		return err
	}
	page, err := h.find.Search(c.Request().Context(), text, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *handler) autocomplete(c echo.Context) error {
	text, opts, err := api.SearchRequest(c)
	if err != nil {
		return err
	}
	page, err := h.find.Autocomplete(c.Request().Context(), text, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *handler) count(c echo.Context) error {
	_, opts, err := api.SearchRequest(c)
	if err != nil {
		return err
	}
	n, err := h.find.Count(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

func (h *handler) scroll(c echo.Context) error {
	text, opts, err := api.SearchRequest(c)
	if err != nil {
		return err
	}
	page, err := h.find.Scroll(c.Request().Context(), text, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *handler) closeScroll(c echo.Context) error {
	if err := h.find.CloseScroll(c.Request().Context(), c.Param("scrollId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) byOwner(c echo.Context) error {
	_, opts, err := api.SearchRequest(c)
	if err != nil {
		return err
	}
	page, err := h.find.ByOwner(c.Request().Context(), c.Param("address"), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *handler) byID(c echo.Context) error {
	d, err := h.find.ByID(c.Request().Context(), c.Param("dappId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func categories(c echo.Context) error {
	cats, err := registry.Categories()
	if err != nil {
		return errs.Wrap(errs.KindInternal, "api.categories", err, "decoding bundled categories")
	}
	return c.JSON(http.StatusOK, cats)
}
