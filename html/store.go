package html

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dappstore.GO/api"
	"dappstore.GO/core/errs"
	"dappstore.GO/html/parts"
	"dappstore.GO/service/search"
)

// RegisterStoreHTMLRoutes registers GET /stores/:key, the store's dApp
// listing with banned dApps hidden and its enrich overlays applied.
func RegisterStoreHTMLRoutes(e *echo.Echo, s *api.Services) {
	if s.Finder == nil {
		return
	}
	renderer(e)
	e.GET("/stores/:key", func(c echo.Context) error {
		ctx := c.Request().Context()
		store, err := s.Finder.Store(ctx, c.Param("key"))
		if errors.Is(err, errs.ErrNotFound) {
			return c.String(http.StatusNotFound, "Store not found")
		}
		if err != nil {
			return err
		}

		page := 1
		if pStr := c.QueryParam("p"); pStr != "" {
			if p, err := strconv.Atoi(pStr); err == nil && p > 0 {
				page = p
			}
		}
		result, err := s.Finder.StoreView(ctx, store.Key, c.QueryParam("q"), search.Options{Page: page})
		if err != nil {
			return err
		}

		totalPages := result.PageCount
		var pageNumbers []int
		for i := 1; i <= totalPages; i++ {
			pageNumbers = append(pageNumbers, i)
		}
		prevPage := page - 1
		if prevPage < 1 {
			prevPage = 1
		}
		nextPage := page + 1
		if nextPage > totalPages {
			nextPage = totalPages
		}
		return c.Render(http.StatusOK, "store.html", map[string]interface{}{
			"Title":       store.Name + " - dApp Store",
			"Store":       store,
			"DApps":       result.Items,
			"Total":       result.Total,
			"Message":     result.Message,
			"Query":       c.QueryParam("q"),
			"Page":        page,
			"TotalPages":  totalPages,
			"PageNumbers": pageNumbers,
			"PrevPage":    prevPage,
			"NextPage":    nextPage,
			"CriticalCSS": parts.CriticalCSS(),
		})
	})
}
