package html

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"dappstore.GO/api"
	"dappstore.GO/core/errs"
	"dappstore.GO/html/parts"
)

// RegisterDAppHTMLRoutes registers GET /dapps/:dappId.
func RegisterDAppHTMLRoutes(e *echo.Echo, s *api.Services) {
	if s.Finder == nil {
		return
	}
	renderer(e)
	e.GET("/dapps/:dappId", func(c echo.Context) error {
		d, err := s.Finder.ByID(c.Request().Context(), c.Param("dappId"))
		if errors.Is(err, errs.ErrNotFound) {
			return c.String(http.StatusNotFound, "dApp not found")
		}
		if err != nil {
			return err
		}
		return c.Render(http.StatusOK, "dapp.html", map[string]interface{}{
			"Title":       d.Name + " - dApp Store",
			"DApp":        d,
			"CriticalCSS": parts.CriticalCSS(),
		})
	})
}
