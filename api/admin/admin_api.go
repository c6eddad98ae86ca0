// Package admin exposes index lifecycle, cache and ledger endpoints. They sit
// behind the /api auth middleware.
package admin

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dappstore.GO/api"
	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/index"
)

func init() {
	api.RegisterModule(RegisterAdminRoutes)
}

type liveBody struct {
	Index string `json:"index"`
}

// RegisterAdminRoutes mounts /api/index, /api/cache and /api/submissions.
func RegisterAdminRoutes(apiGroup *echo.Group, s *api.Services) {
	if s.Indexes != nil {
		ix := s.Indexes
		g := apiGroup.Group("/index/:kind")

		g.POST("", func(c echo.Context) error {
			kind, err := index.ParseKind(c.Param("kind"))
			if err != nil {
				return err
			}
			ctx := c.Request().Context()
			name, err := ix.Create(ctx, kind)
			if err != nil {
				return err
			}
			n, err := ix.Load(ctx, kind, name)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusCreated, echo.Map{"index": name, "documents": n})
		})

		g.POST("/live", func(c echo.Context) error {
			kind, err := index.ParseKind(c.Param("kind"))
			if err != nil {
				return err
			}
			var body liveBody
			if err := c.Bind(&body); err != nil {
				return api.BadRequest("api.index.live", err)
			}
			if body.Index == "" {
				return errs.E(errs.KindValidation, "api.index.live", "index is required")
			}
			if err := ix.GoLive(c.Request().Context(), kind, body.Index); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, echo.Map{"index": body.Index, "live": true})
		})

		g.POST("/reindex", func(c echo.Context) error {
			kind, err := index.ParseKind(c.Param("kind"))
			if err != nil {
				return err
			}
			name, err := ix.Reindex(c.Request().Context(), kind)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, echo.Map{"index": name, "live": true})
		})
	}

	if s.Catalog != nil {
		cat := s.Catalog
		apiGroup.POST("/cache/invalidate", func(c echo.Context) error {
			ctx := c.Request().Context()
			if err := cat.Invalidate(ctx); err != nil {
				return errs.Wrap(errs.KindUpstream, "api.cache.invalidate", err, "invalidating shared cache")
			}
			if err := cat.Warm(ctx); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, echo.Map{
				"registry": cat.Registry.LastCheckedAt(),
				"stores":   cat.Stores.LastCheckedAt(),
			})
		})
	}

	if s.Ledger != nil {
		ledger := s.Ledger
		apiGroup.GET("/submissions", func(c echo.Context) error {
			ctx := c.Request().Context()
			if res := c.QueryParam("resource"); res != "" {
				list, err := ledger.FindByResource(ctx, res)
				if err != nil {
					return errs.Wrap(errs.KindInternal, "api.submissions", err, "reading ledger")
				}
				return c.JSON(http.StatusOK, orEmpty(list))
			}
			who := c.QueryParam("githubId")
			if who == "" {
				return errs.E(errs.KindValidation, "api.submissions", "githubId or resource is required")
			}
			limit, _ := strconv.Atoi(c.QueryParam("limit"))
			list, err := ledger.FindBySubmitter(ctx, who, limit)
			if err != nil {
				return errs.Wrap(errs.KindInternal, "api.submissions", err, "reading ledger")
			}
			return c.JSON(http.StatusOK, orEmpty(list))
		})
	}
}

func orEmpty(list []entity.Submission) []entity.Submission {
	if list == nil {
		return []entity.Submission{}
	}
	return list
}
