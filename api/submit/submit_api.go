// Package submit exposes the registry change workflow. Every endpoint
// authenticates the caller with their own GitHub token and answers with the
// compare URL of the proposed change.
package submit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dappstore.GO/api"
	"dappstore.GO/core/auth"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/commit"
	"dappstore.GO/service/enrich"
)

func init() {
	api.RegisterModule(RegisterSubmitRoutes)
}

type idsBody struct {
	DAppIDs []string `json:"dappIds"`
}

type batchBody struct {
	DApps []entity.DApp `json:"dapps"`
}

type handler struct {
	wf *commit.Workflow
}

// RegisterSubmitRoutes mounts /api/registry.
func RegisterSubmitRoutes(apiGroup *echo.Group, s *api.Services) {
	if s.Workflow == nil || s.Identity == nil {
		return
	}
	h := &handler{wf: s.Workflow}
	g := apiGroup.Group("/registry", auth.Submitter(s.Identity))

	g.POST("/dapps", h.addDApp)
	g.POST("/dapps/batch", h.addDApps)
	g.DELETE("/dapps/:dappId", h.deleteDApp)
	g.POST("/dapps/:dappId/listing", h.toggleListing)
	g.POST("/featured", h.addSection)
	g.DELETE("/featured/:key", h.removeSection)
	g.POST("/featured/:key/dapps", h.toggleSectionDApps)

	g.POST("/stores", h.addStore)
	g.PUT("/stores/:key", h.updateStore)
	g.DELETE("/stores/:key", h.deleteStore)
	g.POST("/stores/:key/banned", h.toggleBanned)
	g.POST("/stores/:key/featured", h.addStoreSection)
	g.DELETE("/stores/:key/featured/:sectionKey", h.removeStoreSection)
	g.POST("/stores/:key/featured/:sectionKey/dapps", h.toggleStoreSectionDApps)
	g.POST("/stores/:key/enrich/:dappId", h.upsertEnrich)
}

func respond(c echo.Context, res *commit.Result, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return api.BadRequest("api.submit", err)
	}
	return nil
}

func (h *handler) addDApp(c echo.Context) error {
	var d entity.DApp
	if err := bind(c, &d); err != nil {
		return err
	}
	res, err := h.wf.AddOrUpdateDApp(c.Request().Context(), auth.SubmitterFrom(c), d)
	return respond(c, res, err)
}

func (h *handler) addDApps(c echo.Context) error {
	var body batchBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.wf.AddDApps(c.Request().Context(), auth.SubmitterFrom(c), body.DApps)
	return respond(c, res, err)
}

func (h *handler) deleteDApp(c echo.Context) error {
	res, err := h.wf.DeleteDApp(c.Request().Context(), auth.SubmitterFrom(c), c.Param("dappId"))
	return respond(c, res, err)
}

func (h *handler) toggleListing(c echo.Context) error {
	res, err := h.wf.ToggleListing(c.Request().Context(), auth.SubmitterFrom(c), c.Param("dappId"))
	return respond(c, res, err)
}

func (h *handler) addSection(c echo.Context) error {
	var s entity.FeaturedSection
	if err := bind(c, &s); err != nil {
		return err
	}
	res, err := h.wf.AddFeaturedSection(c.Request().Context(), auth.SubmitterFrom(c), s)
	return respond(c, res, err)
}

func (h *handler) removeSection(c echo.Context) error {
	res, err := h.wf.RemoveFeaturedSection(c.Request().Context(), auth.SubmitterFrom(c), c.Param("key"))
	return respond(c, res, err)
}

func (h *handler) toggleSectionDApps(c echo.Context) error {
	var body idsBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.wf.ToggleDAppsInFeaturedSection(c.Request().Context(), auth.SubmitterFrom(c), c.Param("key"), body.DAppIDs)
	return respond(c, res, err)
}

func (h *handler) addStore(c echo.Context) error {
	var s entity.Store
	if err := bind(c, &s); err != nil {
		return err
	}
	res, err := h.wf.AddStore(c.Request().Context(), auth.SubmitterFrom(c), s)
	return respond(c, res, err)
}

func (h *handler) updateStore(c echo.Context) error {
	var s entity.Store
	if err := bind(c, &s); err != nil {
		return err
	}
	s.Key = c.Param("key")
	res, err := h.wf.UpdateStore(c.Request().Context(), auth.SubmitterFrom(c), s)
	return respond(c, res, err)
}

func (h *handler) deleteStore(c echo.Context) error {
	res, err := h.wf.DeleteStore(c.Request().Context(), auth.SubmitterFrom(c), c.Param("key"))
	return respond(c, res, err)
}

func (h *handler) toggleBanned(c echo.Context) error {
	var body idsBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.wf.ToggleBannedDApps(c.Request().Context(), auth.SubmitterFrom(c), c.Param("key"), body.DAppIDs)
	return respond(c, res, err)
}

func (h *handler) addStoreSection(c echo.Context) error {
	var s entity.FeaturedSection
	if err := bind(c, &s); err != nil {
		return err
	}
	res, err := h.wf.AddStoreFeaturedSection(c.Request().Context(), auth.SubmitterFrom(c), c.Param("key"), s)
	return respond(c, res, err)
}

func (h *handler) removeStoreSection(c echo.Context) error {
	res, err := h.wf.RemoveStoreFeaturedSection(c.Request().Context(), auth.SubmitterFrom(c), c.Param("key"), c.Param("sectionKey"))
	return respond(c, res, err)
}

func (h *handler) toggleStoreSectionDApps(c echo.Context) error {
	var body idsBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.wf.ToggleDAppsInStoreFeaturedSection(c.Request().Context(), auth.SubmitterFrom(c),
		c.Param("key"), c.Param("sectionKey"), body.DAppIDs)
	return respond(c, res, err)
}

func (h *handler) upsertEnrich(c echo.Context) error {
	var p enrich.Patch
	if err := bind(c, &p); err != nil {
		return err
	}
	res, err := h.wf.UpsertEnrich(c.Request().Context(), auth.SubmitterFrom(c), c.Param("key"), c.Param("dappId"), p)
	return respond(c, res, err)
}
