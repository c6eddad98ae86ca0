// Package status reports how one dApp or store looks across the cached
// registry document, the search index and the submission ledger.
package status

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"dappstore.GO/api"
	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
)

func init() {
	api.RegisterModule(RegisterStatusRoutes)
}

// DAppStatus compares the registry and indexed copies of one dApp.
type DAppStatus struct {
	DAppID            string              `json:"dappId"`
	InRegistry        bool                `json:"inRegistry"`
	Listed            bool                `json:"listed"`
	Indexed           bool                `json:"indexed"`
	InSync            bool                `json:"inSync"`
	RegistryCheckedAt *time.Time          `json:"registryCheckedAt,omitempty"`
	Submissions       []entity.Submission `json:"submissions"`
}

// StoreStatus compares the stores document and indexed copies of one store.
type StoreStatus struct {
	Key             string              `json:"key"`
	InDocument      bool                `json:"inDocument"`
	Indexed         bool                `json:"indexed"`
	InSync          bool                `json:"inSync"`
	StoresCheckedAt *time.Time          `json:"storesCheckedAt,omitempty"`
	Submissions     []entity.Submission `json:"submissions"`
}

// RegisterStatusRoutes mounts /api/status. The three sources are read in parallel.
func RegisterStatusRoutes(apiGroup *echo.Group, s *api.Services) {
	if s.Catalog == nil || s.Finder == nil || s.Ledger == nil {
		return
	}
	g := apiGroup.Group("/status")

	// GET /api/status/dapps/:dappId
	g.GET("/dapps/:dappId", func(c echo.Context) error {
		start := time.Now()
		ctx := c.Request().Context()
		id := c.Param("dappId")
		out := DAppStatus{DAppID: id}

		var canonical, indexed *entity.DApp
		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			reg, at, err := s.Catalog.Registry.Fetch(ctx)
			if err != nil {
				return err
			}
			out.RegistryCheckedAt = &at
			if i := reg.FindDApp(id); i >= 0 {
				canonical = &reg.DApps[i]
			}
			return nil
		})
		eg.Go(func() error {
			d, err := s.Finder.ByID(ctx, id)
			if errors.Is(err, errs.ErrNotFound) {
				return nil
			}
			indexed = d
			return err
		})
		eg.Go(func() error {
			subs, err := s.Ledger.FindByResource(ctx, id)
			out.Submissions = subs
			return err
		})
		if err := eg.Wait(); err != nil {
			return err
		}

		if canonical == nil && indexed == nil && len(out.Submissions) == 0 {
			return errs.E(errs.KindNotFound, "api.status.dapp", "dApp %s is unknown", id)
		}
		out.InRegistry = canonical != nil
		out.Listed = canonical != nil && canonical.IsListed
		out.Indexed = indexed != nil
		out.InSync = sameJSON(canonical, indexed)
		if out.Submissions == nil {
			out.Submissions = []entity.Submission{}
		}
		setDuration(c, start)
		return c.JSON(http.StatusOK, out)
	})

	// GET /api/status/stores/:key
	g.GET("/stores/:key", func(c echo.Context) error {
		start := time.Now()
		ctx := c.Request().Context()
		key := c.Param("key")
		out := StoreStatus{Key: key}

		var canonical, indexed *entity.Store
		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			doc, at, err := s.Catalog.Stores.Fetch(ctx)
			if err != nil {
				return err
			}
			out.StoresCheckedAt = &at
			if i := doc.FindStore(key); i >= 0 {
				canonical = &doc.DAppStores[i]
			}
			return nil
		})
		eg.Go(func() error {
			st, err := s.Finder.Store(ctx, key)
			if errors.Is(err, errs.ErrNotFound) {
				return nil
			}
			indexed = st
			return err
		})
		eg.Go(func() error {
			subs, err := s.Ledger.FindByResource(ctx, key)
			out.Submissions = subs
			return err
		})
		if err := eg.Wait(); err != nil {
			return err
		}

		if canonical == nil && indexed == nil && len(out.Submissions) == 0 {
			return errs.E(errs.KindNotFound, "api.status.store", "store %s is unknown", key)
		}
		out.InDocument = canonical != nil
		out.Indexed = indexed != nil
		out.InSync = sameJSON(canonical, indexed)
		if out.Submissions == nil {
			out.Submissions = []entity.Submission{}
		}
		setDuration(c, start)
		return c.JSON(http.StatusOK, out)
	})
}

func sameJSON[T any](a, b *T) bool {
	if a == nil || b == nil {
		return false
	}
	x, err1 := json.Marshal(a)
	y, err2 := json.Marshal(b)
	return err1 == nil && err2 == nil && string(x) == string(y)
}

func setDuration(c echo.Context, start time.Time) {
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
}
