// Package custom shows the extension points: a GraphQL _extension resolver,
// a CLI command, a cron job and an HTTP route, all registered from init.
package custom

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"dappstore.GO/api"
	"dappstore.GO/cmd"
	"dappstore.GO/core/errs"
	"dappstore.GO/cron"
	gqlregistry "dappstore.GO/graphql/registry"
	"dappstore.GO/service/registry"
)

func init() {
	// _extension(name: "subCategories", args: "{\"category\":\"games\"}")
	gqlregistry.Register("subCategories", func(ctx context.Context, args map[string]any) (any, error) {
		name, _ := args["category"].(string)
		return SubCategories(name)
	})

	cmd.Register(&cobra.Command{
		Use:   "categories:list",
		Short: "Print the bundled category taxonomy",
		RunE: func(c *cobra.Command, args []string) error {
			cats, err := registry.Categories()
			if err != nil {
				return err
			}
			for _, cat := range cats {
				fmt.Fprintf(c.OutOrStdout(), "%s: %s\n", cat.Name, strings.Join(cat.SubCategories, ", "))
			}
			return nil
		},
	})

	// run on demand: cron:start --job categories-check
	cron.Register("categories-check", cron.Job{Run: func(context.Context) error {
		cats, err := registry.Categories()
		if err != nil {
			return err
		}
		if len(cats) == 0 {
			return errs.E(errs.KindInternal, "custom.categories", "bundled taxonomy is empty")
		}
		return nil
	}})

	api.RegisterGET("/api/categories/:category", func(c echo.Context) error {
		subs, err := SubCategories(c.Param("category"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"category": c.Param("category"), "subCategory": subs})
	})
}

// SubCategories lists the sub categories of one bundled category.
func SubCategories(category string) ([]string, error) {
	cats, err := registry.Categories()
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, category) {
			return c.SubCategories, nil
		}
	}
	return nil, errs.E(errs.KindNotFound, "custom.subcategories", "unknown category %q", category)
}
