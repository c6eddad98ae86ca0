// Standalone GraphQL server: run with go run ./cmd/graphql
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dappstore.GO/api"
	graphqlApi "dappstore.GO/api/graphql"
	"dappstore.GO/app"
	"dappstore.GO/config"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatal("startup: ", err)
	}
	defer a.Close()
	if err := a.Catalog.Warm(context.Background()); err != nil {
		log.Fatal("loading registry documents: ", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler(a.Log)
	e.Use(middleware.Recover())
	graphqlApi.RegisterGraphQLRoutes(e, a.Services())

	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "speed", "doom"}
	fig := figure.NewFigure("dApp Store GQL", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	log.Printf("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", cfg.Port, cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
