// Standalone GraphQL server — run with: go run ./cmd/graphql
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"posbridge.GO/api"
	graphqlApi "posbridge.GO/api/graphql"
	"posbridge.GO/config"
)

func main() {
	_ = godotenv.Load()
	config.LoadAppConfig()

	db, err := config.NewDB()
	if err != nil {
		log.Fatal("db:", err)
	}

	e := echo.New()
	graphqlApi.RegisterGraphQLRoutes(e, db)
	api.ApplyRoutes(e, db)

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d", "puffy", "rectangles"}
	fig := figure.NewFigure("posbridge GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", port, port)
	e.Logger.Fatal(e.Start(":" + port))
}
