//go:build !cli
// +build !cli

package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"posbridge.GO/api"
	graphqlApi "posbridge.GO/api/graphql"
	_ "posbridge.GO/api/order"
	_ "posbridge.GO/api/sync"
	_ "posbridge.GO/api/webhook"
	"posbridge.GO/config"
	"posbridge.GO/core/events"
	"posbridge.GO/notify"
	"posbridge.GO/service/fulfillment"
)

func getAuthMiddleware() echo.MiddlewareFunc {
	skipPaths := config.GetAuthSkipperPaths()
	skipper := func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
	authType := os.Getenv("AUTH_TYPE")
	switch authType {
	case "key":
		apiKey := os.Getenv("API_KEY")
		return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == apiKey, nil
			},
			Skipper: skipper,
		})
	default:
		return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Validator: func(username, password string, c echo.Context) (bool, error) {
				return username == os.Getenv("API_USER") && password == os.Getenv("API_PASS"), nil
			},
			Skipper: skipper,
		})
	}
}

func main() {
	config.LoadEnv()
	config.LoadAppConfig()

	config.InitRedis()
	redisStatus := "Redis not configured, per-key locks run in-process."
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil
			redisStatus = "Redis configured but not reachable, per-key locks run in-process."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")

	// Fulfillment pipeline: webhook -> bus -> machine -> dispatcher.
	dispatcher := fulfillment.NewDispatcher(db, notify.DefaultSenders(), 128)
	dispatcher.Start()
	defer dispatcher.Stop()
	fulfillment.NewMachine(db, dispatcher).SubscribeTo(events.Default())

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, echo.Map{"status": "ok"})
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(getAuthMiddleware())
	api.ApplyModules(apiGroup, db)

	graphqlApi.RegisterGraphQLRoutes(e, db)
	api.ApplyRoutes(e, db)

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
