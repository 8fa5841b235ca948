package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pennywiseapp/pennywise/app/controllers"
	"github.com/pennywiseapp/pennywise/app/repository"
	"github.com/pennywiseapp/pennywise/internal/pkg/cache"
	"github.com/pennywiseapp/pennywise/internal/pkg/database"
	"github.com/pennywiseapp/pennywise/internal/pkg/env"
	"github.com/pennywiseapp/pennywise/internal/pkg/metrics/counter"
	"github.com/pennywiseapp/pennywise/internal/pkg/router"
	"github.com/pennywiseapp/pennywise/internal/pkg/subscription"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	controllers.InitializeSubscriptionController(subscription.NewServiceFromDB(database.GetDB()))

	counter.StartFlusher(context.Background(), time.Minute, func(err error) {
		log.Printf("export counter flush failed: %v", err)
	})

	app := fiber.New(fiber.Config{
		AppName: "PennyWise",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
