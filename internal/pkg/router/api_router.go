package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/pennywiseapp/pennywise/app/controllers"
	"github.com/pennywiseapp/pennywise/internal/pkg/cache"
	"github.com/pennywiseapp/pennywise/internal/pkg/env"
	"github.com/pennywiseapp/pennywise/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// public
	v1.Post("/auth/signup", controllers.HandleSignup)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Get("/plans", controllers.HandleListPlans)

	// authenticated
	auth := v1.Group("", middleware.TokenAuthMiddleware())
	auth.Post("/auth/logout", controllers.HandleLogout)

	auth.Post("/subscriptions/ensure", controllers.HandleEnsureSubscription)
	auth.Post("/subscriptions/upgrade", controllers.HandleChangePlan)
	auth.Get("/subscriptions/current", controllers.HandleCurrentSubscription)

	auth.Post("/expenses", controllers.HandleCreateExpense)
	auth.Get("/expenses", controllers.HandleListExpenses)
	auth.Get("/expenses/summary", controllers.HandleExpenseSummary)
	auth.Get("/expenses/:id", controllers.HandleGetExpense)
	auth.Put("/expenses/:id", controllers.HandleUpdateExpense)
	auth.Delete("/expenses/:id", controllers.HandleDeleteExpense)

	auth.Get("/exports/csv", controllers.HandleExportCSV)
	auth.Get("/exports/pdf", controllers.HandleExportPDF)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Uses database 1, the cache client keeps database 0.
func newLimiterStorage() fiber.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}
