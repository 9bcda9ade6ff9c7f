package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/prognoza/forecast-platform/api-gateway/config"
	"github.com/prognoza/forecast-platform/api-gateway/health"
	"github.com/prognoza/forecast-platform/api-gateway/middleware"
	"github.com/prognoza/forecast-platform/api-gateway/proxy"
)

// RouteDefinition maps a path prefix to its edge requirements.
type RouteDefinition struct {
	Prefix       string
	Description  string
	RequireAuth  bool
	RequireAdmin bool
}

// Routes lists the backend prefixes the gateway exposes.
var Routes = []RouteDefinition{
	{
		Prefix:      "/api/auth",
		Description: "Authentication endpoints (login, register)",
	},
	{
		Prefix:      "/api/upload/status",
		Description: "Upload capability discovery",
	},
	{
		Prefix:      "/api/users",
		Description: "Profile management",
		RequireAuth: true,
	},
	{
		Prefix:       "/api/admin",
		Description:  "User administration",
		RequireAuth:  true,
		RequireAdmin: true,
	},
	{
		Prefix:      "/api/organizations",
		Description: "Organization and location management",
		RequireAuth: true,
	},
	{
		Prefix:      "/api/inventory",
		Description: "Products and stock operations",
		RequireAuth: true,
	},
	{
		Prefix:      "/api/forecast",
		Description: "Prediction runs, dashboard and history",
		RequireAuth: true,
	},
	{
		Prefix:      "/api/upload",
		Description: "Operation file import",
		RequireAuth: true,
	},
}

// SetupRoutes wires health endpoints, the route listing and the
// proxied backend prefixes.
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, redisClient *redis.Client) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckBackend(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		return c.JSON(healthChecker.CheckBackend(ctx))
	})

	app.Get("/stats/balancer", func(c *fiber.Ctx) error {
		return c.JSON(reverseProxy.Balancer().Stats())
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Forecast Platform Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	// Prediction runs are throttled harder than the global limit and
	// flush cached forecast reads on success.
	if redisClient != nil {
		app.Post("/api/forecast/predict",
			middleware.AuthMiddleware(),
			middleware.PredictRateLimiter(redisClient),
			predictHandler(reverseProxy, redisClient),
		)
	}

	for _, route := range Routes {
		registerProxiedRoutes(app, route, reverseProxy)
	}
}

func predictHandler(reverseProxy *proxy.ReverseProxy, redisClient *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := reverseProxy.Forward(c)

		if err == nil && c.Response().StatusCode() == fiber.StatusOK {
			if invErr := middleware.InvalidateForecastCache(redisClient); invErr != nil {
				// Stale cache entries expire via TTL anyway.
				_ = invErr
			}
		}

		return err
	}
}

func registerProxiedRoutes(app *fiber.App, route RouteDefinition, reverseProxy *proxy.ReverseProxy) {
	handler := func(c *fiber.Ctx) error {
		return reverseProxy.Forward(c)
	}

	var middlewares []fiber.Handler

	if route.RequireAdmin {
		middlewares = append(middlewares, middleware.AuthMiddleware(), middleware.AdminMiddleware())
	} else if route.RequireAuth {
		middlewares = append(middlewares, middleware.AuthMiddleware())
	}

	group := app.Group(route.Prefix, middlewares...)
	group.All("/*", handler)

	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}
