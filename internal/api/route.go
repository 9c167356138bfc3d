package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	v1 "github.com/truenumber/gameservice/internal/api/v1"
	"github.com/truenumber/gameservice/internal/api/v1/middleware"
	"github.com/truenumber/gameservice/internal/metrics"
	"go.uber.org/zap"
)

const prefixV1 = "api/v1/"

func SetupRoutes(app *fiber.App, handler *v1.Handler, m *metrics.Metrics, logger *zap.Logger, serviceName string) {
	app.Use(requestid.New())
	app.Use(middleware.HealthCheckMiddleware(serviceName))
	app.Use(middleware.HTTPMetricsMiddleware(m, logger))

	app.Get("/ping", handler.Pong)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post(prefixV1+"users", handler.CreateAccount)

	authed := app.Group(prefixV1, middleware.Identity())
	authed.Post("game/play", handler.Play)
	authed.Get("user/balance", handler.GetBalance)
	authed.Get("user/history", handler.GetHistory)
	authed.Get("user/stats", handler.GetStats)

	admin := authed.Group("admin", middleware.RequireAdmin())
	admin.Get("users/:id/balance", handler.GetUserBalance)
	admin.Put("users/:id/balance", handler.SetUserBalance)
	admin.Get("users/:id/history", handler.GetUserHistory)
	admin.Get("history", handler.GetAllHistory)
}
