package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"conference-booking/handlers"
	"conference-booking/metrics"
	"conference-booking/middleware"
)

type Options struct {
	AllowOrigins string
	SignKey      []byte
	Gatherer     prometheus.Gatherer
}

func SetupRoutes(app *fiber.App, h *handlers.Handler, opts Options) {
	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Get("/metrics", metrics.Handler(opts.Gatherer))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	api.Get("/health", h.GetHealth)

	//Login
	api.Post("/login", h.Login)

	//Booking
	api.Post("/book", h.BookTickets)
	api.Get("/bookings", h.GetBookings)

	//Conference
	api.Get("/conference", h.GetConference)

	//Admin
	authorize, requireAdmin := middleware.Authorize(opts.SignKey), middleware.RequireAdmin()
	api.Patch("/conference/tickets", authorize, requireAdmin, h.UpdateConferenceTickets)
	api.Get("/debug", authorize, requireAdmin, h.GetDebug)
}
