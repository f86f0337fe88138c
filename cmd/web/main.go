package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"conference-booking/client"
	"conference-booking/config"
	applogger "conference-booking/logger"
	"conference-booking/web"
)

func main() {
	cfg := config.Load()
	log := applogger.New(cfg.LogLevel)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(logger.New())

	web.New(client.New(cfg.APIBaseURL, log), log).SetupRoutes(app)

	log.WithFields(logrus.Fields{
		"port":    cfg.WebPort,
		"backend": cfg.APIBaseURL,
	}).Info("booking page listening")
	log.Fatal(app.Listen(":" + cfg.WebPort))
}
