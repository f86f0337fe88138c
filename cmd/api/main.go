package main

import (
	"context"
	"crypto/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"conference-booking/config"
	"conference-booking/database"
	apierrors "conference-booking/errors"
	"conference-booking/handlers"
	"conference-booking/logger"
	"conference-booking/metrics"
	"conference-booking/router"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := database.Open(ctx, cfg, log)
	if err != nil {
		cancel()
		log.WithError(err).Fatal("failed to open store")
	}
	conference, err := database.Seed(ctx, store, cfg, log)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to seed store")
	}

	signKey := []byte(os.Getenv("SIGN"))
	if len(signKey) == 0 {
		log.Warn("SIGN is not set, using a random signing key; admin tokens will not survive a restart")
		signKey = make([]byte, 32)
		if _, err := rand.Read(signKey); err != nil {
			log.WithError(err).Fatal("cannot generate signing key")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)
	m.RemainingTickets.Set(float64(conference.RemainingTickets))

	app := fiber.New(fiber.Config{
		ErrorHandler:          apierrors.Handler,
		DisableStartupMessage: true,
	})
	router.SetupRoutes(app, handlers.New(store, conference.ID, signKey, m, log), router.Options{
		AllowOrigins: cfg.AllowOrigins,
		SignKey:      signKey,
		Gatherer:     reg,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("booking API listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("server stopped")
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := store.Close(closeCtx); err != nil {
		log.WithError(err).Error("closing store failed")
	}
}
