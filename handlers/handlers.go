package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"conference-booking/database"
	"conference-booking/metrics"
)

type Handler struct {
	store        database.Store
	conferenceID uint
	signKey      []byte
	metrics      *metrics.Metrics
	log          *logrus.Logger
}

// New wires the handlers to the store and to the conference that receives
// every booking.
func New(store database.Store, conferenceID uint, signKey []byte, m *metrics.Metrics, log *logrus.Logger) *Handler {
	return &Handler{
		store:        store,
		conferenceID: conferenceID,
		signKey:      signKey,
		metrics:      m,
		log:          log,
	}
}

func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) logger(c *fiber.Ctx) *logrus.Entry {
	entry := h.log.WithField("path", c.Path())
	if requestID, ok := c.Locals("requestid").(string); ok {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}
