package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"conference-booking/database"
	apierrors "conference-booking/errors"
)

func (h *Handler) GetConference(c *fiber.Ctx) error {
	conference, err := h.store.GetConference(c.UserContext(), h.conferenceID)
	if errors.Is(err, database.ErrNotFound) {
		return apierrors.RaiseNotFoundError(c, "Conference not found")
	} else if err != nil {
		h.logger(c).WithError(err).Error("conference lookup failed")
		return apierrors.RaiseInternalServerError(c, "Conference not found")
	}
	return c.JSON(conference)
}

// UpdateConferenceTickets changes the conference size. Admin only.
func (h *Handler) UpdateConferenceTickets(c *fiber.Ctx) error {
	type ticketsUpdate struct {
		TotalTickets uint `json:"total_tickets"`
	}

	update := new(ticketsUpdate)
	if err := c.BodyParser(update); err != nil {
		return apierrors.RaiseBadRequestError(c, "Invalid JSON")
	}
	if update.TotalTickets == 0 {
		return apierrors.RaiseBadRequestError(c, "conference cannot have zero tickets for distribution")
	}

	conference, err := h.store.UpdateTotalTickets(c.UserContext(), h.conferenceID, update.TotalTickets)
	switch {
	case errors.Is(err, database.ErrTicketsAlreadyBooked):
		return apierrors.RaiseBadRequestError(c,
			fmt.Sprintf("cannot assign %v as total tickets, more tickets already booked", update.TotalTickets))
	case errors.Is(err, database.ErrNotFound):
		return apierrors.RaiseNotFoundError(c, "Conference not found")
	case err != nil:
		h.logger(c).WithError(err).Error("conference update failed")
		return apierrors.RaiseInternalServerError(c, "database error")
	}

	h.metrics.RemainingTickets.Set(float64(conference.RemainingTickets))
	return c.JSON(conference)
}

// GetDebug dumps the conference and all bookings. Admin only.
func (h *Handler) GetDebug(c *fiber.Ctx) error {
	ctx := c.UserContext()

	conference, confErr := h.store.GetConference(ctx, h.conferenceID)
	bookings, bookingsErr := h.store.ListBookings(ctx)

	return c.JSON(fiber.Map{
		"conference_error": fmt.Sprintf("%v", confErr),
		"conference":       conference,
		"bookings_error":   fmt.Sprintf("%v", bookingsErr),
		"bookings_count":   len(bookings),
		"bookings":         bookings,
	})
}
