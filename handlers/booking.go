package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"conference-booking/database"
	apierrors "conference-booking/errors"
	"conference-booking/model"
)

const bookingFailedMessage = "Booking failed. Not enough tickets or duplicate email."

func (h *Handler) BookTickets(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := h.logger(c)

	req := new(model.BookingRequest)
	if err := c.BodyParser(req); err != nil {
		h.reject("invalid_json")
		return apierrors.RaiseBadRequestError(c, "Invalid JSON")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	conference, err := h.store.GetConference(ctx, h.conferenceID)
	if err != nil {
		log.WithError(err).Error("conference lookup failed")
		return apierrors.RaiseInternalServerError(c, "Conference not found")
	}

	if err := nameValidation(req.FirstName, req.LastName); err != nil {
		h.reject("invalid_name")
		return apierrors.RaiseBadRequestError(c, "Invalid name")
	}
	if err := emailValidation(req.Email); err != nil {
		h.reject("invalid_email")
		return apierrors.RaiseBadRequestError(c, "Invalid email")
	}
	if err := ticketsNumberValidation(req.Tickets, conference.RemainingTickets); err != nil {
		h.reject("invalid_tickets")
		log.WithError(err).Info("ticket number rejected")
		return apierrors.RaiseBadRequestError(c, "Invalid number of tickets")
	}

	booking, err := h.store.BookTickets(ctx, conference.ID, *req)
	switch {
	case errors.Is(err, database.ErrNotEnoughTickets), errors.Is(err, database.ErrDuplicateEmail):
		h.reject("conflict")
		log.WithError(err).Info("booking rejected by store")
		return apierrors.RaiseConflictError(c, bookingFailedMessage)
	case err != nil:
		log.WithError(err).Error("booking failed")
		return apierrors.RaiseInternalServerError(c, bookingFailedMessage)
	}

	h.metrics.BookingsCreated.Inc()
	h.metrics.TicketsBooked.Add(float64(booking.NumberOfTickets))
	h.metrics.RemainingTickets.Set(float64(booking.Conference.RemainingTickets))
	log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"tickets":    booking.NumberOfTickets,
		"remaining":  booking.Conference.RemainingTickets,
	}).Info("booking stored")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Thank you %s %s for booking %d tickets!", req.FirstName, req.LastName, req.Tickets),
	})
}

func (h *Handler) GetBookings(c *fiber.Ctx) error {
	bookings, err := h.store.ListBookings(c.UserContext())
	if err != nil {
		h.logger(c).WithError(err).Error("listing bookings failed")
		return apierrors.RaiseInternalServerError(c, "Failed to fetch bookings")
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return c.JSON(bookings)
}

func (h *Handler) reject(reason string) {
	h.metrics.BookingsRejected.WithLabelValues(reason).Inc()
}
