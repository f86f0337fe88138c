package database

import (
	"context"
	"errors"

	"conference-booking/model"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrNotEnoughTickets     = errors.New("not enough tickets")
	ErrDuplicateEmail       = errors.New("email already used for a booking")
	ErrTicketsAlreadyBooked = errors.New("total tickets below already booked tickets")
)

// Store persists conferences, their bookings and admin accounts.
//
// BookTickets must store the booking and decrease the conference's remaining
// tickets as a single atomic step: either both happen or neither does.
type Store interface {
	EnsureConference(ctx context.Context, name string, totalTickets uint) (model.Conference, bool, error)
	GetConference(ctx context.Context, id uint) (model.Conference, error)
	UpdateTotalTickets(ctx context.Context, id uint, totalTickets uint) (model.Conference, error)

	BookTickets(ctx context.Context, conferenceID uint, req model.BookingRequest) (model.Booking, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)

	GetUserData(ctx context.Context, login string) (model.UserData, error)
	SaveUserData(ctx context.Context, user model.UserData) error

	Close(ctx context.Context) error
}

// remainingAfterResize recomputes the remaining tickets for a new total,
// keeping the already booked tickets.
func remainingAfterResize(conf model.Conference, totalTickets uint) (uint, error) {
	booked := conf.BookedTickets()
	if totalTickets < booked {
		return 0, ErrTicketsAlreadyBooked
	}
	return totalTickets - booked, nil
}
