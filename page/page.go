// Package page holds the state of one booking page session: the form, the
// bookings table and the notifications produced by the last action.
package page

import (
	"context"
	"errors"
	"regexp"

	"github.com/sirupsen/logrus"

	"conference-booking/client"
	"conference-booking/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrIncompleteForm = errors.New("Please fill all fields correctly!")
	ErrInvalidEmail   = errors.New("Please enter a valid email")
)

// BookingAPI is the part of the booking client the page needs.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) (string, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

type Notice struct {
	Kind NoticeKind
	Text string
}

type Form struct {
	FirstName string
	LastName  string
	Email     string
	Tickets   int
}

func DefaultForm() Form {
	return Form{Tickets: 1}
}

// Validate is a UX check only; the backend validates again.
func (f Form) Validate() error {
	if f.FirstName == "" || f.LastName == "" || f.Email == "" || f.Tickets <= 0 {
		return ErrIncompleteForm
	}
	if !emailPattern.MatchString(f.Email) {
		return ErrInvalidEmail
	}
	return nil
}

func (f Form) request() model.BookingRequest {
	return model.BookingRequest{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Tickets:   uint(f.Tickets),
	}
}

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

type Page struct {
	api BookingAPI
	log *logrus.Logger

	Form     Form
	Bookings []model.Booking
	Notices  []Notice
	State    State
}

func New(api BookingAPI, log *logrus.Logger) *Page {
	return &Page{
		api:      api,
		log:      log,
		Form:     DefaultForm(),
		Bookings: []model.Booking{},
		State:    StateIdle,
	}
}

// Load fetches the bookings list. On failure the current list is kept and an
// error notice is added.
func (p *Page) Load(ctx context.Context) {
	bookings, err := p.api.ListBookings(ctx)
	if err != nil {
		p.log.WithError(err).Warn("fetching bookings failed")
		p.notify(NoticeError, errorText(err, "Failed to fetch bookings"))
		return
	}
	p.Bookings = bookings
}

// Submit books tickets with the current form. Invalid forms never reach the
// API. On success the form is reset and the list reloaded; on failure the
// form is kept as typed.
func (p *Page) Submit(ctx context.Context) {
	if err := p.Form.Validate(); err != nil {
		p.State = StateFailed
		p.notify(NoticeError, err.Error())
		return
	}

	p.State = StateSubmitting
	message, err := p.api.CreateBooking(ctx, p.Form.request())
	if err != nil {
		p.State = StateFailed
		p.notify(NoticeError, errorText(err, "Booking failed!"))
		return
	}

	p.State = StateSucceeded
	p.notify(NoticeSuccess, message)
	p.Form = DefaultForm()
	p.Load(ctx)
}

func (p *Page) notify(kind NoticeKind, text string) {
	p.Notices = append(p.Notices, Notice{Kind: kind, Text: text})
}

func errorText(err error, fallback string) string {
	var reqErr *client.RequestFailedError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	if err.Error() != "" {
		return err.Error()
	}
	return fallback
}
