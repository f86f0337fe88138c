// Package client talks to the booking API over JSON.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"conference-booking/model"
)

// RequestFailedError is the single failure condition of the client. Message
// is meant to be shown to the user as is.
type RequestFailedError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL string
	log     *logrus.Logger
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, log *logrus.Logger) *Client {
	return &Client{baseURL: baseURL, log: log}
}

type apiResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CreateBooking posts the request and returns the backend's confirmation message.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (string, error) {
	agent := fiber.Post(c.baseURL + "/book").JSON(req)

	code, body, err := c.do(ctx, agent)
	if err != nil {
		return "", &RequestFailedError{Message: "Something went wrong while booking", Err: err}
	}

	var resp apiResponse
	_ = json.Unmarshal(body, &resp)

	if !isSuccess(code) {
		return "", failed(code, resp, fmt.Sprintf("Booking failed with status %d", code))
	}
	if resp.Message == "" {
		return "Booking successful", nil
	}
	return resp.Message, nil
}

// ListBookings returns every booking known to the backend.
func (c *Client) ListBookings(ctx context.Context) ([]model.Booking, error) {
	agent := fiber.Get(c.baseURL + "/bookings")

	code, body, err := c.do(ctx, agent)
	if err != nil {
		return nil, &RequestFailedError{Message: "Something went wrong while fetching bookings", Err: err}
	}

	if !isSuccess(code) {
		var resp apiResponse
		_ = json.Unmarshal(body, &resp)
		return nil, failed(code, resp, fmt.Sprintf("Failed to fetch bookings (status %d)", code))
	}

	bookings := []model.Booking{}
	if err := json.Unmarshal(body, &bookings); err != nil {
		return nil, &RequestFailedError{Status: code, Message: "Failed to fetch bookings", Err: err}
	}
	return bookings, nil
}

func (c *Client) do(ctx context.Context, agent *fiber.Agent) (int, []byte, error) {
	requestID := uuid.NewString()
	agent.Set("X-Request-ID", requestID)

	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, err
	}

	start := time.Now()
	code, body, errs := agent.Bytes()

	entry := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     code,
		"latency":    time.Since(start).String(),
	})
	if len(errs) > 0 {
		err := errors.Join(errs...)
		entry.WithError(err).Warn("booking api call failed")
		return 0, nil, err
	}
	entry.Debug("booking api call")

	return code, body, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func failed(code int, resp apiResponse, fallback string) *RequestFailedError {
	message := resp.Error
	if message == "" {
		message = resp.Message
	}
	if message == "" {
		message = fallback
	}
	return &RequestFailedError{Status: code, Message: message}
}
