package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-booking/model"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestCreateBookingSendsRequest(t *testing.T) {
	var (
		got       model.BookingRequest
		method    string
		path      string
		mediaType string
		requestID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		mediaType = r.Header.Get("Content-Type")
		requestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&got)
		respond(http.StatusCreated, `{"message":"ok"}`)(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", quietLogger())
	message, err := c.CreateBooking(context.Background(), model.BookingRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Tickets: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", message)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/book", path)
	assert.Equal(t, "application/json", mediaType)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, model.BookingRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Tickets: 2}, got)
}

func TestCreateBookingResponses(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
		expectedErr     string
	}{
		{
			name:            "created with message",
			status:          http.StatusCreated,
			body:            `{"message":"Thank you Ada Lovelace for booking 2 tickets!"}`,
			expectedMessage: "Thank you Ada Lovelace for booking 2 tickets!",
		},
		{
			name:            "success without message",
			status:          http.StatusOK,
			body:            `{}`,
			expectedMessage: "Booking successful",
		},
		{
			name:        "backend error text wins",
			status:      http.StatusBadRequest,
			body:        `{"error":"invalid","message":"ignored"}`,
			expectedErr: "invalid",
		},
		{
			name:        "backend message when no error",
			status:      http.StatusInternalServerError,
			body:        `{"message":"boom"}`,
			expectedErr: "boom",
		},
		{
			name:        "fallback for empty body",
			status:      http.StatusBadGateway,
			body:        ``,
			expectedErr: "Booking failed with status 502",
		},
		{
			name:        "fallback for non-json body",
			status:      http.StatusServiceUnavailable,
			body:        `upstream unavailable`,
			expectedErr: "Booking failed with status 503",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(respond(tt.status, tt.body))
			defer srv.Close()

			message, err := New(srv.URL, quietLogger()).CreateBooking(context.Background(), model.BookingRequest{})

			if tt.expectedErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedMessage, message)
				return
			}

			var reqErr *RequestFailedError
			require.True(t, errors.As(err, &reqErr), "expected RequestFailedError, got %v", err)
			assert.Equal(t, tt.expectedErr, reqErr.Error())
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Empty(t, message)
		})
	}
}

func TestListBookings(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		srv := httptest.NewServer(respond(http.StatusOK, `[]`))
		defer srv.Close()

		bookings, err := New(srv.URL, quietLogger()).ListBookings(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, bookings)
		assert.Empty(t, bookings)
	})

	t.Run("one booking", func(t *testing.T) {
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			respond(http.StatusOK, `[{"ID":7,"FirstName":"Ada","LastName":"Lovelace","Email":"ada@example.com",`+
				`"NumberOfTickets":2,"ConferenceID":1,"Conference":{"ID":1,"Name":"Go Conference"}}]`)(w, r)
		}))
		defer srv.Close()

		bookings, err := New(srv.URL+"/api", quietLogger()).ListBookings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/api/bookings", path)
		require.Len(t, bookings, 1)
		assert.Equal(t, uint(7), bookings[0].ID)
		assert.Equal(t, "Ada", bookings[0].FirstName)
		assert.Equal(t, "Lovelace", bookings[0].LastName)
		assert.Equal(t, "ada@example.com", bookings[0].Email)
		assert.Equal(t, uint(2), bookings[0].NumberOfTickets)
		assert.Equal(t, "Go Conference", bookings[0].Conference.Name)
	})

	t.Run("backend error", func(t *testing.T) {
		srv := httptest.NewServer(respond(http.StatusInternalServerError, `{"error":"Failed to fetch bookings"}`))
		defer srv.Close()

		_, err := New(srv.URL, quietLogger()).ListBookings(context.Background())
		var reqErr *RequestFailedError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
		assert.Equal(t, "Failed to fetch bookings", reqErr.Message)
	})

	t.Run("status fallback", func(t *testing.T) {
		srv := httptest.NewServer(respond(http.StatusNotFound, `not here`))
		defer srv.Close()

		_, err := New(srv.URL, quietLogger()).ListBookings(context.Background())
		assert.EqualError(t, err, "Failed to fetch bookings (status 404)")
	})
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusOK, `[]`))
	url := srv.URL
	srv.Close()

	c := New(url, quietLogger())

	_, err := c.CreateBooking(context.Background(), model.BookingRequest{})
	var reqErr *RequestFailedError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Something went wrong while booking", reqErr.Message)
	assert.NotNil(t, errors.Unwrap(err))

	_, err = c.ListBookings(context.Background())
	assert.EqualError(t, err, "Something went wrong while fetching bookings")
}

func TestCanceledContext(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		respond(http.StatusOK, `[]`)(w, r)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, quietLogger()).ListBookings(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
