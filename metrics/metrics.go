package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics groups the booking API counters.
type Metrics struct {
	BookingsCreated  prometheus.Counter
	BookingsRejected *prometheus.CounterVec
	TicketsBooked    prometheus.Counter
	RemainingTickets prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "booking_api_bookings_created_total",
			Help: "Total number of stored bookings",
		}),

		BookingsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_api_bookings_rejected_total",
			Help: "Total number of rejected booking requests by reason",
		}, []string{"reason"}),

		TicketsBooked: factory.NewCounter(prometheus.CounterOpts{
			Name: "booking_api_tickets_booked_total",
			Help: "Total number of booked tickets",
		}),

		RemainingTickets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "booking_api_remaining_tickets",
			Help: "Remaining tickets of the conference after the last change",
		}),
	}
}

// Handler exposes the gatherer in the Prometheus text format on a fiber route.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
