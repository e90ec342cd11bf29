package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Flights  *FlightHandler
	Bookings *BookingHandler
	Payments *PaymentHandler
	Tickets  *TicketHandler
	Health   *HealthHandler
}

func NewRouter(h Handlers, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), RequestLogger(log), Recovery(log))

	h.Health.Register(router.Group(""))

	v1 := router.Group("/api/v1")
	h.Flights.Register(v1.Group("/flights"))
	h.Bookings.Register(v1.Group("/bookings"))
	h.Payments.Register(v1.Group("/payments"))
	h.Tickets.Register(v1.Group("/tickets"))
	return router
}
