package api

import (
	"net/http"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service booking.BookingUseCase
	log     logrus.FieldLogger
}

func NewBookingHandler(service booking.BookingUseCase, log logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:pnr", h.details)
}

type createBookingRequest struct {
	ResultIndex string             `json:"ResultIndex"`
	Passengers  []domain.Passenger `json:"Passengers"`
}

func (h *BookingHandler) create(c *gin.Context) {
	user := userID(c)
	if user == "" {
		respondError(c, h.log, domain.Validation("X-User-ID header is required"))
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, domain.Validation("invalid request body"))
		return
	}

	b, err := h.service.Book(c.Request.Context(), booking.BookInput{
		Session:     searchSession(c),
		ResultIndex: req.ResultIndex,
		Passengers:  req.Passengers,
		UserID:      user,
		ClientIP:    c.ClientIP(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "booking created", b)
}

func (h *BookingHandler) details(c *gin.Context) {
	details, err := h.service.Details(c.Request.Context(), c.Param("pnr"), c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "booking details fetched", details)
}
