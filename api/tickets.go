package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/service/ticket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TicketHandler struct {
	service ticket.TicketUseCase
	log     logrus.FieldLogger
}

func NewTicketHandler(service ticket.TicketUseCase, log logrus.FieldLogger) *TicketHandler {
	return &TicketHandler{service: service, log: log}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.issue)
}

type issueTicketRequest struct {
	MerchantTransactionID string `json:"merchantTransactionId"`
}

// issue retries ticketing for a paid booking whose ticket failed after
// payment verification.
func (h *TicketHandler) issue(c *gin.Context) {
	var req issueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, domain.Validation("invalid request body"))
		return
	}

	b, err := h.service.Issue(c.Request.Context(), strings.TrimSpace(req.MerchantTransactionID), c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "ticket issued", b)
}
