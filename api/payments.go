package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
	log     logrus.FieldLogger
}

func NewPaymentHandler(service payment.PaymentUseCase, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/pay", h.pay)
	router.GET("/status", h.status)
	router.POST("/status", h.status)
}

func (h *PaymentHandler) pay(c *gin.Context) {
	var input payment.InitiateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, h.log, domain.Validation("invalid request body"))
		return
	}
	input.UserID = userID(c)

	raw, err := h.service.Initiate(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "payment initiated", raw)
}

// statusRequest accepts either a plain transaction id or the gateway's
// server-to-server callback, whose base64 "response" field wraps it.
type statusRequest struct {
	MerchantTransactionID string `json:"merchantTransactionId" form:"merchantTransactionId"`
	Response              string `json:"response" form:"response"`
}

func (h *PaymentHandler) status(c *gin.Context) {
	txnID := strings.TrimSpace(c.Query("merchantTransactionId"))
	if txnID == "" && c.Request.Method == http.MethodPost {
		var req statusRequest
		if err := c.ShouldBind(&req); err == nil {
			txnID = strings.TrimSpace(req.MerchantTransactionID)
			if txnID == "" {
				txnID = callbackTransactionID(req.Response)
			}
		}
	}

	result, err := h.service.VerifyStatus(c.Request.Context(), txnID, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := "payment status checked"
	if result.Ticketed {
		message = "payment verified and ticket issued"
	}
	respond(c, http.StatusOK, message, result)
}

// callbackTransactionID extracts the transaction id from a gateway
// callback. The callback is only a hint; status is always re-fetched.
func callbackTransactionID(encoded string) string {
	if encoded == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	var body struct {
		Data domain.PaymentData `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Data.MerchantTransactionID)
}
