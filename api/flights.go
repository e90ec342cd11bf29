package api

import (
	"net/http"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/service/fares"
	"github.com/Domenick1991/flightbroker/internal/service/search"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FlightHandler struct {
	search  search.SearchUseCase
	fares   fares.FareUseCase
	session config.SessionConfig
	log     logrus.FieldLogger
}

func NewFlightHandler(search search.SearchUseCase, fares fares.FareUseCase, session config.SessionConfig, log logrus.FieldLogger) *FlightHandler {
	return &FlightHandler{search: search, fares: fares, session: session, log: log}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.searchFlights)
	router.POST("/fare-rule", h.fareRule)
	router.POST("/fare-quote", h.fareQuote)
	router.POST("/ssr", h.ssr)
}

// resultRequest selects one search result for the follow-up calls.
type resultRequest struct {
	ResultIndex string `json:"ResultIndex" form:"ResultIndex"`
}

func (h *FlightHandler) searchFlights(c *gin.Context) {
	var query search.Query
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, h.log, domain.Validation("invalid search parameters"))
		return
	}

	result, err := h.search.Search(c.Request.Context(), query, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	setTraceCookie(c, h.session, result.Session)
	respond(c, http.StatusOK, "flights fetched", result.Flights)
}

func (h *FlightHandler) fareRule(c *gin.Context) {
	req, ok := h.bindResult(c)
	if !ok {
		return
	}
	rule, err := h.fares.FareRule(c.Request.Context(), searchSession(c), req.ResultIndex, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "fare rule fetched", rule)
}

func (h *FlightHandler) fareQuote(c *gin.Context) {
	req, ok := h.bindResult(c)
	if !ok {
		return
	}
	quote, err := h.fares.FareQuote(c.Request.Context(), searchSession(c), req.ResultIndex, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "fare quote fetched", quote)
}

func (h *FlightHandler) ssr(c *gin.Context) {
	req, ok := h.bindResult(c)
	if !ok {
		return
	}
	options, err := h.fares.SSR(c.Request.Context(), searchSession(c), req.ResultIndex, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "ssr fetched", options)
}

func (h *FlightHandler) bindResult(c *gin.Context) (resultRequest, bool) {
	var req resultRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.log, domain.Validation("invalid request body"))
		return req, false
	}
	return req, true
}
