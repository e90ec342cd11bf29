package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDHeader  = "X-User-ID"
	traceIDHeader = "X-Trace-Id"
)

// searchSession rebuilds the session from the trace cookie, or from the
// X-Trace-Id header for clients that cannot keep cookies. The cookie's
// Max-Age bounds its lifetime, so ExpiresAt is left zero.
func searchSession(c *gin.Context) domain.SearchSession {
	if traceID, err := c.Cookie(domain.TraceCookieName); err == nil && traceID != "" {
		return domain.SearchSession{TraceID: traceID}
	}
	return domain.SearchSession{TraceID: strings.TrimSpace(c.GetHeader(traceIDHeader))}
}

func setTraceCookie(c *gin.Context, cfg config.SessionConfig, session domain.SearchSession) {
	if session.TraceID == "" {
		return
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if session.ExpiresAt.IsZero() || maxAge <= 0 {
		maxAge = int(cfg.TraceTTL.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(domain.TraceCookieName, session.TraceID, maxAge, "/", cfg.CookieDomain, cfg.CookieSecure, true)
}

func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(userIDHeader))
}
