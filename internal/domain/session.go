package domain

import "time"

// TraceCookieName is the cookie carrying the provider TraceId between the
// search step and the quote/rule/SSR/booking steps of one user session.
const TraceCookieName = "tekTravelsTraceId"

const DefaultSessionTTL = 15 * time.Hour

// SearchSession correlates provider calls that belong to one search.
type SearchSession struct {
	TraceID   string    `json:"trace_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSearchSession(traceID string, now time.Time, ttl time.Duration) SearchSession {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return SearchSession{TraceID: traceID, ExpiresAt: now.Add(ttl)}
}

// Valid reports whether the session can be replayed at now. A zero ExpiresAt
// means the expiry is enforced elsewhere (the cookie lifetime).
func (s SearchSession) Valid(now time.Time) bool {
	if s.TraceID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}
