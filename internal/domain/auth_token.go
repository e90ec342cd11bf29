package domain

import "time"

// AuthToken is one successful provider authentication. Rows are append-only;
// the most recently created one is the current token. ID doubles as the
// token generation.
type AuthToken struct {
	ID        int64     `json:"id"`
	TokenID   string    `json:"token_id"`
	MemberID  int64     `json:"member_id"`
	AgencyID  int64     `json:"agency_id"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}
