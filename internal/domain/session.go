package domain

import "time"

// Session is the authenticated identity carried inside a signed token.
// It is derived at login, reconstructed on every authenticated request by
// verifying the token, and never stored server-side.
type Session struct {
	SubjectID string `json:"uuid"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ExpiresAt int64  `json:"exp"` // unix milliseconds
}

// Expired reports whether the session expiry is not strictly in the future.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.UnixMilli()
}
