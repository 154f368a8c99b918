package dto

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is the identity shape returned by login and /api/auth/me.
type SessionUser struct {
	UUID  string `json:"uuid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResponse returns the bearer token and its identity.
type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}
