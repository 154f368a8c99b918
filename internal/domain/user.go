package domain

// Role distinguishes admin operators from regular field users.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// NormalizeRole maps any stored role value onto the two supported roles.
// Anything that is not exactly "admin" is a regular user.
func NormalizeRole(value string) Role {
	if Role(value) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User is the domain model for accounts that submit or review reports.
type User struct {
	UUID         string
	Email        string
	PasswordHash string
	Role         Role
}
