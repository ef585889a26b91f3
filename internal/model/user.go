package model

// Roles accepted in users.role. The first admin is created through
// self-registration; any further admin must be promoted by an admin.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool { return r == RoleUser || r == RoleAdmin }

// User mirrors the 'users' table. Token holds the current session token;
// it is replaced on every login, which implicitly invalidates the
// previous session because authentication looks the token value up.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Token        string
	Role         string
	CreatedAt    string
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
