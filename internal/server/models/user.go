package models

import "time"

// Role names assigned to users and checked by the authorization layer.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a principal in the shop: a customer or an administrator. The
// password is stored only as a bcrypt hash. Roles are plain names such as
// "USER" and "ADMIN"; authorization policy lives outside this package.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Enabled      bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user carries the given role name.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
