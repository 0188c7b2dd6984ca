package domain

import "time"

// Roles recognised by the access-control checks. Role names keep the
// original application's convention.
const (
	RoleClient  = "ROLE_CLIENT"
	RoleChef    = "ROLE_CHEF"
	RoleServeur = "ROLE_SERVEUR"
	RoleAdmin   = "ROLE_ADMIN"
)

// AllowedRoles is the registration allow-list.
var AllowedRoles = []string{RoleClient, RoleChef, RoleServeur, RoleAdmin}

// StaffRoles may view and modify any order.
var StaffRoles = []string{RoleChef, RoleServeur, RoleAdmin}

// ValidRole reports whether role is in the registration allow-list.
func ValidRole(role string) bool {
	for _, r := range AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account holding one or more roles.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Roles        []string
	Vote         *int
	CreatedAt    time.Time
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole is the set-intersection test between the user's roles and an
// operation's allow-list.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// IsStaff reports whether the user holds any staff role.
func (u *User) IsStaff() bool {
	return u.HasAnyRole(StaffRoles...)
}
