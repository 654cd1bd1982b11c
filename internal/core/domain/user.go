package domain

import "time"

// RoleName is one of the fixed permission classes.
type RoleName string

const (
	RoleAdministrator RoleName = "Administrator"
	RoleManager       RoleName = "Manager"
	RoleStaff         RoleName = "Staff"
	RoleGuest         RoleName = "Guest"
)

// Valid reports whether r is one of the enumerated role names.
func (r RoleName) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleStaff, RoleGuest:
		return true
	}
	return false
}

// Role identifies a named permission class.
type Role struct {
	ID          int64    `json:"role_id"`
	Name        RoleName `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions string   `json:"permissions,omitempty"`
}

// User models an authenticatable staff member.
//
// The lockout state is encoded in IsBlocked, FailedAttempts and LastLogin;
// there is no separate state column.
type User struct {
	ID             int64      `json:"user_id"`
	Login          string     `json:"login"`
	PasswordHash   string     `json:"-"`
	RoleID         int64      `json:"role_id"`
	IsBlocked      bool       `json:"is_blocked"`
	FailedAttempts int        `json:"failed_attempts"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// PendingFirstPassword is true until the user has changed the password at least once.
func (u *User) PendingFirstPassword() bool {
	return u.LastLogin == nil
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}
