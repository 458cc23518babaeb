package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, apperror.CodeInvalidInput, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, apperror.CodeNotAllowed, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, apperror.CodeNotAllowed, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "password is too short")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "invalid role")
)

// Role is the closed set of roles a user can hold. Authorization decisions are
// made through the capability predicates below, never by comparing role
// strings at call sites.
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleMember, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// CanCancelOthers reports whether the role may cancel bookings it does not own.
func CanCancelOthers(r Role) bool {
	return r == RoleStaff || r == RoleAdmin
}

// CanAdminister reports whether the role may manage resources, rules and blackouts.
func CanAdminister(r Role) bool {
	return r == RoleAdmin
}

// User represents a member of the organization.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
