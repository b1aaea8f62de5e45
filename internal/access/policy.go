// Package access holds the authorization policy: role membership plus
// resource ownership.
package access

import (
	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
)

// Identity is the authenticated caller resolved from a session token
type Identity struct {
	UserID uint
	Role   model.Role
	Email  string
	Name   string
}

// HasRole reports whether the caller's role is in roles. An empty list
// admits any authenticated caller.
func (id Identity) HasRole(roles ...model.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// Authorize checks role membership and, when owners is non-empty, that
// the caller is one of the owners. Admins do not bypass ownership.
func Authorize(caller Identity, owners []uint, roles ...model.Role) error {
	if caller.UserID == 0 {
		return apperr.ErrUnauthenticated
	}
	if !caller.HasRole(roles...) {
		return apperr.New(apperr.ErrForbidden, "Forbidden: Insufficient role permissions.")
	}
	if len(owners) == 0 {
		return nil
	}
	for _, owner := range owners {
		if owner == caller.UserID {
			return nil
		}
	}
	return apperr.New(apperr.ErrForbidden, "Access denied.")
}
