package model

import "fmt"

// Role is the closed set of account kinds
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// Roles lists every valid role
var Roles = []Role{RoleCustomer, RoleMerchant, RoleAdmin}

// ParseRole converts user input into a Role. Only the exact lowercase
// names are accepted.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether an account of this role may be created
// through public registration. Admin accounts are provisioned out of band.
func (r Role) SelfRegistrable() bool {
	switch r {
	case RoleCustomer, RoleMerchant:
		return true
	case RoleAdmin:
		return false
	}
	return false
}

// ApprovedOnCreation reports the initial approval state for a new account
func (r Role) ApprovedOnCreation() bool {
	switch r {
	case RoleMerchant:
		return false
	case RoleCustomer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
