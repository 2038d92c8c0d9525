// Package actor describes who performs an operation: the authenticated user id, display
// name and role. Authentication itself happens at the HTTP edge.
package actor

import (
	"fmt"
	"strings"

	"shoecare/internal/pkg/errs"
)

// Role is the closed set of application roles.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleCourier    Role = "courier"
	RoleDropper    Role = "dropper"
	RoleTechnician Role = "technician"
	RoleQC         Role = "qc"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleCustomer, RoleAdmin, RoleCourier, RoleDropper, RoleTechnician, RoleQC:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor is the caller of an operation. The system actor is used by background jobs.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// System is the actor recorded for job-initiated changes.
var System = Actor{ID: "system", Name: "system", Role: RoleAdmin}

// New validates and builds an Actor.
func New(id, name string, role Role) (Actor, error) {
	if strings.TrimSpace(id) == "" {
		return Actor{}, errs.NewValueIsRequiredError("actor id")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Name: name, Role: role}, nil
}

// Is reports whether the actor has one of the given roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Require returns ErrUnauthorized for an anonymous actor and ErrForbidden for a wrong role.
func (a Actor) Require(roles ...Role) error {
	if a.ID == "" {
		return errs.ErrUnauthorized
	}
	if !a.Is(roles...) {
		return fmt.Errorf("%w: role %s", errs.ErrForbidden, a.Role)
	}
	return nil
}

// IsAnonymous reports whether no user is attached (guest checkout).
func (a Actor) IsAnonymous() bool {
	return a.ID == ""
}
