// Package access gates record mutations on the acting user's role.
// Authentication happens elsewhere; this package only sees the resulting
// role.
package access

import (
	"errors"
	"fmt"

	"auditportal/pkg/domain"
)

// ErrForbidden is returned when the actor's role may not mutate a collection.
var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated caller.
type Actor interface {
	Role() domain.Role
}

// RoleActor is an Actor with a fixed role.
type RoleActor domain.Role

// Role implements Actor.
func (r RoleActor) Role() domain.Role { return domain.Role(r) }

// Policy lists, per collection, the roles allowed to mutate it. Collections
// absent from the map accept any valid role.
type Policy map[domain.CollectionKey][]domain.Role

// DefaultPolicy restricts staff records, calendars and holidays to state
// administrators, and the library to district level and above.
func DefaultPolicy() Policy {
	admins := []domain.Role{domain.RoleAdmin, domain.RoleState}
	return Policy{
		domain.CollectionUsers:     admins,
		domain.CollectionCalendars: admins,
		domain.CollectionHolidays:  admins,
		domain.CollectionLibrary:   {domain.RoleAdmin, domain.RoleState, domain.RoleDistrict},
	}
}

// CanMutate returns nil when actor may change collection. Reads are never
// gated.
func (p Policy) CanMutate(actor Actor, collection domain.CollectionKey) error {
	if actor == nil {
		return fmt.Errorf("%w: no actor", ErrForbidden)
	}
	role := actor.Role()
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, role)
	}
	allowed, restricted := p[collection]
	if !restricted {
		return nil
	}
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s cannot modify %s", ErrForbidden, role, collection)
}
