package domain

import (
	"strconv"
	"strings"
)

// PrincipalKind selects the cart storage regime of a session.
type PrincipalKind string

const (
	// KindAdministrative is the built-in, non-persisted account. Its cart lives in the session.
	KindAdministrative PrincipalKind = "administrative"
	// KindRegistered is a user row in the database. Its cart lives in cart_items.
	KindRegistered PrincipalKind = "registered"
)

// Principal is the identity carried by a session.
type Principal struct {
	ID    string        `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Kind  PrincipalKind `json:"kind"`
}

// IsAdministrative reports whether the principal is the built-in account.
func (p Principal) IsAdministrative() bool {
	return p.Kind == KindAdministrative
}

// UserID returns the numeric users.id of a registered principal.
func (p Principal) UserID() (uint, error) {
	if p.Kind != KindRegistered {
		return 0, ErrAuthentication
	}
	id, err := strconv.ParseUint(p.ID, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrAuthentication
	}
	return uint(id), nil
}

// PrincipalFromUser builds the session identity of a registered user.
func PrincipalFromUser(u User) Principal {
	return Principal{
		ID:    strconv.FormatUint(uint64(u.ID), 10),
		Email: u.Email,
		Name:  u.Name,
		Kind:  KindRegistered,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
