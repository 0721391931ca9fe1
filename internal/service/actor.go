package service

import "strings"

// Actor is the identity on whose behalf an operation executes. A zero ID
// with Authenticated=false represents an anonymous requester.
type Actor struct {
	ID            uint
	Username      string
	Role          string
	Authenticated bool
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(a.Role), "admin")
}
